package formic

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/formic/formic/formic/auth"
	"github.com/formic/formic/formic/config"
	"github.com/formic/formic/formic/db"
	"github.com/formic/formic/formic/web"
	"github.com/formic/formic/formic/worker"
)

// Service represents the full form service: a web server, a database for
// users, forms and submissions, and a worker that dispatches submission
// notifications.
type Service struct {
	web    *web.Server
	db     *db.Connection
	worker *worker.Worker
	log    *zap.Logger
	Config *config.Config
}

// NewService creates a new Service for the given configuration.
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	srv := new(Service)
	srv.Config = cfg
	srv.log = logger

	logger.Info("initialising database", zap.String("path", cfg.DBPath))
	conn, err := db.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	srv.db = conn

	srv.worker = worker.New(conn, logger)
	srv.worker.Notify = worker.LogNotifier(logger)

	srv.web = web.New(cfg.Port, logger)
	srv.setupWebRoutes()

	return srv, nil
}

// SetNotifier overrides the worker's notification dispatch, e.g. with an
// email or telegram backend.
func (srv *Service) SetNotifier(f worker.Notifier) {
	srv.worker.Notify = f
}

// Handler returns the service's root HTTP handler, mainly for tests and
// embedding.
func (srv *Service) Handler() http.Handler {
	return srv.web.Router
}

// Start the service (worker and web server).
func (srv *Service) Start() error {
	if srv.Config.JWTSecret == "" {
		return fmt.Errorf("empty JWT secret is invalid")
	}

	srv.worker.Start()

	srv.log.Info("starting web service", zap.Uint16("port", srv.Config.Port))
	srv.web.Start()
	srv.log.Info("service ready")
	return nil
}

// WaitForInterrupt blocks until the service receives an interrupt signal (SIGINT).
func (srv *Service) WaitForInterrupt() {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt)
	<-sigchan
}

// Stop the service by gracefully shutting down the web service, stopping the
// worker, and closing the database connection, in that order.
func (srv *Service) Stop() {
	srv.log.Info("stopping web service")
	srv.web.Stop()

	srv.log.Info("stopping notification worker")
	srv.worker.Stop()

	srv.log.Info("closing database connection")
	if err := srv.db.Close(); err != nil {
		srv.log.Error("error closing database", zap.Error(err))
	}
	srv.log.Info("service stopped")
}

// CreateSuperAdmin creates (or promotes) an approved super-admin account.
// Used by the admin command to bootstrap the first account.
func (srv *Service) CreateSuperAdmin(email, password, name string) (*db.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	existing, err := srv.db.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.IsAdmin = true
		existing.IsSuperAdmin = true
		existing.IsApproved = true
		existing.PasswordHash = hash
		if err := srv.db.UpdateUser(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	user := db.NewUser(email, name, hash)
	user.IsAdmin = true
	user.IsSuperAdmin = true
	user.IsApproved = true
	if err := srv.db.InsertUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

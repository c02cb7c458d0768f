package formic

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/formic/formic/formic/auth"
	"github.com/formic/formic/formic/db"
)

// authedHandler is a request handler that requires a valid access token.  The
// token's claims are resolved before the handler runs.
type authedHandler func(w http.ResponseWriter, r *http.Request, claims *auth.Claims)

// requireAuth wraps a handler so that it only runs for requests carrying a
// valid bearer token.  Requests without one get a 401.
func (srv *Service) requireAuth(handler authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			srv.web.ErrorResponse(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		claims, err := auth.ValidateToken(srv.Config.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			srv.web.ErrorResponse(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		handler(w, r, claims)
	}
}

// requireSuperAdmin is requireAuth restricted to super-admin accounts.
func (srv *Service) requireSuperAdmin(handler authedHandler) http.HandlerFunc {
	return srv.requireAuth(func(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
		if !claims.IsSuperAdmin {
			srv.web.ErrorResponse(w, http.StatusForbidden, "super-admin access required")
			return
		}
		handler(w, r, claims)
	})
}

// storageError maps a db error to a response: a missing record is a 404 with
// the given message, anything else is a storage failure.
func (srv *Service) storageError(w http.ResponseWriter, err error, missing string) {
	if errors.Is(err, db.ErrNotFound) {
		srv.web.ErrorResponse(w, http.StatusNotFound, missing)
		return
	}
	srv.web.ErrorResponse(w, http.StatusInternalServerError, "storage error")
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (srv *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		srv.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (srv *Service) setupWebRoutes() {
	router := srv.web.Router
	router.StrictSlash(true)
	router.Use(srv.logRequests)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", srv.register).Methods("POST")
	api.HandleFunc("/auth/login", srv.login).Methods("POST")

	api.HandleFunc("/forms", srv.requireAuth(srv.createForm)).Methods("POST")
	api.HandleFunc("/forms/{id}", srv.getForm).Methods("GET")
	api.HandleFunc("/forms/{id}", srv.requireAuth(srv.updateForm)).Methods("PUT")
	api.HandleFunc("/forms/{id}", srv.requireAuth(srv.deleteForm)).Methods("DELETE")

	api.HandleFunc("/forms/{id}/submit", srv.submitForm).Methods("POST")
	api.HandleFunc("/forms/{id}/submissions", srv.requireAuth(srv.listFormSubmissions)).Methods("GET")
	api.HandleFunc("/forms/{id}/submissions/count", srv.requireAuth(srv.countFormSubmissions)).Methods("GET")

	api.HandleFunc("/admin/{id}/forms", srv.requireAuth(srv.listCreatorForms)).Methods("GET")
	api.HandleFunc("/admin/{id}/submissions", srv.requireAuth(srv.listAdminSubmissions)).Methods("GET", "POST")

	api.HandleFunc("/submissions/{id}", srv.requireAuth(srv.getSubmission)).Methods("GET")
	api.HandleFunc("/submissions/{id}", srv.requireAuth(srv.deleteSubmission)).Methods("DELETE")
	api.HandleFunc("/files/{id}", srv.requireAuth(srv.downloadFile)).Methods("GET")

	api.HandleFunc("/users/{id}/notification-settings", srv.requireAuth(srv.getNotificationSettings)).Methods("GET")
	api.HandleFunc("/users/{id}/notification-settings", srv.requireAuth(srv.saveNotificationSettings)).Methods("PUT")

	api.HandleFunc("/super-admin/unapproved-admins", srv.requireSuperAdmin(srv.listUnapprovedAdmins)).Methods("GET")
	api.HandleFunc("/super-admin/admins/{id}/approve", srv.requireSuperAdmin(srv.approveAdmin)).Methods("POST")
	api.HandleFunc("/super-admin/admins/{id}/reject", srv.requireSuperAdmin(srv.rejectAdmin)).Methods("POST")

	// Public server-rendered submission page.
	router.HandleFunc("/submit/{id}", srv.renderSubmitPage).Methods("GET")
}

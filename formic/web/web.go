package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server implements the web server for the formic service.
type Server struct {
	*http.Server
	Router *mux.Router
	log    *zap.Logger
}

// New returns a web Server with an initialised mux.Router and http.Server
// listening on the given port.
func New(port uint16, logger *zap.Logger) *Server {
	srv := new(Server)
	srv.Router = mux.NewRouter()
	srv.log = logger
	httpsrv := new(http.Server)
	httpsrv.Handler = srv.Router
	httpsrv.Addr = fmt.Sprintf(":%d", port)
	// Good practice to set timeouts to avoid Slowloris attacks.
	httpsrv.WriteTimeout = time.Second * 15
	httpsrv.ReadTimeout = time.Second * 15
	httpsrv.IdleTimeout = time.Second * 60
	srv.Server = httpsrv
	return srv
}

// Start starts the embedded web server's ListenAndServe method in a goroutine
// and returns.  This method does not block.
func (ws *Server) Start() {
	go func() {
		if err := ws.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.log.Error("web server stopped", zap.Error(err))
		}
	}()
}

// Stop gracefully stops the web service.
func (ws *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	// Gracefully shut down, waiting for the timeout deadline for connections to close.
	ws.Shutdown(ctx)
}

// JSON writes a response with the given status code and JSON body.
func (ws *Server) JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		ws.log.Error("failed to encode response", zap.Error(err))
	}
}

// ErrorResponse logs an error and writes a JSON error body with the given
// status code.  The message lands in the "detail" key the way API consumers
// expect it.
func (ws *Server) ErrorResponse(w http.ResponseWriter, status int, message string) {
	ws.log.Warn("request failed", zap.Int("status", status), zap.String("detail", message))
	ws.JSON(w, status, map[string]string{"detail": message})
}

// ValidationResponse writes a 422 with the per-field problems so the caller
// can highlight the exact offending fields.
func (ws *Server) ValidationResponse(w http.ResponseWriter, detail string, fieldErrors any) {
	ws.JSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": detail,
		"errors": fieldErrors,
	})
}

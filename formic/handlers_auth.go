package formic

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/formic/formic/formic/auth"
	"github.com/formic/formic/formic/db"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        *db.User `json:"user"`
}

// register creates a new admin account.  The account stays unapproved until a
// super-admin signs it off, so no token is issued here.
func (srv *Service) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		srv.web.ErrorResponse(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}
	if len(req.Password) < 8 {
		srv.web.ErrorResponse(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}

	existing, err := srv.db.GetUserByEmail(req.Email)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not check account")
		return
	}
	if existing != nil {
		srv.web.ErrorResponse(w, http.StatusConflict, "an account with this email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not create account")
		return
	}

	user := db.NewUser(req.Email, req.Name, hash)
	user.IsAdmin = true
	if err := srv.db.InsertUser(user); err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not create account")
		return
	}

	srv.log.Info("admin registered", zap.String("id", user.ID), zap.String("email", user.Email))
	srv.web.JSON(w, http.StatusCreated, user)
}

// login checks credentials and issues an access token.  Unapproved admins are
// rejected the same way as bad credentials are, with a clearer message.
func (srv *Service) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	user, err := srv.db.GetUserByEmail(strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not check account")
		return
	}
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		srv.web.ErrorResponse(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}
	if !user.IsApproved {
		srv.web.ErrorResponse(w, http.StatusUnauthorized, "account is awaiting approval")
		return
	}

	token, err := auth.GenerateToken(srv.Config.JWTSecret, user.ID, user.Email, user.IsAdmin, user.IsSuperAdmin)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not create token")
		return
	}
	srv.web.JSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

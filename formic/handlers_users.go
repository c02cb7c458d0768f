package formic

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/formic/formic/formic/auth"
)

func (srv *Service) getNotificationSettings(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	userID := mux.Vars(r)["id"]
	if !canAccess(claims, userID) {
		srv.web.ErrorResponse(w, http.StatusForbidden, "cannot read another user's settings")
		return
	}

	settings, err := srv.db.GetNotificationSettings(userID)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not load settings")
		return
	}
	srv.web.JSON(w, http.StatusOK, settings)
}

func (srv *Service) saveNotificationSettings(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	userID := mux.Vars(r)["id"]
	if !canAccess(claims, userID) {
		srv.web.ErrorResponse(w, http.StatusForbidden, "cannot change another user's settings")
		return
	}

	settings, err := srv.db.GetNotificationSettings(userID)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not load settings")
		return
	}
	if err := json.NewDecoder(r.Body).Decode(settings); err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "could not parse request body")
		return
	}
	settings.UserID = userID

	if err := srv.db.SaveNotificationSettings(settings); err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not store settings")
		return
	}
	srv.web.JSON(w, http.StatusOK, settings)
}

func (srv *Service) listUnapprovedAdmins(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	admins, err := srv.db.UnapprovedAdmins()
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not list accounts")
		return
	}
	srv.web.JSON(w, http.StatusOK, admins)
}

// approveAdmin marks a pending admin account as approved and records which
// super-admin signed it off.
func (srv *Service) approveAdmin(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	user, err := srv.db.GetUser(mux.Vars(r)["id"])
	if err != nil {
		srv.storageError(w, err, "account not found")
		return
	}
	if user.IsApproved {
		srv.web.ErrorResponse(w, http.StatusConflict, "account is already approved")
		return
	}

	user.IsApproved = true
	user.AdminID = claims.UserID
	if err := srv.db.UpdateUser(user); err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not update account")
		return
	}

	srv.log.Info("admin approved", zap.String("id", user.ID), zap.String("by", claims.UserID))
	srv.web.JSON(w, http.StatusOK, user)
}

// rejectAdmin removes a pending admin account.
func (srv *Service) rejectAdmin(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	user, err := srv.db.GetUser(mux.Vars(r)["id"])
	if err != nil {
		srv.storageError(w, err, "account not found")
		return
	}
	if user.IsApproved {
		srv.web.ErrorResponse(w, http.StatusConflict, "cannot reject an approved account")
		return
	}

	if err := srv.db.DeleteUser(user.ID); err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not remove account")
		return
	}

	srv.log.Info("admin rejected", zap.String("id", user.ID), zap.String("by", claims.UserID))
	srv.web.JSON(w, http.StatusOK, map[string]string{"detail": "account rejected"})
}

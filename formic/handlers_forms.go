package formic

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/formic/formic/formic/auth"
	"github.com/formic/formic/formic/form"
)

type createFormRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Fields      []form.Field `json:"fields"`
}

type updateFormRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Fields      []form.Field `json:"fields"`
}

// canAccess reports whether the authenticated user may act on a resource
// owned by ownerID.  Super-admins may act on anything.
func canAccess(claims *auth.Claims, ownerID string) bool {
	return claims.IsSuperAdmin || claims.UserID == ownerID
}

// pagination reads skip and limit query parameters, falling back to the
// configured page size.
func (srv *Service) pagination(r *http.Request) (skip, limit int) {
	limit = srv.Config.PageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil && v > 0 {
		skip = v
	}
	return skip, limit
}

func (srv *Service) createForm(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	var req createFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	creatorID := claims.UserID
	if qid := r.URL.Query().Get("creator_id"); qid != "" {
		if !canAccess(claims, qid) {
			srv.web.ErrorResponse(w, http.StatusForbidden, "cannot create forms for another admin")
			return
		}
		creatorID = qid
	}

	frm, err := form.New(req.Title, req.Description, creatorID, req.Fields)
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			srv.web.ValidationResponse(w, "invalid form definition", verr.Errors)
			return
		}
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not create form")
		return
	}

	if err := srv.db.InsertForm(frm); err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not store form")
		return
	}
	srv.web.JSON(w, http.StatusCreated, frm)
}

// getForm is public: the submission page needs the definition without a
// token.
func (srv *Service) getForm(w http.ResponseWriter, r *http.Request) {
	frm, err := srv.db.GetForm(mux.Vars(r)["id"])
	if err != nil {
		srv.storageError(w, err, "form not found")
		return
	}
	frm.Fields = frm.Sorted()
	srv.web.JSON(w, http.StatusOK, frm)
}

func (srv *Service) updateForm(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	frm, err := srv.db.GetForm(mux.Vars(r)["id"])
	if err != nil {
		srv.storageError(w, err, "form not found")
		return
	}
	if !canAccess(claims, frm.CreatorID) {
		srv.web.ErrorResponse(w, http.StatusForbidden, "not your form")
		return
	}

	var req updateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	if err := frm.Replace(req.Title, req.Description, req.Fields); err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			srv.web.ValidationResponse(w, "invalid form definition", verr.Errors)
			return
		}
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not update form")
		return
	}

	if err := srv.db.UpdateForm(frm); err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not store form")
		return
	}
	srv.web.JSON(w, http.StatusOK, frm)
}

func (srv *Service) deleteForm(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	frm, err := srv.db.GetForm(mux.Vars(r)["id"])
	if err != nil {
		srv.storageError(w, err, "form not found")
		return
	}
	if !canAccess(claims, frm.CreatorID) {
		srv.web.ErrorResponse(w, http.StatusForbidden, "not your form")
		return
	}

	if err := srv.db.DeleteForm(frm.ID); err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not delete form")
		return
	}
	srv.web.JSON(w, http.StatusOK, map[string]string{"detail": "form deleted"})
}

func (srv *Service) listCreatorForms(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	creatorID := mux.Vars(r)["id"]
	if !canAccess(claims, creatorID) {
		srv.web.ErrorResponse(w, http.StatusForbidden, "cannot list another admin's forms")
		return
	}

	skip, limit := srv.pagination(r)
	forms, err := srv.db.GetFormsByCreator(creatorID, skip, limit)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not list forms")
		return
	}
	srv.web.JSON(w, http.StatusOK, forms)
}

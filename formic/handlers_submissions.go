package formic

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/formic/formic/formic/auth"
	"github.com/formic/formic/formic/db"
	"github.com/formic/formic/formic/submission"
)

// submitForm accepts a public multipart submission: the submitter's name and
// optional email, the field values as JSON keyed by field ID, and any file
// uploads together with a JSON map associating file index with field ID.
// Validation happens before anything is stored.
func (srv *Service) submitForm(w http.ResponseWriter, r *http.Request) {
	frm, err := srv.db.GetForm(mux.Vars(r)["id"])
	if err != nil {
		srv.storageError(w, err, "form not found")
		return
	}

	if err := r.ParseMultipartForm(srv.Config.MaxUploadMB << 20); err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "could not parse submission")
		return
	}

	userName := r.FormValue("user_name")
	if userName == "" {
		srv.web.ErrorResponse(w, http.StatusUnprocessableEntity, "please provide your name")
		return
	}

	values := make(map[string]string)
	if raw := r.FormValue("field_values_json"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			srv.web.ErrorResponse(w, http.StatusBadRequest, "field values are not valid JSON")
			return
		}
	}

	// fileFields maps the index of each upload in the files part to the
	// field it answers.
	fileFields := make(map[string]string)
	if raw := r.FormValue("file_fields_json"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &fileFields); err != nil {
			srv.web.ErrorResponse(w, http.StatusBadRequest, "file field map is not valid JSON")
			return
		}
	}

	var uploads []*multipartUpload
	if r.MultipartForm != nil {
		for idx, header := range r.MultipartForm.File["files"] {
			uploads = append(uploads, &multipartUpload{
				header:  header,
				fieldID: fileFields[strconv.Itoa(idx)],
			})
		}
	}

	fileCounts := make(map[string]int)
	for _, up := range uploads {
		fileCounts[up.fieldID]++
	}

	if result := submission.Validate(frm, values, fileCounts); !result.OK() {
		srv.web.ValidationResponse(w, "submission is invalid", result)
		return
	}

	sub := &submission.Submission{
		ID:             uuid.New().String(),
		FormID:         frm.ID,
		SubmitterName:  userName,
		SubmitterEmail: r.FormValue("user_email"),
	}
	for _, fld := range frm.Sorted() {
		value, ok := values[fld.ID]
		if !ok {
			continue
		}
		sub.Values = append(sub.Values, submission.FieldValue{
			ID:      uuid.New().String(),
			FieldID: fld.ID,
			Value:   value,
		})
	}
	for _, up := range uploads {
		rec, err := up.read()
		if err != nil {
			srv.web.ErrorResponse(w, http.StatusBadRequest, "could not read uploaded file")
			return
		}
		sub.Files = append(sub.Files, *rec)
	}

	if err := srv.db.InsertSubmission(sub); err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not store submission")
		return
	}

	srv.worker.Enqueue(&db.Notification{
		SubmissionID: sub.ID,
		FormID:       frm.ID,
		OwnerID:      frm.CreatorID,
		Message:      fmt.Sprintf("new submission to %q by %s", frm.Title, sub.SubmitterName),
	})

	srv.web.JSON(w, http.StatusCreated, sub)
}

type multipartUpload struct {
	header  *multipart.FileHeader
	fieldID string
}

func (up *multipartUpload) read() (*submission.File, error) {
	src, err := up.header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return &submission.File{
		ID:               uuid.New().String(),
		FieldID:          up.fieldID,
		OriginalFilename: up.header.Filename,
		ContentType:      up.header.Header.Get("Content-Type"),
		Size:             int64(len(data)),
		Data:             data,
	}, nil
}

func (srv *Service) listFormSubmissions(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	frm, err := srv.db.GetForm(mux.Vars(r)["id"])
	if err != nil {
		srv.storageError(w, err, "form not found")
		return
	}
	if !canAccess(claims, frm.CreatorID) {
		srv.web.ErrorResponse(w, http.StatusForbidden, "not your form")
		return
	}

	subs, err := srv.db.GetFormSubmissions(frm.ID)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not list submissions")
		return
	}
	srv.web.JSON(w, http.StatusOK, subs)
}

func (srv *Service) countFormSubmissions(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	frm, err := srv.db.GetForm(mux.Vars(r)["id"])
	if err != nil {
		srv.storageError(w, err, "form not found")
		return
	}
	if !canAccess(claims, frm.CreatorID) {
		srv.web.ErrorResponse(w, http.StatusForbidden, "not your form")
		return
	}

	count, err := srv.db.CountFormSubmissions(frm.ID)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not count submissions")
		return
	}
	srv.web.JSON(w, http.StatusOK, map[string]int64{"count": count})
}

type submissionFilterRequest struct {
	DateFrom         string `json:"date_from"`
	DateTo           string `json:"date_to"`
	UserName         string `json:"user_name"`
	UserEmail        string `json:"user_email"`
	FieldValueSearch string `json:"field_value_search"`
	FormID           string `json:"form_id"`
}

// filter builds a db.SubmissionFilter from the request.  GET requests carry
// the filter as query parameters, POST requests as a JSON body.
func (srv *Service) submissionFilter(r *http.Request) (db.SubmissionFilter, error) {
	req := submissionFilterRequest{}
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return db.SubmissionFilter{}, err
		}
	} else {
		q := r.URL.Query()
		req.DateFrom = q.Get("date_from")
		req.DateTo = q.Get("date_to")
		req.UserName = q.Get("user_name")
		req.UserEmail = q.Get("user_email")
		req.FieldValueSearch = q.Get("field_value_search")
		req.FormID = q.Get("form_id")
	}

	filter := db.SubmissionFilter{
		UserName:         req.UserName,
		UserEmail:        req.UserEmail,
		FieldValueSearch: req.FieldValueSearch,
		FormID:           req.FormID,
	}
	var err error
	if req.DateFrom != "" {
		if filter.DateFrom, err = parseFilterDate(req.DateFrom, false); err != nil {
			return filter, err
		}
	}
	if req.DateTo != "" {
		if filter.DateTo, err = parseFilterDate(req.DateTo, true); err != nil {
			return filter, err
		}
	}
	return filter, nil
}

// parseFilterDate accepts RFC 3339 timestamps or plain dates.  A plain
// end-of-range date extends to the end of that day.
func parseFilterDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func (srv *Service) listAdminSubmissions(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	adminID := mux.Vars(r)["id"]
	if !canAccess(claims, adminID) {
		srv.web.ErrorResponse(w, http.StatusForbidden, "cannot list another admin's submissions")
		return
	}

	filter, err := srv.submissionFilter(r)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "could not parse submission filter")
		return
	}

	skip, limit := srv.pagination(r)
	subs, err := srv.db.GetAdminSubmissions(adminID, filter, skip, limit)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not list submissions")
		return
	}
	srv.web.JSON(w, http.StatusOK, subs)
}

// submissionOwner resolves the submission and checks that the caller owns the
// form it belongs to.
func (srv *Service) submissionOwner(w http.ResponseWriter, id string, claims *auth.Claims) *submission.Submission {
	sub, err := srv.db.GetSubmission(id)
	if err != nil {
		srv.storageError(w, err, "submission not found")
		return nil
	}
	frm, err := srv.db.GetForm(sub.FormID)
	if err != nil {
		srv.storageError(w, err, "form not found")
		return nil
	}
	if !canAccess(claims, frm.CreatorID) {
		srv.web.ErrorResponse(w, http.StatusForbidden, "not your submission")
		return nil
	}
	return sub
}

func (srv *Service) getSubmission(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	sub := srv.submissionOwner(w, mux.Vars(r)["id"], claims)
	if sub == nil {
		return
	}
	srv.web.JSON(w, http.StatusOK, sub)
}

func (srv *Service) deleteSubmission(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	sub := srv.submissionOwner(w, mux.Vars(r)["id"], claims)
	if sub == nil {
		return
	}
	if err := srv.db.DeleteSubmission(sub.ID); err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "could not delete submission")
		return
	}
	srv.web.JSON(w, http.StatusOK, map[string]string{"detail": "submission deleted"})
}

func (srv *Service) downloadFile(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	file, err := srv.db.GetFile(mux.Vars(r)["id"])
	if err != nil {
		srv.storageError(w, err, "file not found")
		return
	}
	if sub := srv.submissionOwner(w, file.SubmissionID, claims); sub == nil {
		return
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalFilename))
	w.Write(file.Data)
}

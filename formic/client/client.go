// Package client is a Go consumer of the formic web API.  It handles
// authentication, paging through forms and submissions, and public form
// submission.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/formic/formic/formic/db"
	"github.com/formic/formic/formic/form"
	"github.com/formic/formic/formic/submission"
)

var (
	// ErrUnauthorized is returned when the server rejects the client's
	// token.  The stored token is cleared; the caller must log in again.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-auth error response from the server.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Detail)
}

// Client talks to a formic server.  Not safe for concurrent use.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	token  string
	user   *db.User
	counts map[string]int64
}

// New returns a client for the server at the given base URL (e.g.
// "http://localhost:3000").
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{},
		counts:  make(map[string]int64),
	}
}

// User returns the logged-in account, or nil.
func (c *Client) User() *db.User {
	return c.user
}

// LoggedIn reports whether the client holds an access token.
func (c *Client) LoggedIn() bool {
	return c.token != ""
}

func (c *Client) do(method, path string, body io.Reader, contentType string, into any) error {
	req, err := http.NewRequest(method, c.BaseURL+"/api/v1"+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// an expired or revoked token means the session is over
		c.token = ""
		c.user = nil
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		apierr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apierr.Detail = payload.Detail
		}
		return apierr
	}

	if into == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(into)
}

func (c *Client) doJSON(method, path string, body, into any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	return c.do(method, path, reader, "application/json", into)
}

// Register creates a new admin account.  The account cannot log in until a
// super-admin approves it.
func (c *Client) Register(email, password, name string) (*db.User, error) {
	user := new(db.User)
	err := c.doJSON("POST", "/auth/register", map[string]string{
		"email": email, "password": password, "name": name,
	}, user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates and stores the access token for subsequent calls.
func (c *Client) Login(email, password string) (*db.User, error) {
	var resp struct {
		AccessToken string   `json:"access_token"`
		User        *db.User `json:"user"`
	}
	if err := c.doJSON("POST", "/auth/login", map[string]string{
		"email": email, "password": password,
	}, &resp); err != nil {
		return nil, err
	}
	c.token = resp.AccessToken
	c.user = resp.User
	return resp.User, nil
}

// Logout drops the stored token and cached state.
func (c *Client) Logout() {
	c.token = ""
	c.user = nil
	c.counts = make(map[string]int64)
}

// CreateForm defines a new form owned by the logged-in admin.
func (c *Client) CreateForm(title, description string, fields []form.Field) (*form.Form, error) {
	frm := new(form.Form)
	err := c.doJSON("POST", "/forms", map[string]any{
		"title": title, "description": description, "fields": fields,
	}, frm)
	if err != nil {
		return nil, err
	}
	return frm, nil
}

// GetForm fetches a form definition.  Works without a login.
func (c *Client) GetForm(id string) (*form.Form, error) {
	frm := new(form.Form)
	if err := c.doJSON("GET", "/forms/"+id, nil, frm); err != nil {
		return nil, err
	}
	return frm, nil
}

// UpdateForm replaces parts of a form: non-nil title and description
// overwrite, a non-nil field list replaces the whole sequence.
func (c *Client) UpdateForm(id string, title, description *string, fields []form.Field) (*form.Form, error) {
	frm := new(form.Form)
	err := c.doJSON("PUT", "/forms/"+id, map[string]any{
		"title": title, "description": description, "fields": fields,
	}, frm)
	if err != nil {
		return nil, err
	}
	return frm, nil
}

// DeleteForm removes a form with all its submissions.
func (c *Client) DeleteForm(id string) error {
	delete(c.counts, id)
	return c.doJSON("DELETE", "/forms/"+id, nil, nil)
}

// SubmissionCount returns the number of submissions a form has received.
// Counts are cached per form; use InvalidateCount to force a refresh.
func (c *Client) SubmissionCount(formID string) (int64, error) {
	if count, ok := c.counts[formID]; ok {
		return count, nil
	}
	var resp struct {
		Count int64 `json:"count"`
	}
	if err := c.doJSON("GET", "/forms/"+formID+"/submissions/count", nil, &resp); err != nil {
		return 0, err
	}
	c.counts[formID] = resp.Count
	return resp.Count, nil
}

// InvalidateCount drops the cached submission count for a form.
func (c *Client) InvalidateCount(formID string) {
	delete(c.counts, formID)
}

// FormSubmissions returns all submissions for one form.
func (c *Client) FormSubmissions(formID string) ([]submission.Submission, error) {
	subs := make([]submission.Submission, 0)
	if err := c.doJSON("GET", "/forms/"+formID+"/submissions", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// DeleteSubmission removes a single submission from a form the admin owns.
func (c *Client) DeleteSubmission(id string) error {
	return c.doJSON("DELETE", "/submissions/"+id, nil, nil)
}

// DownloadFile fetches a stored upload's content.
func (c *Client) DownloadFile(id string) ([]byte, error) {
	req, err := http.NewRequest("GET", c.BaseURL+"/api/v1/files/"+id, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.token = ""
		c.user = nil
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// UnapprovedAdmins lists admin accounts waiting for approval.  Requires a
// super-admin login.
func (c *Client) UnapprovedAdmins() ([]db.User, error) {
	admins := make([]db.User, 0)
	if err := c.doJSON("GET", "/super-admin/unapproved-admins", nil, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// ApproveAdmin signs off a pending admin account.
func (c *Client) ApproveAdmin(id string) error {
	return c.doJSON("POST", "/super-admin/admins/"+id+"/approve", nil, nil)
}

// RejectAdmin removes a pending admin account.
func (c *Client) RejectAdmin(id string) error {
	return c.doJSON("POST", "/super-admin/admins/"+id+"/reject", nil, nil)
}

// NotificationSettings fetches the logged-in user's notification settings.
func (c *Client) NotificationSettings() (*db.NotificationSettings, error) {
	if c.user == nil {
		return nil, ErrUnauthorized
	}
	settings := new(db.NotificationSettings)
	if err := c.doJSON("GET", "/users/"+c.user.ID+"/notification-settings", nil, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveNotificationSettings stores the logged-in user's notification settings.
func (c *Client) SaveNotificationSettings(settings *db.NotificationSettings) error {
	if c.user == nil {
		return ErrUnauthorized
	}
	return c.doJSON("PUT", "/users/"+c.user.ID+"/notification-settings", settings, nil)
}

// pageQuery renders skip and limit query parameters.
func pageQuery(values url.Values, skip, limit int) string {
	values.Set("skip", strconv.Itoa(skip))
	values.Set("limit", strconv.Itoa(limit))
	return values.Encode()
}

// Upload is one file attached to a submission, associated with a file field.
type Upload struct {
	FieldID  string
	Filename string
	Content  []byte
}

// Submit sends a filled-in form.  values maps field IDs to their encoded
// values.  No login is required.
func (c *Client) Submit(formID, userName, userEmail string, values map[string]string, uploads []Upload) (*submission.Submission, error) {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	if err := mw.WriteField("user_name", userName); err != nil {
		return nil, err
	}
	if userEmail != "" {
		if err := mw.WriteField("user_email", userEmail); err != nil {
			return nil, err
		}
	}
	if values != nil {
		encoded, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		if err := mw.WriteField("field_values_json", string(encoded)); err != nil {
			return nil, err
		}
	}
	if len(uploads) > 0 {
		fileFields := make(map[string]string, len(uploads))
		for idx, up := range uploads {
			part, err := mw.CreateFormFile("files", up.Filename)
			if err != nil {
				return nil, err
			}
			if _, err := part.Write(up.Content); err != nil {
				return nil, err
			}
			fileFields[strconv.Itoa(idx)] = up.FieldID
		}
		encoded, err := json.Marshal(fileFields)
		if err != nil {
			return nil, err
		}
		if err := mw.WriteField("file_fields_json", string(encoded)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	sub := new(submission.Submission)
	if err := c.do("POST", "/forms/"+formID+"/submit", body, mw.FormDataContentType(), sub); err != nil {
		return nil, err
	}
	c.InvalidateCount(formID)
	return sub, nil
}

package client

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/formic/formic/formic"
	"github.com/formic/formic/formic/config"
	"github.com/formic/formic/formic/form"
)

func testServer(t *testing.T) (*formic.Service, *Client) {
	t.Helper()
	cfg := &config.Config{
		DBPath:      filepath.Join(t.TempDir(), "test.db"),
		JWTSecret:   "client-test-secret",
		MaxUploadMB: 12,
		PageSize:    10,
	}
	srv, err := formic.NewService(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, New(ts.URL)
}

// adminClient registers an approved admin and returns a logged-in client.
func adminClient(t *testing.T, srv *formic.Service, c *Client, email string) {
	t.Helper()
	user, err := c.Register(email, "hunter2hunter2", "Admin")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	super := New(c.BaseURL)
	if _, err := srv.CreateSuperAdmin("root@example.com", "rootpassword", "Root"); err != nil {
		t.Fatalf("failed to create super admin: %v", err)
	}
	if _, err := super.Login("root@example.com", "rootpassword"); err != nil {
		t.Fatalf("super admin login failed: %v", err)
	}
	if err := super.ApproveAdmin(user.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if _, err := c.Login(email, "hunter2hunter2"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func testFields() []form.Field {
	return []form.Field{
		{FieldType: "text", Label: "Your Name", IsRequired: true},
		{FieldType: "select", Label: "Color", Options: `["Red","Blue"]`},
	}
}

func TestLoginLifecycle(t *testing.T) {
	srv, c := testServer(t)

	user, err := c.Register("admin@example.com", "hunter2hunter2", "Admin")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if c.LoggedIn() {
		t.Error("registration must not log the client in")
	}

	// pending accounts cannot log in
	if _, err := c.Login("admin@example.com", "hunter2hunter2"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("login before approval returned %v, expected ErrUnauthorized", err)
	}

	if _, err := srv.CreateSuperAdmin("root@example.com", "rootpassword", "Root"); err != nil {
		t.Fatal(err)
	}
	super := New(c.BaseURL)
	if _, err := super.Login("root@example.com", "rootpassword"); err != nil {
		t.Fatal(err)
	}
	pending, err := super.UnapprovedAdmins()
	if err != nil {
		t.Fatalf("unapproved listing failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != user.ID {
		t.Fatalf("unexpected pending admins: %v", pending)
	}
	if err := super.ApproveAdmin(user.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	logged, err := c.Login("admin@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login after approval failed: %v", err)
	}
	if !c.LoggedIn() || logged.ID != user.ID {
		t.Error("client did not store the session")
	}

	c.Logout()
	if c.LoggedIn() {
		t.Error("logout did not clear the session")
	}
}

func TestStaleTokenClearsSession(t *testing.T) {
	srv, c := testServer(t)
	adminClient(t, srv, c, "admin@example.com")

	c.token = "stale-token"
	if _, err := c.CreateForm("Title", "", nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stale token returned %v, expected ErrUnauthorized", err)
	}
	if c.LoggedIn() {
		t.Error("rejected token must clear the session")
	}
}

func TestFormPager(t *testing.T) {
	srv, c := testServer(t)
	adminClient(t, srv, c, "admin@example.com")

	for i := 0; i < 12; i++ {
		if _, err := c.CreateForm(fmt.Sprintf("Form %d", i), "", nil); err != nil {
			t.Fatalf("create form %d failed: %v", i, err)
		}
	}

	pager := c.Forms(c.User().ID, 10)
	if !pager.HasMore() {
		t.Fatal("fresh pager must have a first page")
	}
	page, err := pager.Next()
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	if len(page) != 10 {
		t.Errorf("first page has %d forms, expected 10", len(page))
	}
	if !pager.HasMore() {
		t.Error("full first page means more pages may exist")
	}

	page, err = pager.Next()
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("second page has %d forms, expected 2", len(page))
	}
	if pager.HasMore() {
		t.Error("short page must end the pager")
	}
	if page, _ := pager.Next(); page != nil {
		t.Error("exhausted pager must not fetch again")
	}
}

func TestSubmitAndCountCache(t *testing.T) {
	srv, c := testServer(t)
	adminClient(t, srv, c, "admin@example.com")

	frm, err := c.CreateForm("Feedback", "", testFields())
	if err != nil {
		t.Fatalf("create form failed: %v", err)
	}
	nameField := frm.Fields[0].ID

	count, err := c.SubmissionCount(frm.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh form count is %d, expected 0", count)
	}

	// anonymous submissions need no login
	visitor := New(c.BaseURL)
	sub, err := visitor.Submit(frm.ID, "Alice", "alice@example.com",
		map[string]string{nameField: "Alice"}, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sub.SubmitterName != "Alice" {
		t.Errorf("stored submitter is %q", sub.SubmitterName)
	}

	// an invalid submission surfaces the server's rejection
	if _, err := visitor.Submit(frm.ID, "Bob", "", nil, nil); err == nil {
		t.Error("submission missing a required field must fail")
	}

	// the count was cached before the submission; invalidate to refresh
	c.InvalidateCount(frm.ID)
	count, err = c.SubmissionCount(frm.ID)
	if err != nil {
		t.Fatalf("count after submit failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count is %d, expected 1", count)
	}
}

func TestSubmitWithUploads(t *testing.T) {
	srv, c := testServer(t)
	adminClient(t, srv, c, "admin@example.com")

	frm, err := c.CreateForm("Uploads", "", []form.Field{
		{FieldType: "files", Label: "Attachments", IsRequired: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	visitor := New(c.BaseURL)
	sub, err := visitor.Submit(frm.ID, "Bob", "", nil, []Upload{
		{FieldID: frm.Fields[0].ID, Filename: "notes.txt", Content: []byte("hello")},
	})
	if err != nil {
		t.Fatalf("submit with upload failed: %v", err)
	}
	if len(sub.Files) != 1 {
		t.Fatalf("submission has %d files, expected 1", len(sub.Files))
	}

	data, err := c.DownloadFile(sub.Files[0].ID)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("downloaded %q, expected hello", data)
	}
}

func TestSubmissionPagerWithFilter(t *testing.T) {
	srv, c := testServer(t)
	adminClient(t, srv, c, "admin@example.com")

	frm, err := c.CreateForm("Feedback", "", testFields())
	if err != nil {
		t.Fatal(err)
	}
	nameField := frm.Fields[0].ID
	visitor := New(c.BaseURL)
	for _, name := range []string{"Alice", "Bob", "Alina"} {
		if _, err := visitor.Submit(frm.ID, name, "", map[string]string{nameField: name}, nil); err != nil {
			t.Fatalf("submit for %s failed: %v", name, err)
		}
	}

	pager := c.Submissions(c.User().ID, Filter{UserName: "Ali"}, 10)
	page, err := pager.Next()
	if err != nil {
		t.Fatalf("filtered page failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("filter matched %d submissions, expected 2", len(page))
	}
	if pager.HasMore() {
		t.Error("short page must end the pager")
	}

	// delete one and re-browse
	if err := c.DeleteSubmission(page[0].ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	pager = c.Submissions(c.User().ID, Filter{}, 10)
	page, err = pager.Next()
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Errorf("after delete %d submissions remain, expected 2", len(page))
	}
}

func TestNotificationSettingsRoundTrip(t *testing.T) {
	srv, c := testServer(t)
	adminClient(t, srv, c, "admin@example.com")

	settings, err := c.NotificationSettings()
	if err != nil {
		t.Fatalf("settings fetch failed: %v", err)
	}
	if !settings.EmailNotificationsEnabled {
		t.Error("email notifications should default to enabled")
	}

	settings.TelegramChatID = "98765"
	settings.TelegramNotificationsEnabled = true
	if err := c.SaveNotificationSettings(settings); err != nil {
		t.Fatalf("settings save failed: %v", err)
	}

	saved, err := c.NotificationSettings()
	if err != nil {
		t.Fatal(err)
	}
	if saved.TelegramChatID != "98765" || !saved.TelegramNotificationsEnabled {
		t.Errorf("settings did not persist: %+v", saved)
	}
}

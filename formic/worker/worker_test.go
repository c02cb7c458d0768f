package worker

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/formic/formic/formic/db"
)

func tempDB(t *testing.T) *db.Connection {
	t.Helper()
	path := filepath.Join(t.TempDir(), "testdb")
	conn, err := db.New(path)
	if err != nil {
		t.Fatalf("Failed to initialise database: %s", err.Error())
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitDispatched(t *testing.T, n *db.Notification) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !n.IsDispatched() {
		if time.Now().After(deadline) {
			t.Fatalf("Notification %d not dispatched in time", n.ID)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWorkerDispatch(t *testing.T) {
	conn := tempDB(t)
	w := New(conn, zap.NewNop())
	w.Notify = func(n *db.Notification, settings *db.NotificationSettings) (string, error) {
		if settings == nil {
			t.Error("Notifier called without settings")
		}
		return "test", nil
	}
	w.Start()
	defer w.Stop()

	n := &db.Notification{SubmissionID: "sub-1", FormID: "form-1", OwnerID: "admin-1", Message: "new submission"}
	w.Enqueue(n)
	waitDispatched(t, n)

	if n.Channel != "test" {
		t.Fatalf("Notification channel = %q, expected test", n.Channel)
	}
	stored, err := conn.GetNotification(n.ID)
	if err != nil {
		t.Fatalf("Failed to reload notification: %s", err.Error())
	}
	if !stored.IsDispatched() || stored.Error != "" {
		t.Fatalf("Stored notification in unexpected state: %+v", stored)
	}
}

func TestWorkerRecordsFailure(t *testing.T) {
	conn := tempDB(t)
	w := New(conn, zap.NewNop())
	w.Notify = func(n *db.Notification, settings *db.NotificationSettings) (string, error) {
		return "", fmt.Errorf("delivery refused")
	}
	w.Start()
	defer w.Stop()

	n := &db.Notification{SubmissionID: "sub-1", FormID: "form-1", OwnerID: "admin-1"}
	w.Enqueue(n)
	waitDispatched(t, n)

	stored, err := conn.GetNotification(n.ID)
	if err != nil {
		t.Fatalf("Failed to reload notification: %s", err.Error())
	}
	if stored.Error != "delivery refused" {
		t.Fatalf("Failure not recorded: %+v", stored)
	}
}

func TestWorkerUsesStoredSettings(t *testing.T) {
	conn := tempDB(t)
	if err := conn.SaveNotificationSettings(&db.NotificationSettings{
		UserID:                       "admin-1",
		TelegramChatID:               "12345",
		TelegramNotificationsEnabled: true,
	}); err != nil {
		t.Fatalf("Failed to save settings: %s", err.Error())
	}

	var gotChatID string
	w := New(conn, zap.NewNop())
	w.Notify = func(n *db.Notification, settings *db.NotificationSettings) (string, error) {
		gotChatID = settings.TelegramChatID
		return "telegram", nil
	}
	w.Start()
	defer w.Stop()

	n := &db.Notification{OwnerID: "admin-1"}
	w.Enqueue(n)
	waitDispatched(t, n)

	if gotChatID != "12345" {
		t.Fatalf("Notifier saw chat ID %q, expected 12345", gotChatID)
	}
}

package db

import (
	"fmt"
	"time"
)

// Notification is one queued "new submission" notice for a form owner.  The
// worker picks it up, dispatches it through the configured notifier and
// records the outcome.
type Notification struct {
	// Notification ID (auto)
	ID int64 `xorm:"pk autoincr"`
	// Submission that triggered the notice
	SubmissionID string `xorm:"index"`
	// Form the submission belongs to
	FormID string
	// Owner of the form (recipient)
	OwnerID string `xorm:"index"`
	// Channel the notice went out on (log, email, telegram)
	Channel string
	// Human-readable summary of the submission
	Message string
	// Time when the notification was queued
	QueuedAt time.Time
	// Time when dispatch finished (zero if pending)
	SentAt time.Time
	// Error message from a failed dispatch
	Error string
}

// IsDispatched returns true if the notification left the queue (has a
// SentAt).
func (n *Notification) IsDispatched() bool {
	return !n.SentAt.IsZero()
}

// InsertNotification stores a queued notification.  Upon successful return it
// has a new unique ID.
func (conn *Connection) InsertNotification(n *Notification) error {
	_, err := conn.engine.Insert(n)
	return err
}

// UpdateNotification updates an existing notification entry.
func (conn *Connection) UpdateNotification(n *Notification) error {
	_, err := conn.engine.ID(n.ID).AllCols().Update(n)
	return err
}

// GetNotification retrieves a notification given its ID.
func (conn *Connection) GetNotification(id int64) (*Notification, error) {
	n := new(Notification)
	n.ID = id
	if has, err := conn.engine.Get(n); err != nil {
		return nil, err
	} else if !has {
		return nil, fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return n, nil
}

// GetOwnerNotifications retrieves all notifications queued for a form owner.
func (conn *Connection) GetOwnerNotifications(ownerID string) ([]Notification, error) {
	notes := make([]Notification, 0)
	if err := conn.engine.Where("owner_id = ?", ownerID).Find(&notes); err != nil {
		return nil, err
	}
	return notes, nil
}

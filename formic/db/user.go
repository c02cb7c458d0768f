package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is an account in the system.  Admins author forms; new admin
// registrations stay unapproved until a super-admin approves them.
type User struct {
	ID           string    `json:"id" xorm:"pk 'id'"`
	Email        string    `json:"email" xorm:"unique"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	IsSuperAdmin bool      `json:"is_super_admin"`
	IsApproved   bool      `json:"is_approved"`
	AdminID      string    `json:"admin_id,omitempty"`
	CreatedAt    time.Time `json:"created_at" xorm:"created"`
}

// NotificationSettings holds a user's submission notification preferences.
// Delivery itself happens elsewhere; this is configuration only.
type NotificationSettings struct {
	UserID                        string `json:"-" xorm:"pk 'user_id'"`
	TelegramChatID                string `json:"telegram_chat_id,omitempty"`
	TelegramNotificationsEnabled  bool   `json:"telegram_notifications_enabled"`
	EmailNotificationsEnabled     bool   `json:"email_notifications_enabled"`
	NotificationPreferences       string `json:"notification_preferences,omitempty" xorm:"text"`
}

// NewUser creates a user record with a fresh ID and timestamp.
func NewUser(email, name, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
	}
}

// InsertUser stores a new user.  Fails when the email is already registered.
func (conn *Connection) InsertUser(user *User) error {
	_, err := conn.engine.Insert(user)
	return err
}

// UpdateUser updates the mutable columns of a user record.
func (conn *Connection) UpdateUser(user *User) error {
	_, err := conn.engine.ID(user.ID).
		Cols("email", "name", "password_hash", "is_admin", "is_super_admin", "is_approved", "admin_id").
		Update(user)
	return err
}

// GetUser retrieves a user by ID.
func (conn *Connection) GetUser(id string) (*User, error) {
	user := new(User)
	user.ID = id
	if has, err := conn.engine.Get(user); err != nil {
		return nil, err
	} else if !has {
		return nil, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, or nil when no account exists.
func (conn *Connection) GetUserByEmail(email string) (*User, error) {
	user := new(User)
	has, err := conn.engine.Where("email = ?", email).Get(user)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return user, nil
}

// UnapprovedAdmins lists admin accounts still waiting for approval.
func (conn *Connection) UnapprovedAdmins() ([]User, error) {
	admins := make([]User, 0)
	err := conn.engine.Where("is_admin = ? AND is_approved = ?", true, false).
		Asc("created_at").
		Find(&admins)
	return admins, err
}

// DeleteUser removes a user account.
func (conn *Connection) DeleteUser(id string) error {
	_, err := conn.engine.ID(id).Delete(new(User))
	return err
}

// GetNotificationSettings returns the stored settings for a user, or the
// defaults when none were saved yet.
func (conn *Connection) GetNotificationSettings(userID string) (*NotificationSettings, error) {
	settings := new(NotificationSettings)
	settings.UserID = userID
	has, err := conn.engine.Get(settings)
	if err != nil {
		return nil, err
	}
	if !has {
		return &NotificationSettings{UserID: userID, EmailNotificationsEnabled: true}, nil
	}
	return settings, nil
}

// SaveNotificationSettings inserts or replaces a user's settings.
func (conn *Connection) SaveNotificationSettings(settings *NotificationSettings) error {
	existing := new(NotificationSettings)
	existing.UserID = settings.UserID
	has, err := conn.engine.Get(existing)
	if err != nil {
		return err
	}
	if has {
		_, err = conn.engine.ID(settings.UserID).AllCols().Update(settings)
	} else {
		_, err = conn.engine.Insert(settings)
	}
	return err
}

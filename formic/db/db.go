package db

import (
	"errors"

	_ "github.com/mattn/go-sqlite3"
	"xorm.io/xorm"
	"xorm.io/xorm/log"
	"xorm.io/xorm/names"

	"github.com/formic/formic/formic/form"
	"github.com/formic/formic/formic/submission"
)

// ErrNotFound is returned when a requested record does not exist.  Callers
// check it with errors.Is to tell a missing record from a storage failure.
var ErrNotFound = errors.New("record not found")

type Connection struct {
	engine *xorm.Engine
}

// Close the database.
func (conn *Connection) Close() error {
	return conn.engine.Close()
}

// New returns a database connection for the sqlite db file at the given path.
// If it does not exist it is created.
func New(path string) (*Connection, error) {
	engine, err := xorm.NewEngine("sqlite3", path)
	if err != nil {
		return nil, err
	}
	engine.Logger().SetLevel(log.LOG_WARNING)
	engine.SetMapper(names.GonicMapper{})

	if err := engine.Sync2(
		new(form.Form),
		new(form.Field),
		new(submission.Submission),
		new(submission.FieldValue),
		new(submission.File),
		new(User),
		new(NotificationSettings),
		new(Notification),
	); err != nil {
		return nil, err
	}
	return &Connection{engine}, nil
}

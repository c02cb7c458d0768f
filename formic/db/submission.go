package db

import (
	"fmt"
	"time"

	"xorm.io/xorm"

	"github.com/formic/formic/formic/submission"
)

// SubmissionFilter narrows admin submission listings.  Zero values mean "no
// constraint".
type SubmissionFilter struct {
	DateFrom         time.Time
	DateTo           time.Time
	UserName         string
	UserEmail        string
	FieldValueSearch string
	FormID           string
}

// InsertSubmission stores a submission with its values and files in one
// transaction.  Nothing is written when any part fails.
func (conn *Connection) InsertSubmission(sub *submission.Submission) error {
	sess := conn.engine.NewSession()
	defer sess.Close()
	if err := sess.Begin(); err != nil {
		return err
	}
	if _, err := sess.Insert(sub); err != nil {
		sess.Rollback()
		return err
	}
	for idx := range sub.Values {
		sub.Values[idx].SubmissionID = sub.ID
		if _, err := sess.Insert(&sub.Values[idx]); err != nil {
			sess.Rollback()
			return err
		}
	}
	for idx := range sub.Files {
		sub.Files[idx].SubmissionID = sub.ID
		if _, err := sess.Insert(&sub.Files[idx]); err != nil {
			sess.Rollback()
			return err
		}
	}
	return sess.Commit()
}

// GetSubmission retrieves a submission with its values and file records.
func (conn *Connection) GetSubmission(id string) (*submission.Submission, error) {
	sub := new(submission.Submission)
	sub.ID = id
	if has, err := conn.engine.Get(sub); err != nil {
		return nil, err
	} else if !has {
		return nil, fmt.Errorf("submission %q: %w", id, ErrNotFound)
	}
	if err := conn.loadSubmissionDetails(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// GetFormSubmissions returns all submissions for a form, newest first.
func (conn *Connection) GetFormSubmissions(formID string) ([]submission.Submission, error) {
	subs := make([]submission.Submission, 0)
	if err := conn.engine.Where("form_id = ?", formID).Desc("submitted_at").Find(&subs); err != nil {
		return nil, err
	}
	for idx := range subs {
		if err := conn.loadSubmissionDetails(&subs[idx]); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

// CountFormSubmissions returns the number of submissions a form has received.
func (conn *Connection) CountFormSubmissions(formID string) (int64, error) {
	return conn.engine.Where("form_id = ?", formID).Count(new(submission.Submission))
}

// GetAdminSubmissions returns one page of submissions across all forms owned
// by the given admin, newest first, narrowed by the filter.
func (conn *Connection) GetAdminSubmissions(adminID string, filter SubmissionFilter, skip, limit int) ([]submission.Submission, error) {
	sess := conn.engine.Table("submission").
		Join("INNER", "form", "form.id = submission.form_id").
		Where("form.creator_id = ?", adminID)

	if filter.FormID != "" {
		sess.And("submission.form_id = ?", filter.FormID)
	}
	if !filter.DateFrom.IsZero() {
		sess.And("submission.submitted_at >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		sess.And("submission.submitted_at <= ?", filter.DateTo)
	}
	if filter.UserName != "" {
		sess.And("submission.submitter_name LIKE ?", "%"+filter.UserName+"%")
	}
	if filter.UserEmail != "" {
		sess.And("submission.submitter_email LIKE ?", "%"+filter.UserEmail+"%")
	}
	if filter.FieldValueSearch != "" {
		sess.And("submission.id IN (SELECT submission_id FROM field_value WHERE value LIKE ?)",
			"%"+filter.FieldValueSearch+"%")
	}

	subs := make([]submission.Submission, 0)
	if err := sess.Desc("submission.submitted_at").Limit(limit, skip).Find(&subs); err != nil {
		return nil, err
	}
	for idx := range subs {
		if err := conn.loadSubmissionDetails(&subs[idx]); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

// DeleteSubmission removes a submission with its values and files.
func (conn *Connection) DeleteSubmission(id string) error {
	sess := conn.engine.NewSession()
	defer sess.Close()
	if err := sess.Begin(); err != nil {
		return err
	}
	if err := deleteSubmissionTx(sess, id); err != nil {
		sess.Rollback()
		return err
	}
	return sess.Commit()
}

// GetFile retrieves a stored upload with its content.
func (conn *Connection) GetFile(id string) (*submission.File, error) {
	file := new(submission.File)
	file.ID = id
	if has, err := conn.engine.Get(file); err != nil {
		return nil, err
	} else if !has {
		return nil, fmt.Errorf("file %q: %w", id, ErrNotFound)
	}
	return file, nil
}

func (conn *Connection) loadSubmissionDetails(sub *submission.Submission) error {
	sub.Values = make([]submission.FieldValue, 0)
	if err := conn.engine.Where("submission_id = ?", sub.ID).Find(&sub.Values); err != nil {
		return err
	}
	sub.Files = make([]submission.File, 0)
	// file content stays in the database; listings only need the metadata
	return conn.engine.Where("submission_id = ?", sub.ID).Omit("data").Find(&sub.Files)
}

func deleteSubmissionTx(sess *xorm.Session, id string) error {
	if _, err := sess.Where("submission_id = ?", id).Delete(new(submission.FieldValue)); err != nil {
		return err
	}
	if _, err := sess.Where("submission_id = ?", id).Delete(new(submission.File)); err != nil {
		return err
	}
	_, err := sess.ID(id).Delete(new(submission.Submission))
	return err
}

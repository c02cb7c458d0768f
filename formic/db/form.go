package db

import (
	"fmt"

	"github.com/formic/formic/formic/form"
)

// InsertForm stores a form together with its field sequence.
func (conn *Connection) InsertForm(frm *form.Form) error {
	sess := conn.engine.NewSession()
	defer sess.Close()
	if err := sess.Begin(); err != nil {
		return err
	}
	if _, err := sess.Insert(frm); err != nil {
		sess.Rollback()
		return err
	}
	for idx := range frm.Fields {
		if _, err := sess.Insert(&frm.Fields[idx]); err != nil {
			sess.Rollback()
			return err
		}
	}
	return sess.Commit()
}

// UpdateForm replaces a stored form's title, description and entire field
// sequence.  Fields absent from the new sequence are dropped.
func (conn *Connection) UpdateForm(frm *form.Form) error {
	sess := conn.engine.NewSession()
	defer sess.Close()
	if err := sess.Begin(); err != nil {
		return err
	}
	if _, err := sess.ID(frm.ID).Cols("title", "description").Update(frm); err != nil {
		sess.Rollback()
		return err
	}
	if _, err := sess.Where("form_id = ?", frm.ID).Delete(new(form.Field)); err != nil {
		sess.Rollback()
		return err
	}
	for idx := range frm.Fields {
		if _, err := sess.Insert(&frm.Fields[idx]); err != nil {
			sess.Rollback()
			return err
		}
	}
	return sess.Commit()
}

// GetForm retrieves a form with its fields, ordered by their order attribute.
func (conn *Connection) GetForm(id string) (*form.Form, error) {
	frm := new(form.Form)
	frm.ID = id
	if has, err := conn.engine.Get(frm); err != nil {
		return nil, err
	} else if !has {
		return nil, fmt.Errorf("form %q: %w", id, ErrNotFound)
	}
	if err := conn.engine.Where("form_id = ?", id).Asc("field_order").Find(&frm.Fields); err != nil {
		return nil, err
	}
	return frm, nil
}

// GetFormsByCreator returns one page of a creator's forms, newest first.
// The page size equals limit; a shorter page means there are no more forms.
func (conn *Connection) GetFormsByCreator(creatorID string, skip, limit int) ([]form.Form, error) {
	forms := make([]form.Form, 0)
	err := conn.engine.Where("creator_id = ?", creatorID).
		Desc("created_at").
		Limit(limit, skip).
		Find(&forms)
	if err != nil {
		return nil, err
	}
	for idx := range forms {
		if err := conn.engine.Where("form_id = ?", forms[idx].ID).Asc("field_order").Find(&forms[idx].Fields); err != nil {
			return nil, err
		}
	}
	return forms, nil
}

// DeleteForm removes a form, its fields and its submissions.
func (conn *Connection) DeleteForm(id string) error {
	subs := make([]string, 0)
	if err := conn.engine.Table("submission").Where("form_id = ?", id).Cols("id").Find(&subs); err != nil {
		return err
	}

	sess := conn.engine.NewSession()
	defer sess.Close()
	if err := sess.Begin(); err != nil {
		return err
	}
	for _, subID := range subs {
		if err := deleteSubmissionTx(sess, subID); err != nil {
			sess.Rollback()
			return err
		}
	}
	if _, err := sess.Where("form_id = ?", id).Delete(new(form.Field)); err != nil {
		sess.Rollback()
		return err
	}
	if _, err := sess.ID(id).Delete(new(form.Form)); err != nil {
		sess.Rollback()
		return err
	}
	return sess.Commit()
}

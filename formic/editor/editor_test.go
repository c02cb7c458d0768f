package editor

import (
	"errors"
	"testing"

	"github.com/formic/formic/formic/field"
	"github.com/formic/formic/formic/form"
)

func TestStateTransitions(t *testing.T) {
	ed := New()
	ed.SetTitle("Survey")
	id := ed.AddField()

	if state := ed.State(id); state != TypeUnset {
		t.Fatalf("New field state = %v, expected TypeUnset", state)
	}

	ed.SetType(id, field.Text)
	if state := ed.State(id); state != TypeSetNoOptions {
		t.Fatalf("Text field state = %v, expected TypeSetNoOptions", state)
	}

	// switching to select seeds one blank slot and is invalid until an
	// option is entered
	ed.SetType(id, field.Select)
	if opts := ed.Options(id); len(opts) != 1 || opts[0] != "" {
		t.Fatalf("Select did not seed a blank option slot: %v", opts)
	}
	if state := ed.State(id); state != TypeSetOptionsInvalid {
		t.Fatalf("Optionless select state = %v, expected TypeSetOptionsInvalid", state)
	}

	ed.SetOption(id, 0, "Red")
	if state := ed.State(id); state != TypeSetOptionsValid {
		t.Fatalf("Select with option state = %v, expected TypeSetOptionsValid", state)
	}

	// removing the last valid option goes back to invalid
	ed.RemoveOption(id, 0)
	if state := ed.State(id); state != TypeSetOptionsInvalid {
		t.Fatalf("State after removing last option = %v, expected TypeSetOptionsInvalid", state)
	}
	if !ed.HasError(id) {
		t.Fatal("Removing the last valid option did not set the error marker")
	}
}

func TestSwitchingTypeDiscardsOptions(t *testing.T) {
	ed := New()
	id := ed.AddField()
	ed.SetType(id, field.MultiSelect)
	ed.SetOption(id, 0, "Red")
	ed.AddOption(id)
	ed.SetOption(id, 1, "Blue")

	ed.SetType(id, field.Text)
	if opts := ed.Options(id); len(opts) != 0 {
		t.Fatalf("Options survived switching away from multiselect: %v", opts)
	}
	if state := ed.State(id); state != TypeSetNoOptions {
		t.Fatalf("State after switching to text = %v, expected TypeSetNoOptions", state)
	}

	// switching back starts over with a single blank slot
	ed.SetType(id, field.MultiSelect)
	if opts := ed.Options(id); len(opts) != 1 || opts[0] != "" {
		t.Fatalf("Re-selecting multiselect did not reseed options: %v", opts)
	}
}

func TestRemoveFieldKeepsTrackingExact(t *testing.T) {
	ed := New()
	ed.SetTitle("Survey")
	a := ed.AddField()
	b := ed.AddField()
	c := ed.AddField()
	ed.SetType(a, field.Select)
	ed.SetOption(a, 0, "optA")
	ed.SetType(b, field.Text)
	ed.SetType(c, field.Select)
	ed.SetOption(c, 0, "optC")

	ed.RemoveField(b)

	ids := ed.FieldIDs()
	if len(ids) != 2 || ids[0] != a || ids[1] != c {
		t.Fatalf("Unexpected field order after removal: %v", ids)
	}
	if opts := ed.Options(a); len(opts) != 1 || opts[0] != "optA" {
		t.Fatalf("Options for first field corrupted after removal: %v", opts)
	}
	if opts := ed.Options(c); len(opts) != 1 || opts[0] != "optC" {
		t.Fatalf("Options for last field corrupted after removal: %v", opts)
	}
}

func TestMoveField(t *testing.T) {
	ed := New()
	a := ed.AddField()
	b := ed.AddField()
	c := ed.AddField()

	ed.MoveField(b, form.Up)
	if ids := ed.FieldIDs(); ids[0] != b || ids[1] != a || ids[2] != c {
		t.Fatalf("Unexpected order after move up: %v", ids)
	}
	ed.MoveField(b, form.Up) // already first: no-op
	if ids := ed.FieldIDs(); ids[0] != b {
		t.Fatalf("Boundary move changed the order: %v", ids)
	}
	ed.MoveField(b, form.Down)
	if ids := ed.FieldIDs(); ids[0] != a || ids[1] != b || ids[2] != c {
		t.Fatalf("Order not restored after opposite move: %v", ids)
	}
}

func TestSubmitBlockedOnInvalidOptions(t *testing.T) {
	ed := New()
	ed.SetTitle("Survey")
	id := ed.AddField()
	ed.SetType(id, field.Select)
	ed.SetLabel(id, "Color")

	_, _, _, err := ed.Submit()
	if err == nil {
		t.Fatal("Submit succeeded with an optionless select field")
	}
	var verr *form.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *form.ValidationError, got %T", err)
	}
	if len(verr.Errors) != 1 || verr.Errors[0].Field != id {
		t.Fatalf("Error not attached to the offending field: %+v", verr.Errors)
	}
	if !ed.HasError(id) {
		t.Fatal("Submit did not set the per-field error marker")
	}
	if ed.Saved() {
		t.Fatal("Editor reached saved state despite failing submit")
	}

	// fixing the field unblocks the submit
	ed.SetOption(id, 0, "Red")
	if ed.HasError(id) {
		t.Fatal("Entering a valid option did not clear the error marker")
	}
	title, _, fields, err := ed.Submit()
	if err != nil {
		t.Fatalf("Submit failed after fixing the options: %s", err.Error())
	}
	if title != "Survey" {
		t.Errorf("Submitted title = %q, expected Survey", title)
	}
	if len(fields) != 1 || fields[0].Options != `["Red"]` || fields[0].Name != "color" {
		t.Fatalf("Unexpected normalized fields: %+v", fields)
	}
	if !ed.Saved() {
		t.Fatal("Editor did not reach saved state after successful submit")
	}
}

func TestSubmitNormalizesOrder(t *testing.T) {
	ed := New()
	ed.SetTitle("Survey")
	a := ed.AddField()
	b := ed.AddField()
	ed.SetType(a, field.Text)
	ed.SetLabel(a, "First")
	ed.SetType(b, field.Text)
	ed.SetLabel(b, "Second")
	ed.MoveField(b, form.Up)

	_, _, fields, err := ed.Submit()
	if err != nil {
		t.Fatalf("Submit failed: %s", err.Error())
	}
	if fields[0].Label != "Second" || fields[0].Order != 0 {
		t.Fatalf("First normalized field wrong: %+v", fields[0])
	}
	if fields[1].Label != "First" || fields[1].Order != 1 {
		t.Fatalf("Second normalized field wrong: %+v", fields[1])
	}
}

func TestSavedIsTerminal(t *testing.T) {
	ed := New()
	ed.SetTitle("Survey")
	id := ed.AddField()
	ed.SetType(id, field.Text)
	ed.SetLabel(id, "Name")
	if _, _, _, err := ed.Submit(); err != nil {
		t.Fatalf("Submit failed: %s", err.Error())
	}

	ed.SetTitle("Changed")
	ed.RemoveField(id)
	if added := ed.AddField(); added != "" {
		t.Error("AddField returned an ID after save")
	}
	if len(ed.FieldIDs()) != 1 {
		t.Fatal("Field list changed after save")
	}
}

func TestLoadExistingForm(t *testing.T) {
	opts, _ := field.EncodeOptions([]string{"Red", "Blue"})
	frm, err := form.New("Survey", "desc", "admin-1", []form.Field{
		{FieldType: field.Select, Label: "Color", Options: opts},
		{FieldType: field.Text, Label: "Name"},
	})
	if err != nil {
		t.Fatalf("Failed to create form: %s", err.Error())
	}

	ed := Load(frm)
	ids := ed.FieldIDs()
	if len(ids) != 2 {
		t.Fatalf("Loaded editor has %d fields, expected 2", len(ids))
	}
	if state := ed.State(ids[0]); state != TypeSetOptionsValid {
		t.Fatalf("Loaded select field state = %v, expected TypeSetOptionsValid", state)
	}
	if got := ed.Options(ids[0]); len(got) != 2 || got[0] != "Red" {
		t.Fatalf("Loaded options wrong: %v", got)
	}
}

// Package editor implements the form authoring workflow: an in-progress form
// whose fields move through option/error states until the definition is
// submitted to the form model.
package editor

import (
	"strings"

	"github.com/formic/formic/formic/field"
	"github.com/formic/formic/formic/form"
	"github.com/google/uuid"
)

// FieldState describes where a field-in-progress stands with respect to its
// option list.
type FieldState int

const (
	// TypeUnset: no field type chosen yet.
	TypeUnset FieldState = iota
	// TypeSetNoOptions: a type that carries no option list.
	TypeSetNoOptions
	// TypeSetOptionsValid: select/multiselect with at least one non-blank option.
	TypeSetOptionsValid
	// TypeSetOptionsInvalid: select/multiselect without a usable option.
	TypeSetOptionsInvalid
)

// draft is the editor's working copy of one field.  Option and error state
// are tracked here, keyed by the draft's stable ID, so removal and reordering
// can never attach stale state to the wrong field.
type draft struct {
	id          string
	fieldType   field.Type
	label       string
	placeholder string
	required    bool
	options     []string
	hasError    bool
}

// Editor drives the form definition workflow for a single form.
type Editor struct {
	title       string
	description string
	order       []string
	drafts      map[string]*draft
	saved       bool
}

// New returns an empty editor.
func New() *Editor {
	return &Editor{drafts: make(map[string]*draft)}
}

// Load returns an editor pre-filled with an existing form's content, for the
// update workflow.
func Load(frm *form.Form) *Editor {
	ed := New()
	ed.title = frm.Title
	ed.description = frm.Description
	for _, fld := range frm.Sorted() {
		d := &draft{
			id:          fld.ID,
			fieldType:   fld.FieldType,
			label:       fld.Label,
			placeholder: fld.Placeholder,
			required:    fld.IsRequired,
			options:     field.DecodeOptions(fld.Options),
		}
		ed.drafts[d.id] = d
		ed.order = append(ed.order, d.id)
	}
	return ed
}

// SetTitle sets the form title.
func (ed *Editor) SetTitle(title string) {
	if ed.saved {
		return
	}
	ed.title = title
}

// SetDescription sets the form description.
func (ed *Editor) SetDescription(description string) {
	if ed.saved {
		return
	}
	ed.description = description
}

// AddField appends a new, untyped field and returns its stable ID.
func (ed *Editor) AddField() string {
	if ed.saved {
		return ""
	}
	d := &draft{id: uuid.New().String()}
	ed.drafts[d.id] = d
	ed.order = append(ed.order, d.id)
	return d.id
}

// RemoveField drops a field and all its tracked option and error state.
func (ed *Editor) RemoveField(id string) {
	if ed.saved {
		return
	}
	if _, ok := ed.drafts[id]; !ok {
		return
	}
	delete(ed.drafts, id)
	for idx := range ed.order {
		if ed.order[idx] == id {
			ed.order = append(ed.order[:idx], ed.order[idx+1:]...)
			break
		}
	}
}

// MoveField swaps a field with its neighbour in the given direction; no-op at
// the boundaries.
func (ed *Editor) MoveField(id string, dir form.Direction) {
	if ed.saved {
		return
	}
	pos := -1
	for idx := range ed.order {
		if ed.order[idx] == id {
			pos = idx
			break
		}
	}
	if pos < 0 {
		return
	}
	neighbour := pos - 1
	if dir == form.Down {
		neighbour = pos + 1
	}
	if neighbour < 0 || neighbour >= len(ed.order) {
		return
	}
	ed.order[pos], ed.order[neighbour] = ed.order[neighbour], ed.order[pos]
}

// SetType selects the field's type.  Choosing select/multiselect seeds a
// single blank option slot when none exist yet; choosing any other type
// discards previously entered options.
func (ed *Editor) SetType(id string, t field.Type) {
	d := ed.draft(id)
	if d == nil {
		return
	}
	d.fieldType = t
	d.hasError = false
	spec, _ := field.Lookup(t)
	if spec.HasOptions {
		if len(d.options) == 0 {
			d.options = []string{""}
		}
	} else {
		d.options = nil
	}
}

// SetLabel sets the display label.  The machine name is derived from it on
// submit.
func (ed *Editor) SetLabel(id, label string) {
	if d := ed.draft(id); d != nil {
		d.label = label
	}
}

// SetPlaceholder sets the optional placeholder text.
func (ed *Editor) SetPlaceholder(id, placeholder string) {
	if d := ed.draft(id); d != nil {
		d.placeholder = placeholder
	}
}

// SetRequired marks the field as required.
func (ed *Editor) SetRequired(id string, required bool) {
	if d := ed.draft(id); d != nil {
		d.required = required
	}
}

// AddOption appends a blank option slot.
func (ed *Editor) AddOption(id string) {
	d := ed.draft(id)
	if d == nil {
		return
	}
	d.options = append(d.options, "")
	d.hasError = false
}

// SetOption replaces the option text at the given slot.
func (ed *Editor) SetOption(id string, idx int, value string) {
	d := ed.draft(id)
	if d == nil || idx < 0 || idx >= len(d.options) {
		return
	}
	d.options[idx] = value
	d.hasError = !hasValidOption(d.options)
}

// RemoveOption drops the option slot at the given index.  Removing the last
// valid option marks the field invalid.
func (ed *Editor) RemoveOption(id string, idx int) {
	d := ed.draft(id)
	if d == nil || idx < 0 || idx >= len(d.options) {
		return
	}
	d.options = append(d.options[:idx], d.options[idx+1:]...)
	d.hasError = !hasValidOption(d.options)
}

// Options returns a copy of the tracked option list for a field.
func (ed *Editor) Options(id string) []string {
	d := ed.draft(id)
	if d == nil {
		return nil
	}
	options := make([]string, len(d.options))
	copy(options, d.options)
	return options
}

// State reports the workflow state of a field.
func (ed *Editor) State(id string) FieldState {
	d := ed.draft(id)
	if d == nil || d.fieldType == "" {
		return TypeUnset
	}
	spec, _ := field.Lookup(d.fieldType)
	if !spec.HasOptions {
		return TypeSetNoOptions
	}
	if hasValidOption(d.options) {
		return TypeSetOptionsValid
	}
	return TypeSetOptionsInvalid
}

// HasError reports whether the field currently carries an inline error
// marker.
func (ed *Editor) HasError(id string) bool {
	if d := ed.draft(id); d != nil {
		return d.hasError
	}
	return false
}

// FieldIDs returns the fields in display order.
func (ed *Editor) FieldIDs() []string {
	ids := make([]string, len(ed.order))
	copy(ids, ed.order)
	return ids
}

// Saved reports whether the editor reached its terminal state.
func (ed *Editor) Saved() bool {
	return ed.saved
}

// Submit validates the draft and, on success, produces the normalized field
// sequence for the form model and moves the editor to its saved terminal
// state.  On failure the editor keeps its state, error markers are set on the
// offending fields, and the per-field reasons are returned.
func (ed *Editor) Submit() (string, string, []form.Field, error) {
	verr := new(form.ValidationError)
	if strings.TrimSpace(ed.title) == "" {
		verr.Errors = append(verr.Errors, form.FieldError{Field: "title", Reason: "title must not be blank"})
	}
	for _, id := range ed.order {
		d := ed.drafts[id]
		if ed.State(id) == TypeSetOptionsInvalid {
			d.hasError = true
			verr.Errors = append(verr.Errors, form.FieldError{Field: id, Reason: "please add an option"})
		}
	}
	if len(verr.Errors) > 0 {
		return "", "", nil, verr
	}

	fields := make([]form.Field, 0, len(ed.order))
	for idx, id := range ed.order {
		d := ed.drafts[id]
		fld := form.Field{
			ID:          d.id,
			FieldType:   d.fieldType,
			Label:       d.label,
			Name:        field.DeriveName(d.label),
			IsRequired:  d.required,
			Order:       idx,
			Placeholder: strings.TrimSpace(d.placeholder),
		}
		if encoded, ok := field.EncodeOptions(d.options); ok {
			fld.Options = encoded
		}
		fields = append(fields, fld)
	}
	ed.saved = true
	return ed.title, ed.description, fields, nil
}

func (ed *Editor) draft(id string) *draft {
	if ed.saved {
		return nil
	}
	return ed.drafts[id]
}

func hasValidOption(options []string) bool {
	for _, opt := range options {
		if strings.TrimSpace(opt) != "" {
			return true
		}
	}
	return false
}

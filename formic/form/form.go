// Package form defines the form and field data model and the operations for
// building, replacing and reordering field sequences.
package form

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/formic/formic/formic/field"
	"github.com/google/uuid"
)

// Field is one typed input slot within a form.
type Field struct {
	ID          string     `json:"id" xorm:"pk 'id'"`
	FormID      string     `json:"-" xorm:"index 'form_id'"`
	FieldType   field.Type `json:"field_type"`
	Label       string     `json:"label"`
	Name        string     `json:"name"`
	IsRequired  bool       `json:"is_required"`
	Order       int        `json:"order" xorm:"'field_order'"`
	Options     string     `json:"options,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
}

// Form is a named, ordered set of field definitions authored by an admin.
type Form struct {
	ID          string    `json:"id" xorm:"pk 'id'"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatorID   string    `json:"creator_id" xorm:"index"`
	CreatedAt   time.Time `json:"created_at" xorm:"created"`
	Fields      []Field   `json:"fields" xorm:"-"`
}

// FieldError reports a validation problem on a specific field.  Field holds
// the field's stable ID when one exists, otherwise its position path in the
// request (e.g. "fields[2]").
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects the per-field problems that made an operation
// invalid.  It never reaches storage; callers surface it to the user.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	reasons := make([]string, len(e.Errors))
	for idx, fe := range e.Errors {
		reasons[idx] = fmt.Sprintf("%s: %s", fe.Field, fe.Reason)
	}
	return "invalid form definition: " + strings.Join(reasons, "; ")
}

func (e *ValidationError) add(fieldRef, reason string) {
	e.Errors = append(e.Errors, FieldError{Field: fieldRef, Reason: reason})
}

// New builds a form from a title, optional description and field sequence.
// Missing orders default to the position index and missing machine names are
// derived from the label.  Name collisions after derivation get a numeric
// suffix so every field name stays unique within the form.
func New(title, description, creatorID string, fields []Field) (*Form, error) {
	verr := new(ValidationError)
	if strings.TrimSpace(title) == "" {
		verr.add("title", "title must not be blank")
	}

	prepared := prepareFields(fields, verr)
	if len(verr.Errors) > 0 {
		return nil, verr
	}

	frm := &Form{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		CreatorID:   creatorID,
		Fields:      prepared,
	}
	for idx := range frm.Fields {
		frm.Fields[idx].FormID = frm.ID
	}
	return frm, nil
}

// Replace applies update semantics to an existing form: a non-nil title or
// description overwrites the old value, and a non-nil field list replaces the
// previous sequence entirely.  Fields absent from the new list are dropped.
func (frm *Form) Replace(title, description *string, fields []Field) error {
	verr := new(ValidationError)
	newTitle := frm.Title
	if title != nil {
		newTitle = *title
	}
	if strings.TrimSpace(newTitle) == "" {
		verr.add("title", "title must not be blank")
	}

	var prepared []Field
	if fields != nil {
		prepared = prepareFields(fields, verr)
	}
	if len(verr.Errors) > 0 {
		return verr
	}

	frm.Title = newTitle
	if description != nil {
		frm.Description = *description
	}
	if fields != nil {
		for idx := range prepared {
			prepared[idx].FormID = frm.ID
		}
		frm.Fields = prepared
	}
	return nil
}

// prepareFields normalises a field sequence: assigns IDs, orders and machine
// names, checks the options invariant and reports problems on verr.  Orders
// stay unique within the form; a duplicate order bumps upward to the next
// free slot, the same way colliding names get a suffix.
func prepareFields(fields []Field, verr *ValidationError) []Field {
	prepared := make([]Field, len(fields))
	taken := make(map[string]bool)
	usedOrders := make(map[int]bool)
	for idx, fld := range fields {
		ref := fld.ID
		if ref == "" {
			ref = fmt.Sprintf("fields[%d]", idx)
		}

		// Unknown types fall back to the registry's permissive default
		// instead of failing the whole form.
		spec, _ := field.Lookup(fld.FieldType)
		if strings.TrimSpace(fld.Label) == "" {
			verr.add(ref, "label must not be blank")
		}

		if spec.HasOptions {
			if opts, ok := field.EncodeOptions(field.DecodeOptions(fld.Options)); ok {
				fld.Options = opts
			} else {
				verr.add(ref, "please add an option")
			}
		} else {
			fld.Options = ""
		}

		if fld.ID == "" {
			fld.ID = uuid.New().String()
		}
		if fld.Order == 0 {
			fld.Order = idx
		}
		for usedOrders[fld.Order] {
			fld.Order++
		}
		usedOrders[fld.Order] = true
		if fld.Name == "" {
			fld.Name = field.DeriveName(fld.Label)
		}
		fld.Name = uniqueName(fld.Name, taken)
		prepared[idx] = fld
	}
	return prepared
}

// uniqueName disambiguates colliding machine names with a numeric suffix.
// The first occurrence keeps the plain name, later ones become name_2,
// name_3 and so on.
func uniqueName(name string, taken map[string]bool) string {
	if name == "" {
		name = "field"
	}
	candidate := name
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
	taken[candidate] = true
	return candidate
}

// Sorted returns the form's fields ordered by their order attribute, ties
// broken by insertion order.
func (frm *Form) Sorted() []Field {
	sorted := make([]Field, len(frm.Fields))
	copy(sorted, frm.Fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// FieldByID returns the field with the given ID, or nil.
func (frm *Form) FieldByID(id string) *Field {
	for idx := range frm.Fields {
		if frm.Fields[idx].ID == id {
			return &frm.Fields[idx]
		}
	}
	return nil
}

// Direction selects the neighbour a field swaps places with on reorder.
type Direction int

const (
	Up Direction = iota
	Down
)

// Reorder swaps the field with its immediate neighbour in the given
// direction.  At the first or last position the call is a no-op.  Returns
// true when the order changed.
func (frm *Form) Reorder(fieldID string, dir Direction) bool {
	sorted := frm.Sorted()
	pos := -1
	for idx := range sorted {
		if sorted[idx].ID == fieldID {
			pos = idx
			break
		}
	}
	if pos < 0 {
		return false
	}

	var neighbour int
	switch dir {
	case Up:
		neighbour = pos - 1
	case Down:
		neighbour = pos + 1
	}
	if neighbour < 0 || neighbour >= len(sorted) {
		return false
	}

	a := frm.FieldByID(sorted[pos].ID)
	b := frm.FieldByID(sorted[neighbour].ID)
	a.Order, b.Order = b.Order, a.Order
	return true
}

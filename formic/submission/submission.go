// Package submission holds the submission data model and the pure validation
// of submitted values against a form's field definitions.
package submission

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/formic/formic/formic/field"
	"github.com/formic/formic/formic/form"
)

// FieldValue is one submitted value, keyed by the field it answers.
// Multiselect values are JSON-encoded arrays, dates are YYYY-MM-DD,
// signatures are opaque data-URL image strings; everything else is a plain
// string.
type FieldValue struct {
	ID           string `json:"id" xorm:"pk 'id'"`
	SubmissionID string `json:"-" xorm:"index"`
	FieldID      string `json:"field_id" xorm:"index"`
	Value        string `json:"value"`
}

// File is an uploaded file attached to a submission, optionally associated
// with a file field.
type File struct {
	ID               string `json:"id" xorm:"pk 'id'"`
	SubmissionID     string `json:"-" xorm:"index"`
	FieldID          string `json:"field_id,omitempty" xorm:"index"`
	OriginalFilename string `json:"original_filename"`
	ContentType      string `json:"content_type,omitempty"`
	Size             int64  `json:"file_size"`
	Data             []byte `json:"-" xorm:"blob"`
}

// Submission is one filled-in instance of a form.  Immutable once created,
// except for deletion.
type Submission struct {
	ID             string       `json:"id" xorm:"pk 'id'"`
	FormID         string       `json:"form_id" xorm:"index"`
	SubmitterName  string       `json:"user_name"`
	SubmitterEmail string       `json:"user_email,omitempty"`
	SubmittedAt    time.Time    `json:"submitted_at" xorm:"created"`
	Values         []FieldValue `json:"field_values" xorm:"-"`
	Files          []File       `json:"files" xorm:"-"`
}

// Result maps field IDs to human-readable reasons when validation fails.
type Result map[string]string

// OK reports whether validation passed.
func (r Result) OK() bool {
	return len(r) == 0
}

const dateLayout = "2006-01-02"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9\s\-\+\(\)]+$`)
)

// Validate checks submitted values and file attachments against the form's
// field definitions.  values maps field IDs to their transport-encoded
// values; files maps field IDs to the number of attached files.  Validate is
// pure: it touches neither the form nor any stored state, and callers must
// reject a failing submission before any storage effect.
func Validate(frm *form.Form, values map[string]string, files map[string]int) Result {
	result := make(Result)
	for _, fld := range frm.Sorted() {
		if reason := checkField(fld, values[fld.ID], files[fld.ID]); reason != "" {
			result[fld.ID] = reason
		}
	}
	return result
}

func checkField(fld form.Field, value string, nfiles int) string {
	spec, _ := field.Lookup(fld.FieldType)

	if spec.Validation == field.ValidateFile {
		if fld.IsRequired && nfiles == 0 {
			return "please attach at least one file"
		}
		return ""
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if fld.IsRequired {
			return "please fill in this field"
		}
		// blank non-required values are always valid
		return ""
	}

	switch spec.Validation {
	case field.ValidateNumeric:
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return "please enter a number"
		}
	case field.ValidateDate:
		if _, err := time.Parse(dateLayout, trimmed); err != nil {
			return "please enter a date as YYYY-MM-DD"
		}
	case field.ValidateEmail:
		if !emailPattern.MatchString(trimmed) {
			return "please enter a valid email address"
		}
	case field.ValidatePhone:
		if !phonePattern.MatchString(trimmed) {
			return "please enter a valid phone number"
		}
	case field.ValidateEnum:
		if spec.MultiValued && fld.IsRequired {
			if len(field.DecodeOptions(value)) == 0 {
				return "please select at least one option"
			}
		}
	}
	return ""
}

// EncodeMultiValue serialises a multiselect selection for transport.  Even a
// single selected option is encoded as a JSON array.
func EncodeMultiValue(selected []string) string {
	encoded, ok := field.EncodeOptions(selected)
	if !ok {
		return ""
	}
	return encoded
}

// EncodeDate serialises a date value for transport.
func EncodeDate(t time.Time) string {
	return t.Format(dateLayout)
}

package formic

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/formic/formic/formic/db"
	"github.com/formic/formic/formic/field"
	"github.com/formic/formic/formic/form"
	"github.com/formic/formic/templates"
)

// fieldView is a form field prepared for template rendering: the widget name
// picked from the type registry and the options pre-decoded.
type fieldView struct {
	Field   form.Field
	Widget  string
	Options []string
}

// widget maps a field type to the submission page's input widget.
func widget(t field.Type) string {
	spec, _ := field.Lookup(t)
	switch spec.Rendering {
	case field.MultiLine:
		return "textarea"
	case field.Numeric:
		return "number"
	case field.DatePicker:
		return "date"
	case field.EnumeratedSingle:
		return "select"
	case field.EnumeratedMulti:
		return "multiselect"
	case field.FileUpload:
		return "file"
	}
	switch spec.Validation {
	case field.ValidateEmail:
		return "email"
	case field.ValidatePhone:
		return "tel"
	}
	// signature pads need a script-driven canvas; the fallback page takes
	// the value as plain text
	return "text"
}

// renderSubmitPage serves the public server-rendered submission page for a
// form.
func (srv *Service) renderSubmitPage(w http.ResponseWriter, r *http.Request) {
	frm, err := srv.db.GetForm(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "form not found", http.StatusNotFound)
			return
		}
		srv.log.Error("failed to load form", zap.Error(err))
		http.Error(w, "something went wrong", http.StatusInternalServerError)
		return
	}

	fields := make([]fieldView, 0, len(frm.Fields))
	for _, fld := range frm.Sorted() {
		fields = append(fields, fieldView{
			Field:   fld,
			Widget:  widget(fld.FieldType),
			Options: field.DecodeOptions(fld.Options),
		})
	}

	tmpl, err := template.New("layout").Parse(templates.Layout)
	if err == nil {
		_, err = tmpl.Parse(templates.SubmitForm)
	}
	if err != nil {
		srv.log.Error("failed to parse submit page template", zap.Error(err))
		http.Error(w, "something went wrong", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, map[string]any{
		"title":  frm.Title,
		"form":   frm,
		"fields": fields,
	}); err != nil {
		srv.log.Error("failed to render submit page", zap.Error(err))
	}
}

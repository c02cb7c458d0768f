package field

// Type identifies the kind of input a form field collects.
type Type string

const (
	Text        Type = "text"
	TextArea    Type = "textarea"
	Number      Type = "number"
	Date        Type = "date"
	Select      Type = "select"
	MultiSelect Type = "multiselect"
	Files       Type = "files"
	Email       Type = "email"
	Phone       Type = "phone"
	Signature   Type = "signature"
)

// Rendering is the input widget category a field type maps to.
type Rendering int

const (
	SingleLine Rendering = iota
	MultiLine
	Numeric
	DatePicker
	EnumeratedSingle
	EnumeratedMulti
	FileUpload
	ImageSignature
)

// Validation is the value-checking category a field type maps to.
type Validation int

const (
	ValidateText Validation = iota
	ValidateNumeric
	ValidateDate
	ValidateEnum
	ValidateFile
	ValidateImage
	ValidateEmail
	ValidatePhone
)

// Spec describes the rendering and validation contract of a field type.
type Spec struct {
	Rendering   Rendering
	Validation  Validation
	HasOptions  bool
	MultiValued bool
}

var registry = map[Type]Spec{
	Text:        {Rendering: SingleLine, Validation: ValidateText},
	TextArea:    {Rendering: MultiLine, Validation: ValidateText},
	Number:      {Rendering: Numeric, Validation: ValidateNumeric},
	Date:        {Rendering: DatePicker, Validation: ValidateDate},
	Select:      {Rendering: EnumeratedSingle, Validation: ValidateEnum, HasOptions: true},
	MultiSelect: {Rendering: EnumeratedMulti, Validation: ValidateEnum, HasOptions: true, MultiValued: true},
	Files:       {Rendering: FileUpload, Validation: ValidateFile, MultiValued: true},
	Email:       {Rendering: SingleLine, Validation: ValidateEmail},
	Phone:       {Rendering: SingleLine, Validation: ValidatePhone},
	Signature:   {Rendering: ImageSignature, Validation: ValidateImage},
}

// Lookup returns the Spec for the given type.  Unknown types resolve to the
// most permissive behaviour (single-line text) with ok set to false so the
// caller can surface a configuration problem without breaking the form.
func Lookup(t Type) (Spec, bool) {
	if spec, ok := registry[t]; ok {
		return spec, true
	}
	return Spec{Rendering: SingleLine, Validation: ValidateText}, false
}

// Types returns all registered field types in a stable order.
func Types() []Type {
	return []Type{Text, TextArea, Number, Date, Select, MultiSelect, Files, Email, Phone, Signature}
}

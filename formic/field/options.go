package field

import (
	"encoding/json"
	"regexp"
	"strings"
)

// EncodeOptions serialises the choice list for select and multiselect fields
// to its transport form: a JSON array of the trimmed, non-blank entries.  The
// second return value is false when no usable option remains, in which case
// the field carries no options at all.
func EncodeOptions(options []string) (string, bool) {
	clean := make([]string, 0, len(options))
	for _, opt := range options {
		if trimmed := strings.TrimSpace(opt); trimmed != "" {
			clean = append(clean, trimmed)
		}
	}
	if len(clean) == 0 {
		return "", false
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// DecodeOptions parses a serialised option list.  A blank or unparseable
// string means "no options configured" and yields an empty list; decoding
// never fails.
func DecodeOptions(encoded string) []string {
	if encoded == "" {
		return []string{}
	}
	var options []string
	if err := json.Unmarshal([]byte(encoded), &options); err != nil {
		return []string{}
	}
	return options
}

var (
	nameSeparators = regexp.MustCompile(`[\s-]+`)
	nameInvalid    = regexp.MustCompile(`[^a-z0-9_]+`)
	nameCollapse   = regexp.MustCompile(`_+`)
)

// DeriveName turns a display label into a machine-safe field name: lowercase,
// spaces and hyphens become single underscores, all other non-alphanumeric
// characters are stripped, with no leading or trailing underscore.
func DeriveName(label string) string {
	name := strings.ToLower(strings.TrimSpace(label))
	name = nameSeparators.ReplaceAllString(name, "_")
	name = nameInvalid.ReplaceAllString(name, "")
	name = nameCollapse.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

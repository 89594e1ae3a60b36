package rules

import "github.com/hyprpal/hyprrules/internal/config"

// falseKeywords overrides the "<field> 0" rendering of disabled boolean properties.
var falseKeywords = map[string]string{
	"dimaround":   "nodim",
	"allowsinput": "allowsinput 0",
}

// FormatProperty renders a property value as a windowrule token.
// Non-scalar values produce no token.
func FormatProperty(field string, v config.Value) (string, bool) {
	switch v.Kind {
	case config.NonScalar:
		return "", false
	case config.Bool:
		if v.Bool {
			return field + " 1", true
		}
		if keyword, ok := falseKeywords[field]; ok {
			return keyword, true
		}
		return field + " 0", true
	case config.String:
		if field == "plugin" {
			return v.Text, true
		}
	}
	return field + " " + v.Text, true
}

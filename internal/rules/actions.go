package rules

import "github.com/hyprpal/hyprrules/internal/config"

// StaticAction is the dispatcher a static property maps to when its rule follows a window.
type StaticAction struct {
	Verb string
	// Parametric verbs take the property value as their argument.
	Parametric bool
}

var staticActions = map[string]StaticAction{
	"float":      {Verb: "setfloating"},
	"tile":       {Verb: "settiled"},
	"fullscreen": {Verb: "fullscreen"},
	"maximize":   {Verb: "fullscreen 1"},
	"move":       {Verb: "movewindowpixel exact", Parametric: true},
	"size":       {Verb: "resizewindowpixel exact", Parametric: true},
	"center":     {Verb: "centerwindow"},
	"workspace":  {Verb: "movetoworkspace", Parametric: true},
	"pin":        {Verb: "pin"},
}

// LookupStaticAction returns the dispatcher for a property field, if it is a static property.
func LookupStaticAction(field string) (StaticAction, bool) {
	action, ok := staticActions[field]
	return action, ok
}

// IsStaticField reports whether field belongs to the static property set.
func IsStaticField(field string) bool {
	_, ok := staticActions[field]
	return ok
}

// Fragment renders the dispatch command prefix. The window selector is appended
// at dispatch time, so parametric fragments end with the argument separator.
func (a StaticAction) Fragment(v config.Value) (string, bool) {
	if !a.Parametric {
		return a.Verb + " ", true
	}
	switch v.Kind {
	case config.String, config.Int, config.Float:
		return a.Verb + " " + v.Text + ",", true
	default:
		return "", false
	}
}

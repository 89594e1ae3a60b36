package rules

import (
	"strings"

	"github.com/hyprpal/hyprrules/internal/config"
)

// followKeys mark a match as bound to a live window identity. They never reach the clause.
var followKeys = map[string]struct{}{
	"follow-title": {},
	"follow":       {},
}

// MatchSpec is the matching half of a rule with the follow flag split out.
type MatchSpec struct {
	fields config.Mapping
	follow bool
}

// NewMatchSpec copies m, dropping follow keys. Only a boolean true enables follow.
func NewMatchSpec(m config.Mapping) MatchSpec {
	spec := MatchSpec{fields: make(config.Mapping, 0, len(m))}
	for _, f := range m {
		if _, ok := followKeys[f.Name]; ok {
			if f.Value.Kind == config.Bool && f.Value.Bool {
				spec.follow = true
			}
			continue
		}
		spec.fields = append(spec.fields, f)
	}
	return spec
}

// Follow reports whether the rule should be re-applied on focus changes.
func (m MatchSpec) Follow() bool {
	return m.follow
}

// ClauseStyle selects how match tokens are rendered and joined.
type ClauseStyle int

const (
	// Inline renders field:value tokens joined by commas, for anonymous rules.
	Inline ClauseStyle = iota
	// Named renders "field = value" lines, for rules inside a named block.
	Named
)

// Clause is a compiled match clause with the identity fields extracted.
type Clause struct {
	Text string

	title, class       string
	hasTitle, hasClass bool
}

// Title returns the literal title matcher, if one was present.
func (c Clause) Title() (string, bool) {
	return c.title, c.hasTitle
}

// Class returns the literal class matcher, if one was present.
func (c Clause) Class() (string, bool) {
	return c.class, c.hasClass
}

// CompileMatch renders spec in the requested style.
func CompileMatch(spec MatchSpec, style ClauseStyle) Clause {
	var clause Clause
	tokens := make([]string, 0, len(spec.fields))
	for _, f := range spec.fields {
		if !f.Value.IsScalar() {
			continue
		}
		value := f.Value.Text
		switch f.Name {
		case "class":
			clause.class, clause.hasClass = value, true
		case "title":
			clause.title, clause.hasTitle = value, true
		}
		if style == Named {
			tokens = append(tokens, f.Name+" = "+value)
		} else {
			tokens = append(tokens, f.Name+":"+value)
		}
	}
	sep := ","
	if style == Named {
		sep = "\n"
	}
	clause.Text = strings.Join(tokens, sep)
	return clause
}

package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyprpal/hyprrules/internal/config"
)

// Keyword is the Hyprland statement every compiled rule is emitted under.
const Keyword = "windowrule"

// ErrFollowIdentity is returned when a follow rule cannot be bound to a window identity.
var ErrFollowIdentity = errors.New("follow-title requires both title and class to be set")

// FollowError reports a follow rule whose match lacks a title or class.
type FollowError struct {
	Line         int
	Match        string
	MissingTitle bool
	MissingClass bool
}

func (e *FollowError) Error() string {
	var missing []string
	if e.MissingTitle {
		missing = append(missing, "title")
	}
	if e.MissingClass {
		missing = append(missing, "class")
	}
	msg := fmt.Sprintf("%v (missing %s in %s)", ErrFollowIdentity, strings.Join(missing, " and "), e.Match)
	if e.Line > 0 {
		return fmt.Sprintf("rule at line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *FollowError) Unwrap() error {
	return ErrFollowIdentity
}

// RuntimeRule re-applies static properties to the window with a given title and class.
type RuntimeRule struct {
	Title     string
	Class     string
	Fragments []string
}

// Key identifies the rule in logs and counters.
func (r RuntimeRule) Key() string {
	return r.Class + "|" + r.Title
}

// Matches reports whether a window with the given identity is the rule's target.
func (r RuntimeRule) Matches(title, class string) bool {
	return r.Title == title && r.Class == class
}

// Commands completes every fragment with the window address selector.
func (r RuntimeRule) Commands(address uint64) []string {
	out := make([]string, 0, len(r.Fragments))
	for _, fragment := range r.Fragments {
		out = append(out, fmt.Sprintf("%saddress:0x%x", fragment, address))
	}
	return out
}

// Rule is a compiled match clause plus its properties.
type Rule struct {
	Name       string
	Clause     Clause
	Properties []Property

	runtime *RuntimeRule
}

// NewRule compiles a rule. A non-empty name selects the named block rendering.
func NewRule(name string, match MatchSpec, props PropertySpec) (*Rule, error) {
	style := Inline
	if name != "" {
		style = Named
	}
	clause := CompileMatch(match, style)
	compiled := CompileProperties(props)

	rule := &Rule{
		Name:       name,
		Clause:     clause,
		Properties: compiled.Properties,
	}
	if !match.Follow() {
		return rule, nil
	}
	title, hasTitle := clause.Title()
	class, hasClass := clause.Class()
	if !hasTitle || !hasClass {
		return nil, &FollowError{
			Match:        match.fields.Describe(),
			MissingTitle: !hasTitle,
			MissingClass: !hasClass,
		}
	}
	rule.runtime = &RuntimeRule{
		Title:     title,
		Class:     class,
		Fragments: compiled.Fragments,
	}
	return rule, nil
}

// Runtime returns the live half of a follow rule.
func (r *Rule) Runtime() (RuntimeRule, bool) {
	if r.runtime == nil {
		return RuntimeRule{}, false
	}
	rt := *r.runtime
	rt.Fragments = append([]string(nil), r.runtime.Fragments...)
	return rt, true
}

// printed returns the property tokens that belong in the static output. Static
// properties of follow rules are applied by dispatch instead.
func (r *Rule) printed() []string {
	out := make([]string, 0, len(r.Properties))
	for _, p := range r.Properties {
		if r.runtime != nil && IsStaticField(p.Field) {
			continue
		}
		out = append(out, p.Token)
	}
	return out
}

// Render returns the DSL statements for the rule. Named rules render as one
// block; anonymous rules render one statement per property.
func (r *Rule) Render() []string {
	props := r.printed()
	if len(props) == 0 {
		return nil
	}
	if r.Name != "" {
		return []string{r.renderBlock(props)}
	}
	lines := make([]string, 0, len(props))
	for _, p := range props {
		if r.Clause.Text == "" {
			lines = append(lines, fmt.Sprintf("%s = %s", Keyword, p))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = %s, %s", Keyword, p, r.Clause.Text))
	}
	return lines
}

func (r *Rule) renderBlock(props []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s {\n  name = %s\n", Keyword, r.Name)
	if r.Clause.Text != "" {
		for _, line := range strings.Split(r.Clause.Text, "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n")
	for _, p := range props {
		b.WriteString("  " + strings.Replace(p, " ", " = ", 1) + "\n")
	}
	b.WriteString("}")
	return b.String()
}

// Ruleset is the result of compiling a whole rule document.
type Ruleset struct {
	Lines   []string
	Runtime []RuntimeRule
}

// Compile builds every rule of the document. The first invalid follow rule aborts compilation.
func Compile(blocks []config.Block) (*Ruleset, error) {
	set := &Ruleset{}
	for _, block := range blocks {
		for i, m := range block.Matches {
			rule, err := NewRule(blockRuleName(block.Name, i), NewMatchSpec(m), block.Properties)
			if err != nil {
				var followErr *FollowError
				if errors.As(err, &followErr) {
					followErr.Line = block.Line
				}
				return nil, err
			}
			set.Lines = append(set.Lines, rule.Render()...)
			if rt, ok := rule.Runtime(); ok {
				set.Runtime = append(set.Runtime, rt)
			}
		}
	}
	return set, nil
}

// blockRuleName keeps generated block names unique when one named block lists several matches.
func blockRuleName(name string, index int) string {
	if name == "" || index == 0 {
		return name
	}
	return fmt.Sprintf("%s-%d", name, index+1)
}

package rules

import "github.com/hyprpal/hyprrules/internal/config"

// PropertySpec is the properties half of a rule, in source order.
type PropertySpec = config.Mapping

// Property is a single rendered property token.
type Property struct {
	Field string
	Token string
}

// CompiledProperties holds the printable tokens and the dispatch fragments of a PropertySpec.
type CompiledProperties struct {
	Properties []Property
	Fragments  []string
}

// Tokens returns the rendered tokens in order.
func (c CompiledProperties) Tokens() []string {
	out := make([]string, 0, len(c.Properties))
	for _, p := range c.Properties {
		out = append(out, p.Token)
	}
	return out
}

// CompileProperties renders every scalar property and collects dispatch
// fragments for the static ones. Non-scalar values contribute to neither list.
func CompileProperties(spec PropertySpec) CompiledProperties {
	var out CompiledProperties
	for _, f := range spec {
		token, ok := FormatProperty(f.Name, f.Value)
		if !ok {
			continue
		}
		out.Properties = append(out.Properties, Property{Field: f.Name, Token: token})

		action, static := LookupStaticAction(f.Name)
		if !static {
			continue
		}
		if fragment, ok := action.Fragment(f.Value); ok {
			out.Fragments = append(out.Fragments, fragment)
		}
	}
	return out
}

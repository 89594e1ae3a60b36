package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueKind identifies the YAML type of a rule field value.
type ValueKind int

const (
	// NonScalar covers mappings, sequences and nulls. Compilers skip these silently.
	NonScalar ValueKind = iota
	String
	Int
	Float
	Bool
)

func (k ValueKind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "integer"
	case Float:
		return "real"
	case Bool:
		return "boolean"
	default:
		return "non-scalar"
	}
}

// Value is a decoded field value. Text holds the canonical textual form of scalars.
type Value struct {
	Kind ValueKind
	Text string
	Bool bool
}

// IsScalar reports whether the value can be rendered into a rule token.
func (v Value) IsScalar() bool {
	return v.Kind != NonScalar
}

// StringValue builds a string scalar.
func StringValue(s string) Value {
	return Value{Kind: String, Text: s}
}

// IntValue builds an integer scalar.
func IntValue(i int64) Value {
	return Value{Kind: Int, Text: strconv.FormatInt(i, 10)}
}

// FloatValue builds a real scalar.
func FloatValue(f float64) Value {
	return Value{Kind: Float, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// BoolValue builds a boolean scalar.
func BoolValue(b bool) Value {
	text := "0"
	if b {
		text = "1"
	}
	return Value{Kind: Bool, Text: text, Bool: b}
}

// Field is a single key/value pair of a match or properties mapping.
type Field struct {
	Name  string
	Value Value
}

// Mapping is an ordered list of fields in source order.
type Mapping []Field

// Block is a single entry of the rule document.
type Block struct {
	Name       string
	Matches    []Mapping
	Properties Mapping
	Line       int
}

// Load reads and decodes a rule document.
func Load(path string) ([]Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Kind: KindIO, Path: path, Err: err}
	}
	blocks, err := Parse(data)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return nil, err
	}
	return blocks, nil
}

// Parse decodes a rule document. Only the first YAML document is considered.
func Parse(data []byte) ([]Block, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Kind: KindParse, Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &LoadError{Kind: KindSchema, Err: ErrNotSequence}
	}
	root := resolve(doc.Content[0])
	if root.Kind != yaml.SequenceNode {
		return nil, &LoadError{Kind: KindSchema, Line: root.Line, Err: ErrNotSequence}
	}
	blocks := make([]Block, 0, len(root.Content))
	for _, item := range root.Content {
		block, err := decodeBlock(resolve(item))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func decodeBlock(node *yaml.Node) (Block, error) {
	if node.Kind != yaml.MappingNode {
		return Block{}, schemaError(node.Line, "rule block must be a mapping")
	}
	block := Block{Line: node.Line}
	var properties *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		val := resolve(node.Content[i+1])
		switch key.Value {
		case "name":
			if val.Kind != yaml.ScalarNode {
				return Block{}, schemaError(val.Line, "name must be a scalar")
			}
			block.Name = val.Value
		case "match":
			matches, err := decodeMatches(val)
			if err != nil {
				return Block{}, err
			}
			block.Matches = matches
		case "properties":
			properties = val
		}
	}
	if len(block.Matches) == 0 {
		return block, nil
	}
	if properties == nil || properties.Kind != yaml.MappingNode {
		return Block{}, schemaError(node.Line, "properties must be a mapping")
	}
	block.Properties = decodeMapping(properties)
	return block, nil
}

func decodeMatches(node *yaml.Node) ([]Mapping, error) {
	switch node.Kind {
	case yaml.MappingNode:
		return []Mapping{decodeMapping(node)}, nil
	case yaml.SequenceNode:
		out := make([]Mapping, 0, len(node.Content))
		for _, item := range node.Content {
			item = resolve(item)
			if item.Kind != yaml.MappingNode {
				return nil, schemaError(item.Line, "match entries must be mappings")
			}
			out = append(out, decodeMapping(item))
		}
		return out, nil
	default:
		return nil, nil
	}
}

// decodeMapping keeps insertion order. Keys that are not plain scalars are skipped.
func decodeMapping(node *yaml.Node) Mapping {
	out := make(Mapping, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := resolve(node.Content[i])
		if key.Kind != yaml.ScalarNode || key.ShortTag() != "!!str" {
			continue
		}
		out = append(out, Field{Name: key.Value, Value: decodeValue(resolve(node.Content[i+1]))})
	}
	return out
}

func decodeValue(node *yaml.Node) Value {
	if node.Kind != yaml.ScalarNode {
		return Value{Kind: NonScalar}
	}
	switch node.ShortTag() {
	case "!!null":
		return Value{Kind: NonScalar}
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return StringValue(node.Value)
		}
		return BoolValue(b)
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return StringValue(node.Value)
		}
		return IntValue(i)
	case "!!float":
		return Value{Kind: Float, Text: node.Value}
	default:
		return StringValue(node.Value)
	}
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// Describe renders a mapping for diagnostics.
func (m Mapping) Describe() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			b.WriteString(", ")
		}
		if f.Value.IsScalar() {
			fmt.Fprintf(&b, "%s: %s", f.Name, f.Value.Text)
			continue
		}
		fmt.Fprintf(&b, "%s: <%s>", f.Name, f.Value.Kind)
	}
	b.WriteByte('}')
	return b.String()
}

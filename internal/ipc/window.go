package ipc

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Window is the identity of a Hyprland client.
type Window struct {
	Address uint64
	Title   string
	Class   string
}

// ParseActiveWindow decodes the plain-text response of the activewindow request.
//
// The first line carries the address as "Window <hex> -> <title>:"; the rest is
// an indented key/value listing that reads as YAML once left-trimmed.
func ParseActiveWindow(resp string) (Window, error) {
	if resp == "Invalid" {
		return Window{}, ErrNoWindow
	}
	header, body, _ := strings.Cut(resp, "\n")

	start := strings.Index(header, "Window ")
	end := strings.Index(header, " ->")
	if start < 0 || end < 0 {
		return Window{}, fmt.Errorf("malformed header %q", header)
	}
	start += len("Window ")
	if end < start {
		return Window{}, fmt.Errorf("malformed header %q", header)
	}
	address, err := strconv.ParseUint(header[start:end], 16, 64)
	if err != nil {
		return Window{}, fmt.Errorf("parse address: %w", err)
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, " \t")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &doc); err != nil {
		return Window{}, fmt.Errorf("decode window fields: %w", err)
	}
	fields := scalarFields(&doc)
	title, ok := fields["title"]
	if !ok {
		return Window{}, fmt.Errorf("window %x has no title", address)
	}
	class, ok := fields["class"]
	if !ok {
		return Window{}, fmt.Errorf("window %x has no class", address)
	}
	return Window{Address: address, Title: title, Class: class}, nil
}

// scalarFields returns the raw text of every top-level scalar value, so that
// titles like "2048" or "true" stay strings. An empty value reads as "".
func scalarFields(doc *yaml.Node) map[string]string {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil
	}
	root := doc.Content[0]
	out := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			continue
		}
		if _, seen := out[key.Value]; seen {
			continue
		}
		out[key.Value] = val.Value
	}
	return out
}

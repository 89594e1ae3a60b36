package config

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures while loading a rule document.
type ErrorKind int

const (
	// KindIO means the file could not be read.
	KindIO ErrorKind = iota
	// KindParse means the document is not well-formed YAML.
	KindParse
	// KindSchema means the YAML is valid but not shaped like a rule list.
	KindSchema
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindSchema:
		return "schema"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	// ErrNotSequence is reported when the document root is not a sequence of rule blocks.
	ErrNotSequence = errors.New("rules aren't an array")
	// ErrInvalidBlock is reported when a rule block is not shaped as expected.
	ErrInvalidBlock = errors.New("invalid rule block")
)

// LoadError describes why a rule document could not be loaded.
type LoadError struct {
	Kind ErrorKind
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	var prefix string
	switch e.Kind {
	case KindIO:
		prefix = "read rules"
	case KindParse:
		prefix = "parse rules"
	default:
		prefix = "invalid rules"
	}
	if e.Path != "" {
		prefix += " " + e.Path
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", prefix, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func schemaError(line int, format string, args ...any) error {
	return &LoadError{
		Kind: KindSchema,
		Line: line,
		Err:  fmt.Errorf("%w: %s", ErrInvalidBlock, fmt.Sprintf(format, args...)),
	}
}

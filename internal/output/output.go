// Package output provides output formatters for command reports.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Report is a value a command prints. Text renders the default plain form;
// JSON and YAML use the struct tags of the concrete type.
type Report interface {
	Text() string
}

// Formatter formats reports for output.
type Formatter interface {
	// Format writes the formatted report to the writer.
	Format(w io.Writer, r Report) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatText FormatType = "text"
	FormatJSON FormatType = "json"
	FormatYAML FormatType = "yaml"
)

// ValidFormats returns all valid format values.
func ValidFormats() []FormatType {
	return []FormatType{FormatText, FormatJSON, FormatYAML}
}

// ParseFormat parses a format name. Empty means text.
func ParseFormat(s string) (FormatType, error) {
	switch FormatType(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid format %q, must be one of: %v", s, ValidFormats())
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template string // Custom template for text format
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatText, "":
		return NewTextFormatter(opts)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

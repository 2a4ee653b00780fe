// Package output renders lab listings for the terminal, as a table, as
// YAML or as JSON.
package output

import "fmt"

// LabSummary is one row of the lab listing.
type LabSummary struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Nodes    int    `json:"nodes" yaml:"nodes"`
	Archived bool   `json:"archived" yaml:"archived"`
}

// Format names a supported rendering.
type Format string

const (
	// FormatTable renders a tab-aligned table for humans.
	FormatTable Format = "table"
	// FormatYAML renders a YAML sequence.
	FormatYAML Format = "yaml"
	// FormatJSON renders a JSON array for scripting.
	FormatJSON Format = "json"
)

// Formatter renders one lab listing.
type Formatter interface {
	FormatLabs(labs []LabSummary) (string, error)
}

// Options selects the rendering and its table tweaks.
type Options struct {
	Format    Format
	NoHeaders bool
}

// NewFormatter returns the Formatter for the requested format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat rejects format strings no formatter exists for. Called
// before any network work so a typo fails immediately.
func ValidateFormat(format string) error {
	switch Format(format) {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}

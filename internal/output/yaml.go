package output

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats resources as YAML.
type YAMLFormatter struct{}

// FormatLabs formats a lab listing as a YAML sequence.
func (f *YAMLFormatter) FormatLabs(labs []LabSummary) (string, error) {
	if len(labs) == 0 {
		return "", nil
	}

	data, err := yaml.Marshal(labs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal labs to YAML: %w", err)
	}

	return string(data), nil
}

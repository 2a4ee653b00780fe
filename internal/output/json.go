package output

import (
	"encoding/json"
	"fmt"
)

// JSONFormatter formats resources as JSON.
type JSONFormatter struct{}

// FormatLabs formats a lab listing as a JSON array.
func (f *JSONFormatter) FormatLabs(labs []LabSummary) (string, error) {
	if len(labs) == 0 {
		return "[]\n", nil
	}

	data, err := json.MarshalIndent(labs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal labs to JSON: %w", err)
	}

	return string(data) + "\n", nil
}

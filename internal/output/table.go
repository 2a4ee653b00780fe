package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// TableFormatter formats resources as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

// FormatLabs formats a lab listing as a table.
func (f *TableFormatter) FormatLabs(labs []LabSummary) (string, error) {
	if len(labs) == 0 {
		return "No labs found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "ID\tTITLE\tNODES\tARCHIVED")
	}

	for _, lab := range labs {
		title := lab.Title
		if title == "" {
			title = "-"
		}
		archived := "no"
		if lab.Archived {
			archived = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", lab.ID, title, lab.Nodes, archived)
	}

	_ = w.Flush()
	return buf.String(), nil
}

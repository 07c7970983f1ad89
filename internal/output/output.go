// Package output renders check results as CSV, a table, or JSON.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/domainsweep/domainsweep/internal/core"
)

// Format identifies an output format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format: %q (expected csv, table, or json)", value)
	}
}

// Render writes a complete result set in the given format.
func Render(w io.Writer, format Format, results []*core.CheckResult) error {
	switch format {
	case FormatCSV:
		return renderCSV(w, results)
	case FormatTable:
		return renderTable(w, results)
	case FormatJSON:
		return renderJSON(w, results)
	default:
		return fmt.Errorf("unknown output format: %q", format)
	}
}

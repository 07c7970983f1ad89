package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/domainsweep/domainsweep/internal/core"
)

var csvHeader = []string{"domain", "available", "status", "http_status"}

// CSVWriter streams results as CSV rows, one per check, so batch runs can
// emit output incrementally.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVWriter wraps w in a streaming CSV encoder.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// WriteHeader emits the column header once.
func (c *CSVWriter) WriteHeader() error {
	if c.wroteHeader {
		return nil
	}
	c.wroteHeader = true
	return c.w.Write(csvHeader)
}

// Write appends one result row and flushes so output survives interruption.
func (c *CSVWriter) Write(result *core.CheckResult) error {
	if err := c.WriteHeader(); err != nil {
		return err
	}

	available := ""
	if value, ok := result.Available.Bool(); ok {
		available = strconv.FormatBool(value)
	}

	httpStatus := ""
	if result.StatusCode != 0 {
		httpStatus = strconv.Itoa(result.StatusCode)
	}

	if err := c.w.Write([]string{result.Domain, available, result.Status, httpStatus}); err != nil {
		return err
	}

	c.w.Flush()
	return c.w.Error()
}

// Flush drains any buffered rows.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

func renderCSV(w io.Writer, results []*core.CheckResult) error {
	writer := NewCSVWriter(w)
	if err := writer.WriteHeader(); err != nil {
		return err
	}
	for _, result := range results {
		if err := writer.Write(result); err != nil {
			return err
		}
	}
	return writer.Flush()
}

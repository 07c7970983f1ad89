package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/domainsweep/domainsweep/internal/core"
)

func renderTable(w io.Writer, results []*core.CheckResult) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Domain", "Available", "Status", "HTTP"})

	available := 0
	for _, result := range results {
		verdict := result.Available.String()
		if result.Available == core.AvailabilityAvailable {
			available++
		}

		httpStatus := ""
		if result.StatusCode != 0 {
			httpStatus = fmt.Sprintf("%d", result.StatusCode)
		}

		t.AppendRow(table.Row{result.Domain, verdict, result.Status, httpStatus})
	}

	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d/%d available", available, len(results)), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter},
		{Number: 4, Align: text.AlignRight},
	})

	t.Render()
	return nil
}

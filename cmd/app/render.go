package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"filmtag/internal/models"
)

func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// printReport renders the run report as a table on a terminal and as JSON
// when stdout is redirected, so scripted callers can parse it.
func printReport(report *models.RunReport) error {
	if !isTTY(os.Stdout) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Photos", "Matched", "Unmatched", "Tagged"})
	tw.AppendRow(table.Row{
		report.Summary.Photos,
		report.Summary.Matched,
		report.Summary.Unmatched,
		report.Tagged,
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	fmt.Println(tw.Render())

	if len(report.Outputs) > 0 {
		ow := table.NewWriter()
		ow.SetStyle(table.StyleRounded)
		ow.AppendHeader(table.Row{"Output", "Rows", "Checksum"})
		for _, out := range report.Outputs {
			ow.AppendRow(table.Row{out.Path, out.Rows, out.Checksum[:12]})
		}
		ow.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, Align: text.AlignRight},
		})
		fmt.Println(ow.Render())
	}

	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return nil
}

/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// column is one column of the summary table.
type column struct {
	header string
	align  tw.Align
}

// summaryColumns lists the table columns. Counts are right-aligned so they
// line up across targets.
var summaryColumns = []column{
	{header: "Target", align: tw.AlignLeft},
	{header: "Result", align: tw.AlignLeft},
	{header: "Changed", align: tw.AlignRight},
	{header: "Removed", align: tw.AlignRight},
	{header: "Commits", align: tw.AlignRight},
	{header: "Pull Request", align: tw.AlignLeft},
}

// newSummaryTable creates the markdown table of a run summary writing to w.
func newSummaryTable(w io.Writer) *tablewriter.Table {
	headers := make([]string, len(summaryColumns))
	aligns := make([]tw.Align, len(summaryColumns))
	for i, c := range summaryColumns {
		headers[i] = c.header
		aligns[i] = c.align
	}

	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft, PerColumn: aligns},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

package commands

import (
	"fmt"
	"io"
	"yst-fantasy/internal/collector"
	"yst-fantasy/internal/reconcile"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func renderReport(out io.Writer, report reconcile.Report) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Provider", "Inputs", "Matched", "Ambiguous", "Malformed"})
	for _, p := range reconcile.Providers {
		t.AppendRow(table.Row{
			p.String(),
			report.Inputs[p],
			report.Matched[p],
			report.Ambiguous[p],
			report.MalformedCount(p),
		})
	}
	t.AppendFooter(table.Row{"Records", report.Records})
	t.Render()

	if len(report.NearMisses) > 0 {
		nm := newTable(out)
		nm.SetTitle("Near misses")
		nm.AppendHeader(table.Row{"Team", "Left", "Right", "Similarity"})
		for _, m := range report.NearMisses {
			nm.AppendRow(table.Row{m.Team, m.Left, m.Right, fmt.Sprintf("%.3f", m.Similarity)})
		}
		nm.Render()
	}

	if len(report.Malformed) > 0 {
		mt := newTable(out)
		mt.SetTitle("Malformed")
		mt.AppendHeader(table.Row{"Provider", "Index", "Id", "Reason"})
		for _, m := range report.Malformed {
			mt.AppendRow(table.Row{m.Provider.String(), m.Index, m.Id, m.Reason})
		}
		mt.Render()
	}
}

func renderSummary(out io.Writer, summary collector.Summary) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Provider", "Players", "Snapshot", "Status"})
	for _, ps := range summary.Providers {
		status := "ok"
		switch {
		case ps.Skipped:
			status = "skipped (not configured)"
		case ps.Err != nil:
			status = ps.Err.Error()
		}
		t.AppendRow(table.Row{ps.Provider.String(), ps.Players, ps.Path, status})
	}
	t.Render()
	renderReport(out, summary.Result.Report)
	if summary.ComprehensivePath != "" {
		fmt.Fprintf(out, "wrote %s\n", summary.ComprehensivePath)
	}
}

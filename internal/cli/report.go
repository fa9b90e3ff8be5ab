package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/imyousuf/schemascan/internal/catalog"
	"github.com/imyousuf/schemascan/internal/graph"
)

var (
	reportHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	reportLabelStyle  = lipgloss.NewStyle().Faint(true).Width(18)
	deadStyle         = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"})
)

// renderResult writes rep in the given format ("json" or "table").
func renderResult(w io.Writer, rep *report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "table", "":
		renderTable(w, rep)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, rep *report) {
	res, a := rep.Result, rep.Analysis

	fmt.Fprintln(w, reportHeaderStyle.Render("Database entities"))
	if len(a.Tables)+len(a.Views) == 0 {
		fmt.Fprintln(w, "  No tables or views found.")
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Kind", "Name", "Operations", "Score", "First seen"})
		for _, e := range a.Tables {
			t.AppendRow(entityRow(e))
		}
		for _, e := range a.Views {
			t.AppendRow(entityRow(e))
		}
		t.Render()
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, reportHeaderStyle.Render("Summary"))
	printField(w, "Run", res.RunID)
	printField(w, "Files scanned", strconv.Itoa(res.Stats.FilesScanned))
	printField(w, "Files skipped", strconv.Itoa(res.Stats.FilesSkipped))
	if res.Stats.FilesFailed > 0 {
		printField(w, "Files failed", deadStyle.Render(strconv.Itoa(res.Stats.FilesFailed)))
	}
	printField(w, "Operations", strconv.Itoa(a.TotalOperations))
	printField(w, "Tables", fmt.Sprintf("%d (%d unused)", len(a.Tables), len(a.UnusedTables)))
	printField(w, "Views", fmt.Sprintf("%d (%d unused)", len(a.Views), len(a.UnusedViews)))
	printField(w, "Dead code", fmt.Sprintf("%.1f%%", a.DeadCodePercentage))
	if len(a.Libraries) > 0 {
		printField(w, "Libraries", strings.Join(a.Libraries, ", "))
	}
	if rep.Store != nil {
		printField(w, "Stored nodes", fmt.Sprintf("%d (%d dead, %d tables, %d views)",
			rep.Store.NodeCount, rep.Store.DeadCount,
			rep.Store.NodesByType[graph.NodeTable], rep.Store.NodesByType[graph.NodeView]))
	}
}

func entityRow(e *catalog.Entity) table.Row {
	score := strconv.Itoa(e.LiveCodeScore)
	if e.IsDead() {
		score = deadStyle.Render(score)
	}
	return table.Row{string(e.Kind), e.Name, strings.Join(e.OperationKinds(), ","), score, location(e)}
}

func location(e *catalog.Entity) string {
	if e.File == "" {
		return "-"
	}
	if e.Line == 0 {
		return e.File
	}
	return fmt.Sprintf("%s:%d", e.File, e.Line)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", reportLabelStyle.Render(label+":"), value)
}

// Package report renders run results and history listings for the
// terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/qeforge/qeforge/internal/classify"
	"github.com/qeforge/qeforge/internal/history"
	"github.com/qeforge/qeforge/internal/solver"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
)

// TextReporter writes human-readable output.
type TextReporter struct {
	w     io.Writer
	color bool
}

// NewTextReporter creates a reporter. If w is nil, defaults to
// os.Stdout. color enables styled output.
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{w: w, color: color}
}

func (r *TextReporter) render(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

func (r *TextReporter) verdictLabel(v classify.Verdict, timedOut bool) string {
	switch {
	case timedOut:
		return r.render(failStyle, "TIMEOUT")
	case v == classify.Succeeded:
		return r.render(okStyle, "SUCCEEDED")
	case v == classify.Failed:
		return r.render(failStyle, "FAILED")
	default:
		return r.render(warnStyle, "INDETERMINATE")
	}
}

// PrintRunResult writes the one-line outcome summary plus sink paths.
func (r *TextReporter) PrintRunResult(input string, outcome solver.ProcessOutcome, verdict classify.Verdict) {
	fmt.Fprintf(r.w, "%s  %s  %s  exit=%d\n",
		r.verdictLabel(verdict, outcome.TimedOut),
		input,
		outcome.Elapsed.Round(100*time.Millisecond),
		outcome.ExitCode,
	)
	fmt.Fprintf(r.w, "%s\n", r.render(dimStyle, "  output: "+outcome.OutputPath))
}

// PrintHistory writes recent run records, newest first.
func (r *TextReporter) PrintHistory(recs []history.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(r.w, "no recorded runs")
		return
	}

	for _, rec := range recs {
		style := warnStyle
		switch rec.Verdict {
		case classify.Succeeded.String():
			style = okStyle
		case classify.Failed.String():
			style = failStyle
		}
		fmt.Fprintf(r.w, "%s  %-13s  %-20s  exit=%-3d  %8s  %s\n",
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.render(style, rec.Verdict),
			rec.Input,
			rec.ExitCode,
			rec.Elapsed.Round(time.Millisecond),
			r.render(dimStyle, rec.RunDir),
		)
	}
}

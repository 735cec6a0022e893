// Package report renders scenario results for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/samber/lo"

	"github.com/roach88/tryeach/internal/scenario"
	"github.com/roach88/tryeach/internal/store"
)

// Summary is the machine-readable result of a run.
type Summary struct {
	RunID           string               `json:"runId,omitempty"`
	Success         bool                 `json:"success"`
	Passed          int                  `json:"passed"`
	Failed          int                  `json:"failed"`
	AllowedFailures int                  `json:"allowedFailures"`
	Results         []scenario.RunResult `json:"results"`
}

// Summarize counts results.
func Summarize(results []scenario.RunResult) Summary {
	if results == nil {
		results = []scenario.RunResult{}
	}
	s := Summary{Results: results, Success: scenario.Succeeded(results)}
	s.Passed = lo.CountBy(results, func(r scenario.RunResult) bool { return r.Success })
	s.Failed = lo.CountBy(results, func(r scenario.RunResult) bool { return r.Blocking() })
	s.AllowedFailures = len(results) - s.Passed - s.Failed
	return s
}

// Response is the JSON envelope written by WriteJSON.
type Response struct {
	Status string  `json:"status"` // "ok" or "failed"
	Data   Summary `json:"data"`
}

// WriteJSON writes summary inside the standard envelope.
func WriteJSON(w io.Writer, summary Summary) error {
	status := "ok"
	if !summary.Success {
		status = "failed"
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Response{Status: status, Data: summary})
}

// ColorEnabled reports whether w is a terminal that should get colour.
// NO_COLOR disables colour regardless.
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var (
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)
	allowedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00")).Bold(true)
	grayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

// WriteText renders a results table followed by a one-line summary.
func WriteText(w io.Writer, summary Summary, color bool) error {
	style := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	rows := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		rows = append(rows, []string{
			r.Scenario.Name,
			style(statusStyle(r), Status(r)),
			exitCode(r),
			r.Duration.Round(time.Millisecond).String(),
			r.Command,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SCENARIO", "RESULT", "EXIT", "DURATION", "COMMAND").
		Rows(rows...)
	t.StyleFunc(func(row, col int) lipgloss.Style {
		return lipgloss.NewStyle().Padding(0, 1)
	})
	if color {
		t.BorderStyle(grayStyle)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}

	line := fmt.Sprintf("%d scenario(s): %d passed, %d failed, %d allowed to fail",
		len(summary.Results), summary.Passed, summary.Failed, summary.AllowedFailures)
	if summary.Success {
		line = style(passStyle, line)
	} else {
		line = style(failStyle, line)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// Status is the short label shown for a result.
func Status(r scenario.RunResult) string {
	switch {
	case r.Success:
		return "pass"
	case r.Error != nil && r.Error.Kind == scenario.ErrorKindCancelled:
		return "cancelled"
	case r.Error != nil && r.Error.Kind == scenario.ErrorKindSetup:
		return "setup failed"
	case r.AllowedToFail:
		return "fail (allowed)"
	default:
		return "fail"
	}
}

func statusStyle(r scenario.RunResult) lipgloss.Style {
	switch {
	case r.Success:
		return passStyle
	case r.AllowedToFail:
		return allowedStyle
	default:
		return failStyle
	}
}

func exitCode(r scenario.RunResult) string {
	if r.Error != nil && r.Error.Kind != scenario.ErrorKindExecute {
		return "-"
	}
	return strconv.Itoa(r.ExitCode)
}

// WriteRuns renders recorded runs as a table, newest first.
func WriteRuns(w io.Writer, runs []store.RunSummary, color bool) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		result := "pass"
		s := passStyle
		if !r.Success {
			result, s = "fail", failStyle
		}
		if color {
			result = s.Render(result)
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Command,
			result,
			fmt.Sprintf("%d/%d", r.Scenarios-r.Failed, r.Scenarios),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RUN", "STARTED", "COMMAND", "RESULT", "PASSED", "DURATION").
		Rows(rows...)
	t.StyleFunc(func(row, col int) lipgloss.Style {
		return lipgloss.NewStyle().Padding(0, 1)
	})
	if color {
		t.BorderStyle(grayStyle)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

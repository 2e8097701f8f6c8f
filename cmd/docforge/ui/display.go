package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/docforge/docforge/internal/domain"
)

func (u *UI) paint(attrs []color.Attribute, format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if u.noColor {
		return msg
	}
	return color.New(attrs...).Sprint(msg)
}

// Success prints a success message.
func (u *UI) Success(format string, args ...interface{}) {
	fmt.Fprintln(u.Out, u.paint([]color.Attribute{color.FgGreen}, "✓ "+format, args...))
}

// Error prints an error message.
func (u *UI) Error(format string, args ...interface{}) {
	fmt.Fprintln(u.Err, u.paint([]color.Attribute{color.FgRed}, "✗ "+format, args...))
}

// Warning prints a warning message.
func (u *UI) Warning(format string, args ...interface{}) {
	fmt.Fprintln(u.Err, u.paint([]color.Attribute{color.FgYellow}, "⚠ "+format, args...))
}

// Info prints an info message.
func (u *UI) Info(format string, args ...interface{}) {
	fmt.Fprintln(u.Out, u.paint([]color.Attribute{color.FgCyan}, "ℹ "+format, args...))
}

// Step prints a step message.
func (u *UI) Step(format string, args ...interface{}) {
	fmt.Fprintln(u.Out, u.paint([]color.Attribute{color.FgBlue}, "→ "+format, args...))
}

// Section prints a section header.
func (u *UI) Section(title string) {
	fmt.Fprintln(u.Out)
	fmt.Fprintln(u.Out, u.paint([]color.Attribute{color.FgMagenta, color.Bold}, "━━━ %s ━━━", strings.ToUpper(title)))
	fmt.Fprintln(u.Out)
}

// KeyValue prints a key-value pair.
func (u *UI) KeyValue(key string, value interface{}) {
	fmt.Fprintf(u.Out, "  %s %v\n", u.paint([]color.Attribute{color.FgYellow}, "%s:", key), value)
}

// Newline prints a newline.
func (u *UI) Newline() {
	fmt.Fprintln(u.Out)
}

// OperationError prints a failure with its suggestions as bullets.
func (u *UI) OperationError(err *domain.OperationError) {
	u.Error("%s: %s", err.Kind, err.Message)
	for _, s := range err.Suggestions {
		fmt.Fprintf(u.Err, "  • %s\n", s)
	}
}

// Table prints a formatted table.
func (u *UI) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && displayWidth(cell) > widths[i] {
				widths[i] = displayWidth(cell)
			}
		}
	}

	border := func(left, mid, right string) string {
		h, l, m, r := "─", left, mid, right
		if u.noColor {
			h, l, m, r = "-", "+", "+", "+"
		}
		var b strings.Builder
		b.WriteString(l)
		for i, w := range widths {
			b.WriteString(strings.Repeat(h, w+2))
			if i < len(widths)-1 {
				b.WriteString(m)
			}
		}
		b.WriteString(r)
		return u.paint([]color.Attribute{color.FgCyan, color.Bold}, "%s", b.String())
	}
	line := func(cells []string) string {
		sep := "│"
		if u.noColor {
			sep = "|"
		}
		var b strings.Builder
		b.WriteString(sep)
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(&b, " %s%s %s", cell, strings.Repeat(" ", widths[i]-displayWidth(cell)), sep)
		}
		return b.String()
	}

	fmt.Fprintln(u.Out, border("┌", "┬", "┐"))
	fmt.Fprintln(u.Out, line(headers))
	fmt.Fprintln(u.Out, border("├", "┼", "┤"))
	for _, row := range rows {
		fmt.Fprintln(u.Out, line(row))
	}
	fmt.Fprintln(u.Out, border("└", "┴", "┘"))
}

// ItemLine formats one progress line: "[3/10] ✓ name (1.2s)".
func ItemLine(index, total int, name string, res domain.OperationResult) string {
	mark := "✓"
	if !res.OK() {
		mark = "✗"
	}
	return fmt.Sprintf("[%d/%d] %s %s (%s)", index, total, mark, name, FormatDuration(res.ProcessingTime))
}

// Results prints the per-item table of a batch report.
func (u *UI) Results(report domain.BatchReport) {
	if report.Total == 0 {
		u.Warning("No PDF files found to process")
		return
	}

	rows := make([][]string, 0, len(report.Items))
	for _, it := range report.Items {
		status := u.paint([]color.Attribute{color.FgGreen}, "✓ OK")
		output := it.Result.OutputPath
		size := "-"
		if it.Result.OK() {
			if d := it.Result.Details; d.OutputBytes > 0 {
				size = FormatBytes(d.OutputBytes)
				if d.InputBytes > 0 && d.InputBytes != d.OutputBytes {
					size = fmt.Sprintf("%s → %s (%.1f%%)", FormatBytes(d.InputBytes), FormatBytes(d.OutputBytes), d.ReductionPercent())
				}
			}
		} else {
			status = u.paint([]color.Attribute{color.FgRed}, "✗ %s", it.Result.Err.Kind)
			output = it.Result.Err.Message
		}
		rows = append(rows, []string{it.Item.Name(), status, size, FormatDuration(it.Result.ProcessingTime), output})
	}
	u.Table([]string{"File", "Status", "Size", "Time", "Output"}, rows)
}

// Summary prints the aggregate numbers of a batch report and the
// suggestions of every failed item.
func (u *UI) Summary(report domain.BatchReport) {
	u.Section("Summary")
	u.KeyValue("Run", report.ID)
	u.KeyValue("Processed", fmt.Sprintf("%d file(s)", report.Total))
	u.KeyValue("Succeeded", report.Succeeded)
	u.KeyValue("Failed", report.Failed)
	u.KeyValue("Success rate", fmt.Sprintf("%.1f%%", report.SuccessRate()))
	u.KeyValue("Total time", FormatDuration(report.Elapsed))
	u.KeyValue("Average per file", FormatDuration(report.AverageTime()))

	if report.Interrupted {
		u.Newline()
		u.Warning("Interrupted after %d item(s); the remaining files were not processed", report.Total)
	}

	failures := report.Failures()
	if len(failures) == 0 {
		return
	}
	u.Newline()
	for _, it := range failures {
		fmt.Fprintf(u.Err, "%s\n", u.paint([]color.Attribute{color.FgRed}, "✗ %s", it.Item.Name()))
		fmt.Fprintf(u.Err, "  %s\n", it.Result.Err.Message)
		for _, s := range it.Result.Err.Suggestions {
			fmt.Fprintf(u.Err, "  • %s\n", s)
		}
	}
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// FormatBytes formats bytes in a human-readable way.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// displayWidth counts runes, ignoring ANSI colour sequences.
func displayWidth(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			n++
		}
	}
	return n
}

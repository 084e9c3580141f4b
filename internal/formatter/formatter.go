// Package formatter renders CLI output: column tables styled with lipgloss and YAML
// with multi-line strings kept readable.
package formatter

import (
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	defaultTerminalWidth = 120
	minColumnWidth       = 5
	columnSeparator      = "  "
	ellipsis             = "..."
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Background(lipgloss.Color("236"))
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	cellStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TerminalWidth returns the width of the terminal behind f, or a default when f
// is not a terminal.
func TerminalWidth(f *os.File) int {
	if f == nil {
		return defaultTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Preview flattens s to a single display line: CRLF and CR become LF, and newlines
// and tabs are shown as \n and \t escapes.
func Preview(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", `\n`)
	return strings.ReplaceAll(s, "\t", `\t`)
}

// truncate shortens s to width display cells, ending in "..." when there is room.
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width < len(ellipsis) {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// padRight pads s with spaces to width display cells, truncating when it is wider.
func padRight(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// ColumnWidths returns the natural width of each column: the widest of the header
// and every cell, in display cells.
func ColumnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// fitWidths shrinks the widest column one cell at a time until the table fits
// maxWidth or every column is at the minimum width.
func fitWidths(widths []int, maxWidth int) []int {
	if maxWidth <= 0 || len(widths) == 0 {
		return widths
	}
	sepTotal := len(columnSeparator) * (len(widths) - 1)
	total := func() int {
		sum := sepTotal
		for _, w := range widths {
			sum += w
		}
		return sum
	}
	for total() > maxWidth {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

// RenderTable renders rows under headers, sized to fit the content. maxWidth limits
// the table width (cells are truncated with "..."); 0 disables the limit. The first
// column is styled as the key column. Missing cells render empty.
func RenderTable(headers []string, rows [][]string, noColor bool, maxWidth int) string {
	if len(headers) == 0 {
		return ""
	}
	widths := fitWidths(ColumnWidths(headers, rows), maxWidth)

	var b strings.Builder
	tableWidth := len(columnSeparator) * (len(widths) - 1)
	for _, w := range widths {
		tableWidth += w
	}

	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = padRight(h, widths[i])
		if !noColor {
			cells[i] = headerStyle.Render(cells[i])
		}
	}
	b.WriteString(strings.TrimRight(strings.Join(cells, columnSeparator), " ") + "\n")

	separator := strings.Repeat("─", tableWidth)
	if !noColor {
		separator = separatorStyle.Render(separator)
	}
	b.WriteString(separator + "\n")

	for _, row := range rows {
		for i := range headers {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			cells[i] = padRight(val, widths[i])
			if noColor {
				continue
			}
			if i == 0 {
				cells[i] = keyStyle.Render(cells[i])
			} else {
				cells[i] = cellStyle.Render(cells[i])
			}
		}
		line := strings.Join(cells, columnSeparator)
		if noColor {
			line = strings.TrimRight(line, " ")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// RenderKeyValue renders a KEY/VALUE table of rows.
func RenderKeyValue(rows [][]string, noColor bool, maxWidth int) string {
	return RenderTable([]string{"KEY", "VALUE"}, rows, noColor, maxWidth)
}

package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const columnGap = 2

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table renders column-aligned output. Rows are buffered until Flush so
// column widths can be capped to the terminal and long cells wrapped.
// Empty tables produce no output.
type Table struct {
	out     io.Writer
	headers []string
	prefix  string
	width   int
	rows    [][]string
}

// NewTable creates a table on stdout, capped to the terminal width when
// stdout is a terminal.
func NewTable(headers ...string) *Table {
	t := NewTableTo(os.Stdout, headers...)
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil {
			t.width = w
		}
	}
	return t
}

// NewTableTo creates an uncapped table writing to w.
func NewTableTo(w io.Writer, headers ...string) *Table {
	return &Table{out: w, headers: headers}
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
// Useful for indenting sub-tables within larger output.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// WithWidth caps the rendered width; zero disables capping.
func (t *Table) WithWidth(width int) *Table {
	t.width = width
	return t
}

// Row buffers one row. Missing cells render empty.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Len returns the number of buffered rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Flush writes headers, divider and rows. If no rows were added, nothing
// is printed.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLen(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], visualLen(row[i]))
		}
	}
	if t.width > 0 {
		widths = capWidths(widths, t.headers, t.width, visualLen(t.prefix))
	}

	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", visualLen(h))
	}
	t.line(widths, t.headers)
	t.line(widths, dividers)
	for _, row := range t.rows {
		cells := make([][]string, len(widths))
		height := 1
		for i := range widths {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			cells[i] = wrapCell(v, widths[i])
			height = max(height, len(cells[i]))
		}
		for n := 0; n < height; n++ {
			parts := make([]string, len(widths))
			for i := range widths {
				if n < len(cells[i]) {
					parts[i] = cells[i][n]
				}
			}
			t.line(widths, parts)
		}
	}
	t.rows = nil
}

func (t *Table) line(widths []int, cells []string) {
	var b strings.Builder
	b.WriteString(t.prefix)
	last := len(cells) - 1
	for i, c := range cells {
		b.WriteString(c)
		if i < last {
			b.WriteString(strings.Repeat(" ", widths[i]-visualLen(c)+columnGap))
		}
	}
	fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
}

// visualLen is the printed width of s, ignoring ANSI color sequences.
func visualLen(s string) int {
	return utf8.RuneCountInString(ansiEscape.ReplaceAllString(s, ""))
}

// capWidths narrows the widest columns until the table fits termWidth.
// No column goes below its header width, so the result may still exceed
// termWidth when the headers alone do not fit.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	out := append([]int(nil), widths...)
	total := prefix + columnGap*(len(out)-1)
	for _, w := range out {
		total += w
	}
	for total > termWidth {
		widest := -1
		for i, w := range out {
			if w > visualLen(headers[i]) && (widest < 0 || w > out[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		out[widest]--
		total--
	}
	return out
}

// wrapCell splits s into lines no wider than width, breaking at spaces
// and hard-breaking words that are longer than width. Colored text that
// needs wrapping loses its color.
func wrapCell(s string, width int) []string {
	if width <= 0 || visualLen(s) <= width {
		return []string{s}
	}
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(ansiEscape.ReplaceAllString(s, "")) {
		w := []rune(word)
		if len(cur) > 0 && len(cur)+1+len(w) <= width {
			cur = append(append(cur, ' '), w...)
			continue
		}
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = nil
		}
		for len(w) > width {
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		cur = w
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

const maxCellWidth = 48

// table prints aligned columns. Widths are measured in terminal cells so
// wide and combining characters in display names line up.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.headers))
	all := append([][]string{t.headers}, t.rows...)
	for _, row := range all {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			widths[i] = max(widths[i], runewidth.StringWidth(truncate(cell)))
		}
	}

	for _, row := range all {
		var b strings.Builder
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = truncate(row[i])
			}
			if i == len(widths)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRightFunc(b.String(), unicode.IsSpace))
	}
}

func truncate(s string) string {
	return runewidth.Truncate(s, maxCellWidth, "…")
}

// Package render pretty-prints host entry lists. When the terminal is wide
// enough the entries are shown as a bordered table; otherwise each entry
// degrades to a stacked key/value block.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lsi-dev/lsi/hosts"
)

// Columns resolves the column set to display: only (if given), otherwise
// the defaults plus any additional columns, duplicates removed.
func Columns(additional, only []string) []string {
	if len(only) > 0 {
		return uniquify(only)
	}
	return uniquify(append(append([]string{}, hosts.DefaultColumns...), additional...))
}

func uniquify(cols []string) []string {
	seen := make(map[string]bool, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Entries renders the entries with the given columns. numbered adds a row
// index column for interactive selection. width is the available terminal
// width; the bordered table is used only when it fits.
func Entries(entries []hosts.Entry, columns []string, numbered bool, width int) (string, error) {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = hosts.PrettyName(c)
	}
	rows := make([][]string, len(entries))
	for i := range entries {
		row := make([]string, len(columns))
		for j, c := range columns {
			v, err := entries[i].DisplayAttribute(c)
			if err != nil {
				return "", err
			}
			row[j] = v
		}
		rows[i] = row
	}
	if width >= tableWidth(headers, rows, numbered) {
		return renderTable(headers, columns, rows, numbered), nil
	}
	return renderStacked(columns, rows, numbered), nil
}

// tableWidth computes the width the bordered table would occupy: each
// column costs its widest cell plus padding and a separator, plus the
// final border.
func tableWidth(headers []string, rows [][]string, numbered bool) int {
	total := 1
	if numbered {
		w := len(strconv.Itoa(len(rows) - 1))
		total += w + 3
	}
	for j, h := range headers {
		w := len(h)
		for _, row := range rows {
			if len(row[j]) > w {
				w = len(row[j])
			}
		}
		total += w + 3
	}
	return total
}

func renderTable(headers, columns []string, rows [][]string, numbered bool) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)

	header := table.Row{}
	offset := 0
	if numbered {
		header = append(header, "")
		offset = 1
	}
	for _, h := range headers {
		header = append(header, h)
	}
	t.AppendHeader(header)

	for i, row := range rows {
		r := table.Row{}
		if numbered {
			r = append(r, i)
		}
		for _, cell := range row {
			r = append(r, cell)
		}
		t.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(columns)+offset)
	if numbered {
		configs = append(configs, table.ColumnConfig{
			Number: 1,
			Colors: text.Colors{text.FgGreen},
		})
	}
	for j, c := range columns {
		configs = append(configs, table.ColumnConfig{
			Number: j + offset + 1,
			Colors: ColorFor(c),
		})
	}
	t.SetColumnConfigs(configs)

	return t.Render()
}

func renderStacked(columns []string, rows [][]string, numbered bool) string {
	blocks := make([]string, 0, len(rows))
	for i, row := range rows {
		label := "-----"
		if numbered {
			label = strconv.Itoa(i) + ":"
		}
		lines := []string{Green(label)}
		for j, c := range columns {
			lines = append(lines, fmt.Sprintf("  %s: %s", c, ColorFor(c).Sprint(row[j])))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n")
}

// Line renders one entry as a single separator-joined line, for plain
// scriptable output.
func Line(e *hosts.Entry, columns []string, sep string) (string, error) {
	parts := make([]string, len(columns))
	for i, c := range columns {
		v, err := e.DisplayAttribute(c)
		if err != nil {
			return "", err
		}
		parts[i] = v
	}
	return strings.Join(parts, sep), nil
}

// Package format provides formatting and rendering functions for gateway data.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Column describes one table column.
type Column struct {
	Header   string
	Align    text.Align
	WidthMax int
}

// Layout turns items of type T into table rows.
type Layout[T any] struct {
	Columns []Column
	Row     func(T) []string
	Empty   string
}

// Options controls list rendering.
type Options struct {
	Format        string
	IncludeHeader bool
	Color         bool
}

// WriteList writes items to w in the requested format: table, plain, json or jsonl.
func WriteList[T any](w io.Writer, items []T, layout Layout[T], opts Options) error {
	switch strings.ToLower(opts.Format) {
	case "", "table":
		return writeTable(w, items, layout, opts.IncludeHeader)
	case "plain":
		return writePlain(w, items, layout, opts.IncludeHeader)
	case "json":
		return writeJSON(w, items)
	case "jsonl":
		return writeJSONL(w, items)
	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

func writePlain[T any](w io.Writer, items []T, layout Layout[T], includeHeader bool) error {
	if includeHeader {
		headers := make([]string, len(layout.Columns))
		for i, c := range layout.Columns {
			headers[i] = strings.ToLower(strings.ReplaceAll(c.Header, " ", "_"))
		}
		if _, err := fmt.Fprintln(w, strings.Join(headers, "\t")); err != nil {
			return err
		}
	}

	for _, item := range items {
		cells := layout.Row(item)
		for i := range cells {
			cells[i] = escapeNewlines(cells[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON[T any](w io.Writer, items []T) error {
	if items == nil {
		items = []T{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func writeJSONL[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes a single value as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func escapeNewlines(text string) string {
	return strings.ReplaceAll(text, "\n", "\\n")
}

func writeTable[T any](w io.Writer, items []T, layout Layout[T], includeHeader bool) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true

	configs := make([]table.ColumnConfig, len(layout.Columns))
	header := make(table.Row, len(layout.Columns))
	for i, c := range layout.Columns {
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       c.Align,
			AlignHeader: text.AlignCenter,
			WidthMax:    c.WidthMax,
		}
		header[i] = c.Header
	}
	tw.SetColumnConfigs(configs)

	if includeHeader {
		tw.AppendHeader(header)
	}

	for _, item := range items {
		cells := layout.Row(item)
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = escapeNewlines(cell)
		}
		tw.AppendRow(row)
	}

	if len(items) == 0 {
		row := make(table.Row, len(layout.Columns))
		for i := range row {
			row[i] = "-"
		}
		if len(row) > 1 {
			empty := layout.Empty
			if empty == "" {
				empty = "(none)"
			}
			row[1] = empty
		}
		tw.AppendRow(row)
	}

	_ = tw.Render()
	return nil
}

// WritePageFooter prints the pagination line shown under tables.
func WritePageFooter(w io.Writer, shown, total, page, pages int) {
	if page <= 0 {
		page = 1
	}
	if pages <= 0 {
		pages = 1
	}
	fmt.Fprintf(w, "showing %d of %d · page %d/%d\n", shown, total, page, pages) //nolint:errcheck
}

// FormatDuration renders seconds as HH:MM:SS.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "00:00:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Clip shortens text to maxLen runes, ending with an ellipsis.
func Clip(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen == 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}

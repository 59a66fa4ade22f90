// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"gopkg.in/yaml.v2"
)

// TableOptions control WriteTable.
type TableOptions struct {
	Format  Format
	Color   bool
	Palette Palette
	Titles  bool
	Padding int
}

// WriteTable writes rows restricted to columns, in column order. Text output
// is a borderless table; json and yaml output are lists of objects.
func WriteTable(w io.Writer, columns []string, rows []Row, opts TableOptions) error {
	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(project(columns, rows))
	case FormatYAML:
		out, err := yaml.Marshal(project(columns, rows))
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	}

	if len(rows) == 0 {
		return nil
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)
	if opts.Color {
		headerStyle = headerStyle.Foreground(opts.Palette.Header)
		oddRowStyle = oddRowStyle.Foreground(opts.Palette.Add)
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, 0, len(columns))
		for _, col := range columns {
			s := Stringify(row[col])
			if s == "" {
				s = "-"
			}
			line = append(line, s)
		}
		cells = append(cells, line)
	}

	pad := max(opts.Padding, 1)
	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}
			if col > 0 {
				style = style.PaddingLeft(pad)
			}
			return style
		}).
		Rows(cells...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(columns...).BorderHeader(false)
	}
	_, err := fmt.Fprintln(w, t)
	return err
}

// ordered is a row that keeps its column order in both JSON and YAML.
type ordered yaml.MapSlice

func (o ordered) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(item.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o ordered) MarshalYAML() (interface{}, error) {
	return yaml.MapSlice(o), nil
}

// project keeps only columns, in column order.
func project(columns []string, rows []Row) []ordered {
	out := make([]ordered, 0, len(rows))
	for _, row := range rows {
		item := make(ordered, 0, len(columns))
		for _, col := range columns {
			item = append(item, yaml.MapItem{Key: col, Value: row[col]})
		}
		out = append(out, item)
	}
	return out
}

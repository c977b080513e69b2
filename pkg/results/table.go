// Package results turns the per-frame headers of an assembled stream into a
// metadata table that can be shown in a terminal, written as CSV or stored
// in SQLite.
package results

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"octopusstream/internal/models"
)

// Fixed leading columns of every table
const (
	ColumnFrame = "Frame"
	ColumnChunk = "Chunk"
)

// Table is a dense numeric table with named columns, one row per frame
type Table struct {
	Columns []string
	Rows    [][]float64
}

// FromStream builds a table with Frame and Chunk columns followed by every
// header field, in the order of the first record's schema. Fields missing
// from a later chunk's schema are NaN. A stream without headers yields only
// the Frame and Chunk columns.
func FromStream(stream *models.AssembledStream) *Table {
	columns := []string{ColumnFrame, ColumnChunk}
	var fields []string
	if len(stream.Headers) > 0 && stream.Headers[0].Schema != nil {
		fields = stream.Headers[0].Schema.Names
		columns = append(columns, fields...)
	}

	t := &Table{Columns: columns, Rows: make([][]float64, len(stream.Frames))}
	for i, frame := range stream.Frames {
		row := make([]float64, len(columns))
		row[0] = float64(i + 1)
		row[1] = float64(frame.Chunk)
		if i < len(stream.Headers) {
			rec := stream.Headers[i]
			for j, name := range fields {
				v, ok := rec.Get(name)
				if !ok {
					v = math.NaN()
				}
				row[2+j] = v
			}
		}
		t.Rows[i] = row
	}
	return t
}

// AddColumn appends a column. values must have one entry per row.
func (t *Table) AddColumn(name string, values []float64) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), len(t.Rows))
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// Column returns the values of a named column
func (t *Table) Column(name string) ([]float64, bool) {
	for j, c := range t.Columns {
		if c == name {
			out := make([]float64, len(t.Rows))
			for i, row := range t.Rows {
				out[i] = row[j]
			}
			return out, true
		}
	}
	return nil, false
}

// Render draws the table for a terminal
func (t *Table) Render(title string) string {
	tw := t.writer()
	if title != "" {
		tw.SetTitle(title)
	}

	configs := make([]table.ColumnConfig, len(t.Columns))
	for i := range t.Columns {
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// WriteCSV writes the table as CSV with a header line
func (t *Table) WriteCSV(w io.Writer) error {
	_, err := io.WriteString(w, t.writer().RenderCSV()+"\n")
	return err
}

func (t *Table) writer() table.Writer {
	tw := table.NewWriter()

	// header field names are case sensitive, keep them as written
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)

	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for _, row := range t.Rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = FormatValue(v)
		}
		tw.AppendRow(r)
	}
	return tw
}

// FormatValue prints a value with the fewest digits that round-trip
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

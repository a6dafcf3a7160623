// Copyright 2024 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package table renders tabular data, such as census API responses, as
// formatted text or CSV.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/stockparfait/errors"
)

// Row interface that a table row representation must implement.
type Row interface {
	CSV() []string // an encoding/csv compatible row representation
}

// RawRow is a row of raw string cells, as returned by the census data API.
type RawRow []string

// CSV implements Row.
func (r RawRow) CSV() []string { return []string(r) }

// Table container.
type Table struct {
	Header []string // optional, may be nil
	Rows   []Row
}

// New creates a new Table instance with optional column headers. When
// present, the number of column headers is expected to match the number of
// elements in each Row.
func New(header ...string) *Table {
	return &Table{Header: header}
}

// FromRows builds a Table from a raw data table whose first row is the
// header, which is how the census data API shapes its responses.
func FromRows(rows [][]string) *Table {
	if len(rows) == 0 {
		return New()
	}
	t := New(rows[0]...)
	for _, r := range rows[1:] {
		t.AddRow(RawRow(r))
	}
	return t
}

// AddRow adds one or more rows to the table.
func (t *Table) AddRow(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Params are parameters for pretty-printing or CSV export of Table data.
type Params struct {
	Rows        int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader    bool // whether to print the header, default - yes
	MaxColWidth int  // for WriteText only; 0 = unlimited, otherwise must be >= 4
}

// printed lists the rows to be written according to p, header first.
func (t *Table) printed(p Params) [][]string {
	var rows [][]string
	if !p.NoHeader && len(t.Header) > 0 {
		rows = append(rows, t.Header)
	}
	for i, r := range t.Rows {
		if p.Rows > 0 && i >= p.Rows {
			break
		}
		rows = append(rows, r.CSV())
	}
	return rows
}

// WriteCSV writes the entire table to w in CSV format.
func (t *Table) WriteCSV(w io.Writer, p Params) error {
	cw := csv.NewWriter(w)
	for _, row := range t.printed(p) {
		if err := cw.Write(row); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// WriteText writes the table as a text formatted for ease of reading.
func (t *Table) WriteText(w io.Writer, p Params) error {
	if p.MaxColWidth != 0 && p.MaxColWidth < 4 {
		return errors.Reason("MaxColWidth [%d] must be 0 or >= 4", p.MaxColWidth)
	}
	rows := t.printed(p)
	var widths []int
	for _, row := range rows {
		if len(row) == 0 {
			return errors.Reason("row size = 0")
		}
		if widths == nil {
			widths = make([]int, len(row))
		}
		if len(row) != len(widths) {
			return errors.Reason("row size [%d] != expected size [%d]",
				len(row), len(widths))
		}
		for i, s := range row {
			if widths[i] < len(s) {
				widths[i] = len(s)
				if p.MaxColWidth > 0 && widths[i] > p.MaxColWidth {
					widths[i] = p.MaxColWidth
				}
			}
		}
	}

	write := func(row []string) error {
		cells := make([]string, len(row))
		for i, s := range row {
			if len([]rune(s)) > widths[i] {
				s = string([]rune(s)[:widths[i]-2]) + ".."
			}
			cells[i] = fmt.Sprintf("%[2]*[1]s", s, widths[i])
		}
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(cells, " | "))
		return err
	}

	for i, row := range rows {
		if err := write(row); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
		if i == 0 && !p.NoHeader && len(t.Header) > 0 {
			dashes := make([]string, len(widths))
			for j, width := range widths {
				dashes[j] = strings.Repeat("-", width)
			}
			if err := write(dashes); err != nil {
				return errors.Annotate(err, "failed to write header separator")
			}
		}
	}
	return nil
}

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

// Package stats computes basic summary statistics over numeric columns of
// downloaded census tables.
package stats

import (
	"strconv"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds basic sample statistics of a numeric table column.
type Summary struct {
	N     int
	Mean  float64
	Sigma float64 // sample standard deviation; 0 for less than 2 samples
	Min   float64
	Max   float64
}

// Column extracts the named column from a data table as a float sample. The
// first row must be the header. Empty cells (nulls in the API response) are
// skipped; any other non-numeric cell is an error.
func Column(rows [][]string, name string) ([]float64, error) {
	if len(rows) == 0 {
		return nil, errors.Reason("table is empty")
	}
	col := -1
	for i, h := range rows[0] {
		if h == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, errors.Reason("no column %q in the table header", name)
	}

	var rowErr error
	it := iterator.FromSlice(rows[1:])
	xs := iterator.Reduce[[]string, []float64](it, []float64{},
		func(row []string, xs []float64) []float64 {
			if rowErr != nil {
				return xs
			}
			if col >= len(row) {
				rowErr = errors.Reason("row has %d columns, column %q is #%d",
					len(row), name, col+1)
				return xs
			}
			cell := row[col]
			if cell == "" {
				return xs
			}
			x, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				rowErr = errors.Annotate(err,
					"column %q has a non-numeric cell %q", name, cell)
				return xs
			}
			return append(xs, x)
		})
	if rowErr != nil {
		return nil, rowErr
	}
	return xs, nil
}

// Summarize computes the summary statistics of the sample. An empty sample
// yields the zero Summary.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	s := Summary{
		N:    len(xs),
		Mean: stat.Mean(xs, nil),
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
	}
	if len(xs) > 1 {
		s.Sigma = stat.StdDev(xs, nil)
	}
	return s
}

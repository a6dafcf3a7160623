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

package census

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
)

// DefaultBatchSize is the data API limit on variables per call.
const DefaultBatchSize = 50

// DownloadRequest specifies what Dataset.Download retrieves. Exactly one of
// GeoLevel or Geography is required, and at least one of VariableNames or
// Variables; in both pairs the former takes precedence.
type DownloadRequest struct {
	GeoLevel      string      // geography level code to look up, e.g. "050"
	Geography     *Geography  // an already resolved geography
	GeoFilters    []GeoFilter // optional; default: all units of the geography
	VariableNames []string
	Variables     []Variable
	BatchSize     int // variables per API call; default DefaultBatchSize
}

// Download retrieves data rows for the requested geography and variables.
// The first returned row is the header. Requests exceeding the per-call
// variable limit are transparently split into batches and stitched back
// into a single table; a failure of any batch fails the whole download.
func (d *Dataset) Download(ctx context.Context, req DownloadRequest) ([][]string, error) {
	if d.AccessURL == "" {
		return nil, errors.Reason("dataset %q has no API access URL", d.Path)
	}
	var geo Geography
	switch {
	case req.GeoLevel != "":
		gs, err := d.SearchGeography(ctx, Match("geo_level", req.GeoLevel))
		if err != nil {
			return nil, errors.Annotate(err, "failed to search geography level %q", req.GeoLevel)
		}
		if len(gs) == 0 {
			return nil, errors.Annotate(ErrNotFound, "no geography with level %q", req.GeoLevel)
		}
		geo = gs[0]
	case req.Geography != nil:
		geo = *req.Geography
	default:
		return nil, errors.Annotate(ErrMissingArgument,
			"either GeoLevel or Geography must be set")
	}
	geoParams, err := geo.FilterToParams(req.GeoFilters)
	if err != nil {
		return nil, errors.Annotate(err, "failed to build geography query for %q", geo.Name)
	}

	var varNames []string
	switch {
	case len(req.VariableNames) > 0:
		varNames = req.VariableNames
	case len(req.Variables) > 0:
		varNames = make([]string, len(req.Variables))
		for i, v := range req.Variables {
			varNames[i] = v.Name
		}
	default:
		return nil, errors.Annotate(ErrMissingArgument,
			"either VariableNames or Variables must be set")
	}

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return download(ctx, d.AccessURL, geo.Complexity(), geoParams, varNames, batchSize)
}

// batchNames splits names into consecutive chunks of at most size elements,
// preserving order. The last chunk may be shorter.
func batchNames(names []string, size int) [][]string {
	var batches [][]string
	for len(names) > size {
		batches = append(batches, names[:size])
		names = names[size:]
	}
	if len(names) > 0 {
		batches = append(batches, names)
	}
	return batches
}

// download fetches one table per variable batch and stitches the batches
// horizontally. The API appends geoComplexity geography identifier columns
// to every response; they are stripped from every batch but the last, which
// keeps the single copy present in the final table.
func download(ctx context.Context, uri string, geoComplexity int, geoParams url.Values, varNames []string, batchSize int) ([][]string, error) {
	batches := batchNames(varNames, batchSize)
	chunks := make([][][]string, 0, len(batches))
	for i, batch := range batches {
		query := make(url.Values, len(geoParams)+1)
		for k, vs := range geoParams {
			query[k] = vs
		}
		query.Set("get", strings.Join(batch, ","))

		var raw [][]any
		if err := fetch.FetchJSON(ctx, uri, &raw, query, nil); err != nil {
			return nil, errors.Annotate(err, "failed to fetch batch %d of %d", i+1, len(batches))
		}
		rows := make([][]string, len(raw))
		for r, rawRow := range raw {
			row := make([]string, len(rawRow))
			for c, cell := range rawRow {
				row[c] = cellString(cell)
			}
			rows[r] = row
		}
		if i < len(batches)-1 {
			for r, row := range rows {
				if len(row) < geoComplexity {
					return nil, errors.Reason(
						"batch %d row %d has %d columns, expected at least %d geography columns",
						i+1, r, len(row), geoComplexity)
				}
				rows[r] = row[:len(row)-geoComplexity]
			}
		}
		logging.Infof(ctx, "census: fetched batch %d of %d with %d rows",
			i+1, len(batches), len(rows))
		chunks = append(chunks, rows)
	}
	return stitch(chunks)
}

// stitch concatenates the batch tables horizontally, row by row. All batches
// must agree on the number of rows.
func stitch(chunks [][][]string) ([][]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	n := len(chunks[0])
	out := make([][]string, n)
	for ci, chunk := range chunks {
		if len(chunk) != n {
			return nil, errors.Reason("batch %d has %d rows, expected %d",
				ci+1, len(chunk), n)
		}
		for r, row := range chunk {
			out[r] = append(out[r], row...)
		}
	}
	return out, nil
}

// cellString normalizes a JSON cell to its string form. The data API returns
// most cells as strings, but numeric and null cells do occur.
func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprintf("%v", c)
	}
}

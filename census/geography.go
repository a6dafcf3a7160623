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
	"net/url"
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"golang.org/x/exp/slices"
)

// Wildcard is the value requesting all units of a geography field.
const Wildcard = "*"

// Geography describes a single geographic level of a dataset, e.g. county.
type Geography struct {
	Name          string // field name in data queries, e.g. "county"
	Level         string // hierarchical level code, e.g. "050"
	ReferenceDate Date
	Requires      []string // companion fields that must accompany Name
	Wildcard      []string // fields that may use the wildcard value
	// OptionalWildcard is the single field exempt from the required-field
	// check; the upstream metadata declares it wildcardable.
	OptionalWildcard string
}

// Complexity is the number of trailing geography identifier columns the data
// API reserves in each response for this geography.
func (g Geography) Complexity() int {
	return len(g.Requires) + 1
}

// FilterValue implements the filterable field set of Geography.
func (g Geography) FilterValue(field string) (string, bool) {
	switch field {
	case "name":
		return g.Name, true
	case "geo_level":
		return g.Level, true
	}
	return "", false
}

// levelNum is the numeric sort key of the level code. Non-numeric codes sort
// before all numeric ones.
func (g Geography) levelNum() int {
	n, err := strconv.Atoi(g.Level)
	if err != nil {
		return -1
	}
	return n
}

// LevelLess orders geographies by their numeric level code.
func LevelLess(a, b Geography) bool {
	return a.levelNum() < b.levelNum()
}

// SortByLevel sorts geographies by numeric level, stable within a level.
func SortByLevel(gs []Geography) {
	slices.SortStableFunc(gs, LevelLess)
}

// GeoFilter restricts a data download to specific units of a geography
// field. Several filters for the same field are comma-joined into one query
// value.
type GeoFilter struct {
	Field string
	Value string
}

func (g Geography) allowsWildcard(field string) bool {
	if field == g.OptionalWildcard {
		return true
	}
	for _, w := range g.Wildcard {
		if w == field {
			return true
		}
	}
	return false
}

// FilterToParams converts geography filters into the data API query
// parameters. With no filters it requests all units of the geography
// ("for=<name>:*"). Otherwise, every field in {Name} + Requires must be
// supplied unless it is the OptionalWildcard field; the Name value becomes
// the "for" parameter and every other supplied field an "in" parameter. A
// wildcard value is only accepted for fields in the Wildcard list.
func (g Geography) FilterToParams(geoFilters []GeoFilter) (url.Values, error) {
	v := make(url.Values)
	if len(geoFilters) == 0 {
		v.Set("for", g.Name+":"+Wildcard)
		return v, nil
	}
	var fields []string // preserve the caller's field order for "in" params
	values := make(map[string][]string)
	for _, f := range geoFilters {
		if _, ok := values[f.Field]; !ok {
			fields = append(fields, f.Field)
		}
		values[f.Field] = append(values[f.Field], f.Value)
	}
	merged := make(map[string]string, len(values))
	for f, vs := range values {
		merged[f] = strings.Join(vs, ",")
	}

	for _, f := range append([]string{g.Name}, g.Requires...) {
		if _, ok := merged[f]; !ok && f != g.OptionalWildcard {
			return nil, errors.Annotate(ErrMissingGeoField,
				"geography %q requires field %q", g.Name, f)
		}
	}

	forValue, ok := merged[g.Name]
	if !ok { // Name itself is the optional wildcard field
		forValue = Wildcard
	}
	v.Set("for", g.Name+":"+forValue)
	delete(merged, g.Name)
	for _, f := range fields {
		value, ok := merged[f]
		if !ok {
			continue // the "for" field
		}
		if value == Wildcard && !g.allowsWildcard(f) {
			return nil, errors.Annotate(ErrUnsupportedWildcard, "field %q", f)
		}
		v.Add("in", f+":"+value)
	}
	return v, nil
}

// geoInfo is the JSON schema of a single "fips" entry of the geography
// metadata document.
type geoInfo struct {
	Name             string   `json:"name"`
	Level            string   `json:"geoLevelDisplay"`
	ReferenceDate    Date     `json:"referenceDate"`
	Requires         []string `json:"requires"`
	Wildcard         []string `json:"wildcard"`
	OptionalWildcard string   `json:"optionalWithWCFor"`
}

type geoDoc struct {
	Fips []geoInfo `json:"fips"`
}

// SearchGeography fetches the dataset's geography metadata and returns the
// geographies passing the filters. Filterable fields: "name", "geo_level".
func (d *Dataset) SearchGeography(ctx context.Context, filters ...Filter) ([]Geography, error) {
	return searchGeography(ctx, d.GeoURL, filters)
}

func searchGeography(ctx context.Context, uri string, filters []Filter) ([]Geography, error) {
	fs, err := normalize(filters)
	if err != nil {
		return nil, err
	}
	var doc geoDoc
	if err := fetch.FetchJSON(ctx, uri, &doc, nil, nil); err != nil {
		return nil, errors.Annotate(err, "failed to fetch geography metadata")
	}
	var hits []Geography
	for _, info := range doc.Fips {
		g := Geography{
			Name:             info.Name,
			Level:            info.Level,
			ReferenceDate:    info.ReferenceDate,
			Requires:         info.Requires,
			Wildcard:         info.Wildcard,
			OptionalWildcard: info.OptionalWildcard,
		}
		ok, err := checkFilters(g, fs, ModeAnd)
		if err != nil {
			return nil, err
		}
		if ok {
			hits = append(hits, g)
		}
	}
	return hits, nil
}

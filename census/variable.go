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
	"sort"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
)

// Variable is a single queryable variable of a dataset.
type Variable struct {
	Name          string
	Label         string
	GroupName     string
	Limit         int
	Concept       string
	PredicateType string
	Attributes    []string // companion annotation variables, if any
}

// FilterValue implements the filterable field set of Variable.
func (v Variable) FilterValue(field string) (string, bool) {
	switch field {
	case "name":
		return v.Name, true
	case "label":
		return v.Label, true
	case "concept":
		return v.Concept, true
	case "group_name":
		return v.GroupName, true
	}
	return "", false
}

// varInfo is the JSON schema of a single entry of the variables document,
// keyed by variable name.
type varInfo struct {
	Label         string `json:"label"`
	Group         string `json:"group"`
	Limit         int    `json:"limit"`
	Concept       string `json:"concept"`
	PredicateType string `json:"predicateType"`
	Attributes    string `json:"attributes"` // comma-separated
}

type varDoc struct {
	Variables map[string]varInfo `json:"variables"`
}

// SearchVariables fetches the dataset's variables and returns the ones
// passing the filters, sorted by name. Filterable fields: "name", "label",
// "concept", "group_name".
//
// Results of pattern-only searches are memoized in a tiny recency cache, so
// that drilling into a large variables document repeatedly does not re-fetch
// it. Predicate filters bypass the cache.
func (d *Dataset) SearchVariables(ctx context.Context, mode Mode, filters ...Filter) ([]Variable, error) {
	return searchVariables(ctx, d.VarURL, mode, filters)
}

func searchVariables(ctx context.Context, uri string, mode Mode, filters []Filter) ([]Variable, error) {
	fs, err := normalize(filters)
	if err != nil {
		return nil, err
	}
	key, cacheable := cacheKey(uri, fs, mode)
	if cacheable {
		if hits, ok := varCache.get(key); ok {
			logging.Infof(ctx, "census: variable search served from cache")
			return hits, nil
		}
	}
	var doc varDoc
	if err := fetch.FetchJSON(ctx, uri, &doc, nil, nil); err != nil {
		return nil, errors.Annotate(err, "failed to fetch variable metadata")
	}
	var hits []Variable
	for name, info := range doc.Variables {
		v := Variable{
			Name:          name,
			Label:         info.Label,
			GroupName:     info.Group,
			Limit:         info.Limit,
			Concept:       info.Concept,
			PredicateType: info.PredicateType,
		}
		if info.Attributes != "" {
			v.Attributes = strings.Split(info.Attributes, ",")
		}
		ok, err := checkFilters(v, fs, mode)
		if err != nil {
			return nil, err
		}
		if ok {
			hits = append(hits, v)
		}
	}
	// The document is a JSON object; impose a stable order.
	sort.Slice(hits, func(i, j int) bool { return hits[i].Name < hits[j].Name })
	if cacheable {
		varCache.put(key, hits)
	}
	return hits, nil
}

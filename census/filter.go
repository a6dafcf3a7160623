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
	"regexp"

	"github.com/stockparfait/errors"
)

// Criterion matches the string value of a single metadata field. It is
// either a regex pattern, created by Pattern, or an arbitrary predicate,
// created by Predicate. A pattern matches case-insensitively anywhere in the
// value.
type Criterion struct {
	pattern   string
	isPattern bool
	match     func(string) bool
}

// Pattern creates a regex criterion. The pattern is not validated here; an
// invalid regex surfaces as ErrInvalidCriterion from the search call.
func Pattern(re string) Criterion {
	return Criterion{pattern: re, isPattern: true}
}

// Predicate creates a criterion from an arbitrary match function.
func Predicate(match func(string) bool) Criterion {
	return Criterion{match: match}
}

// Filter restricts a metadata search by a single field.
type Filter struct {
	Field string
	Crit  Criterion
}

// Match creates a regex filter for a field.
func Match(field, pattern string) Filter {
	return Filter{Field: field, Crit: Pattern(pattern)}
}

// MatchFunc creates a predicate filter for a field.
func MatchFunc(field string, match func(string) bool) Filter {
	return Filter{Field: field, Crit: Predicate(match)}
}

// Mode selects how the per-field filter results are combined.
type Mode int

// Values of Mode.
const (
	ModeAnd Mode = iota // all filters must match (default)
	ModeOr              // at least one filter must match
)

// String prints the mode the way the API users talk about it.
func (m Mode) String() string {
	if m == ModeOr {
		return "or"
	}
	return "and"
}

// filterable is implemented by every metadata record type. FilterValue
// returns the value of a field, or ok=false when the field is not in the
// type's filterable set.
type filterable interface {
	FilterValue(field string) (value string, ok bool)
}

// normalize coerces every pattern criterion into a predicate, so that
// evaluation deals with predicates only. Predicate criteria pass through
// unchanged. It runs at the start of each search operation.
func normalize(filters []Filter) ([]Filter, error) {
	res := make([]Filter, len(filters))
	for i, f := range filters {
		switch {
		case f.Crit.match != nil:
			res[i] = f
		case f.Crit.isPattern:
			re, err := regexp.Compile("(?i)" + f.Crit.pattern)
			if err != nil {
				return nil, errors.Annotate(ErrInvalidCriterion,
					"field %q: cannot compile pattern %q: %s",
					f.Field, f.Crit.pattern, err.Error())
			}
			res[i] = Filter{Field: f.Field, Crit: Criterion{
				pattern:   f.Crit.pattern,
				isPattern: true,
				match:     re.MatchString,
			}}
		default:
			return nil, errors.Annotate(ErrInvalidCriterion,
				"field %q: criterion must be a pattern or a predicate", f.Field)
		}
	}
	return res, nil
}

// checkFilters evaluates normalized filters against a record. An empty
// filter list always passes. An unknown field fails the whole call, not just
// the record.
func checkFilters(r filterable, filters []Filter, mode Mode) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}
	matched := 0
	for _, f := range filters {
		v, ok := r.FilterValue(f.Field)
		if !ok {
			return false, errors.Annotate(ErrInvalidFilterField,
				"field %q cannot be used as a filter on %T", f.Field, r)
		}
		if f.Crit.match(v) {
			matched++
		}
	}
	if mode == ModeOr {
		return matched > 0, nil
	}
	return matched == len(filters), nil
}

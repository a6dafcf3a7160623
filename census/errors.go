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

import "github.com/stockparfait/errors"

// Sentinel errors returned by the metadata and download APIs. They are
// usually wrapped with additional context by errors.Annotate; use errors.Is
// to test for them.
var (
	// ErrInvalidFilterField: a filter names a field the record type does not
	// allow filtering on.
	ErrInvalidFilterField = errors.Reason("field is not filterable")
	// ErrInvalidCriterion: a filter criterion is neither a valid regex pattern
	// nor a predicate.
	ErrInvalidCriterion = errors.Reason("invalid filter criterion")
	// ErrMissingGeoField: a geography filter omits a required companion field.
	ErrMissingGeoField = errors.Reason("required geography field is missing")
	// ErrUnsupportedWildcard: a geography field was given the wildcard value
	// but is not in the geography's wildcard list.
	ErrUnsupportedWildcard = errors.Reason("geography field does not accept wildcards")
	// ErrMissingArgument: the caller omitted all options of a required
	// mutually-exclusive pair.
	ErrMissingArgument = errors.Reason("missing required argument")
	// ErrNotFound: no dataset or geography matched the query.
	ErrNotFound = errors.Reason("not found")
)

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

// Package census implements a client for the US Census data API.
//
// Official documentation is at https://www.census.gov/data/developers.html .
//
// The API is navigated top-down: a yearly catalog lists the available
// datasets, and each dataset links to metadata documents describing its
// geographies, variable groups and variables. SearchDatasets and
// LookupDataset fetch the catalog; the Dataset methods fetch and filter the
// per-dataset metadata. Metadata searches accept regex or predicate filters
// over a fixed set of fields per record type.
//
// Actual data is retrieved with Dataset.Download. The data API accepts at
// most 50 variables per call, so larger requests are split into batches and
// the per-batch tables are stitched back into a single table. Each batched
// response carries trailing geography identifier columns; these are kept
// only once, from the last batch.
//
// The HTTP client is injected through the context using the
// stockparfait/fetch package, and the base catalog URL can be overwritten in
// tests via the URL variable.
package census

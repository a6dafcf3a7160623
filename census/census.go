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
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
)

// URL is the default base URL of the census data API. It may be overwritten
// in tests before making any calls.
var URL = "https://api.census.gov/data"

// distribution is a single entry of a catalog dataset's distribution list.
type distribution struct {
	Format    string `json:"format"`
	AccessURL string `json:"accessURL"`
}

// datasetInfo is the JSON schema of a single catalog entry.
type datasetInfo struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	PathSegments  []string       `json:"c_dataset"`
	GeographyLink string         `json:"c_geographyLink"`
	VariablesLink string         `json:"c_variablesLink"`
	GroupsLink    string         `json:"c_groupsLink"`
	Distribution  []distribution `json:"distribution"`
}

// catalog is the JSON schema of the yearly dataset catalog.
type catalog struct {
	Datasets []datasetInfo `json:"dataset"`
}

// Dataset describes a single census dataset for a given year, e.g. the
// 5-year American Community Survey. It is immutable after construction.
type Dataset struct {
	Title       string
	Description string
	Year        int
	Path        string // slash-joined dataset path, e.g. "acs/acs5"
	GeoURL      string // geography metadata document
	VarURL      string // variables metadata document
	GroupURL    string // variable groups metadata document
	AccessURL   string // data API endpoint; empty without an API distribution
}

// FilterValue implements the filterable field set of Dataset.
func (d Dataset) FilterValue(field string) (string, bool) {
	switch field {
	case "title":
		return d.Title, true
	case "description":
		return d.Description, true
	case "path":
		return d.Path, true
	}
	return "", false
}

func newDataset(year int, info datasetInfo) Dataset {
	d := Dataset{
		Title:       info.Title,
		Description: info.Description,
		Year:        year,
		Path:        strings.Join(info.PathSegments, "/"),
		GeoURL:      info.GeographyLink,
		VarURL:      info.VariablesLink,
		GroupURL:    info.GroupsLink,
	}
	for _, dist := range info.Distribution {
		if dist.Format == "API" {
			d.AccessURL = dist.AccessURL
			break
		}
	}
	return d
}

// matchPath applies the directory matching rule: substring match when sub
// datasets are included, ends-with match otherwise. An empty path matches
// every dataset under the substring rule.
func matchPath(datasetPath, path string, includeSubDatasets bool) bool {
	if includeSubDatasets {
		return strings.Contains(datasetPath, path)
	}
	return strings.HasSuffix(datasetPath, path)
}

// SearchDatasets fetches the dataset catalog for the year and returns the
// datasets matching the path. With includeSubDatasets, a dataset matches
// when its path contains the given path anywhere; otherwise its path must
// end with it. An empty path with includeSubDatasets lists the whole year.
func SearchDatasets(ctx context.Context, year int, path string, includeSubDatasets bool) ([]Dataset, error) {
	uri := fmt.Sprintf("%s/%d.json", URL, year)
	var c catalog
	if err := fetch.FetchJSON(ctx, uri, &c, nil, nil); err != nil {
		return nil, errors.Annotate(err, "failed to fetch the %d dataset catalog", year)
	}
	var hits []Dataset
	for _, info := range c.Datasets {
		d := newDataset(year, info)
		if matchPath(d.Path, path, includeSubDatasets) {
			hits = append(hits, d)
		}
	}
	logging.Infof(ctx, "census: %d of %d datasets matched path %q for %d",
		len(hits), len(c.Datasets), path, year)
	return hits, nil
}

// LookupDataset finds the dataset with the exact path (ends-with match, no
// sub datasets) for the year. It fails with ErrNotFound when nothing
// matches; when several match, the first one wins.
func LookupDataset(ctx context.Context, year int, path string) (*Dataset, error) {
	hits, err := SearchDatasets(ctx, year, path, false)
	if err != nil {
		return nil, errors.Annotate(err, "failed to search datasets")
	}
	if len(hits) == 0 {
		return nil, errors.Annotate(ErrNotFound,
			"no dataset for year=%d path=%q", year, path)
	}
	return &hits[0], nil
}

// FilterDatasets narrows an already fetched dataset list with metadata
// filters over the title, description and path fields.
func FilterDatasets(datasets []Dataset, mode Mode, filters ...Filter) ([]Dataset, error) {
	fs, err := normalize(filters)
	if err != nil {
		return nil, err
	}
	var hits []Dataset
	for _, d := range datasets {
		ok, err := checkFilters(d, fs, mode)
		if err != nil {
			return nil, err
		}
		if ok {
			hits = append(hits, d)
		}
	}
	return hits, nil
}

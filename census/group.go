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

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
)

// Group is a named group of related variables within a dataset.
type Group struct {
	Name        string
	Description string
	VarURL      string // variables metadata document of this group
}

// FilterValue implements the filterable field set of Group.
func (g Group) FilterValue(field string) (string, bool) {
	switch field {
	case "name":
		return g.Name, true
	case "description":
		return g.Description, true
	}
	return "", false
}

// SearchVariables fetches and filters the variables of this group.
func (g Group) SearchVariables(ctx context.Context, mode Mode, filters ...Filter) ([]Variable, error) {
	return searchVariables(ctx, g.VarURL, mode, filters)
}

// groupInfo is the JSON schema of a single entry of the groups document.
type groupInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Variables   string `json:"variables"`
}

type groupDoc struct {
	Groups []groupInfo `json:"groups"`
}

// SearchGroups fetches the dataset's variable groups and returns the groups
// passing the filters. Filterable fields: "name", "description".
func (d *Dataset) SearchGroups(ctx context.Context, mode Mode, filters ...Filter) ([]Group, error) {
	return searchGroups(ctx, d.GroupURL, mode, filters)
}

func searchGroups(ctx context.Context, uri string, mode Mode, filters []Filter) ([]Group, error) {
	fs, err := normalize(filters)
	if err != nil {
		return nil, err
	}
	var doc groupDoc
	if err := fetch.FetchJSON(ctx, uri, &doc, nil, nil); err != nil {
		return nil, errors.Annotate(err, "failed to fetch group metadata")
	}
	var hits []Group
	for _, info := range doc.Groups {
		g := Group{
			Name:        info.Name,
			Description: info.Description,
			VarURL:      info.Variables,
		}
		ok, err := checkFilters(g, fs, mode)
		if err != nil {
			return nil, err
		}
		if ok {
			hits = append(hits, g)
		}
	}
	return hits, nil
}

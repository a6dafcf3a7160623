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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/uscensus/census"
	"github.com/stockparfait/uscensus/table"
)

// filterFlags collects repeated -filter field=regex arguments.
type filterFlags []census.Filter

var _ flag.Value = &filterFlags{}

func (f *filterFlags) String() string {
	return fmt.Sprintf("%d filter(s)", len(*f))
}

func (f *filterFlags) Set(s string) error {
	field, pattern, ok := strings.Cut(s, "=")
	if !ok {
		return errors.Reason("filter must have the form field=regex: %q", s)
	}
	*f = append(*f, census.Match(field, pattern))
	return nil
}

type Flags struct {
	Year     int
	Path     string
	Sub      bool // include sub datasets in -datasets search
	LogLevel logging.Level
	// Exactly one of datasets, geos, groups or vars must be present.
	Datasets bool
	Geos     bool
	Groups   bool
	Vars     bool
	Filters  filterFlags
	Or       bool // combine filters with OR; default AND
	CSV      bool // dump CSV format; default: text
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("census-search", flag.ExitOnError)
	fs.IntVar(&flags.Year, "year", 0, "dataset vintage year (required)")
	fs.StringVar(&flags.Path, "path", "", `dataset path, e.g. "acs/acs5"`)
	fs.BoolVar(&flags.Sub, "sub", false, "include sub datasets in -datasets search")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.BoolVar(&flags.Datasets, "datasets", false, "list datasets matching -path")
	fs.BoolVar(&flags.Geos, "geos", false, "list geographies of the -path dataset")
	fs.BoolVar(&flags.Groups, "groups", false, "list variable groups of the -path dataset")
	fs.BoolVar(&flags.Vars, "vars", false, "list variables of the -path dataset")
	fs.Var(&flags.Filters, "filter", "metadata filter as field=regex; may be repeated")
	fs.BoolVar(&flags.Or, "or", false, "combine -filter values with OR; default: AND")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if flags.Year == 0 {
		return nil, errors.Reason("missing required -year argument")
	}
	kinds := 0
	for _, k := range []bool{flags.Datasets, flags.Geos, flags.Groups, flags.Vars} {
		if k {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, errors.Reason(
			"expected exactly one of -datasets, -geos, -groups or -vars")
	}
	if !flags.Datasets && flags.Path == "" {
		return nil, errors.Reason("-geos, -groups and -vars require -path")
	}
	return &flags, err
}

func (f *Flags) mode() census.Mode {
	if f.Or {
		return census.ModeOr
	}
	return census.ModeAnd
}

func datasetsTable(ctx context.Context, flags *Flags) (*table.Table, error) {
	datasets, err := census.SearchDatasets(ctx, flags.Year, flags.Path, flags.Sub)
	if err != nil {
		return nil, errors.Annotate(err, "failed to search datasets")
	}
	datasets, err = census.FilterDatasets(datasets, flags.mode(), flags.Filters...)
	if err != nil {
		return nil, errors.Annotate(err, "failed to filter datasets")
	}
	tbl := table.New("Path", "Title", "API")
	for _, d := range datasets {
		api := "yes"
		if d.AccessURL == "" {
			api = "no"
		}
		tbl.AddRow(table.RawRow{d.Path, d.Title, api})
	}
	return tbl, nil
}

func geosTable(ctx context.Context, flags *Flags) (*table.Table, error) {
	ds, err := census.LookupDataset(ctx, flags.Year, flags.Path)
	if err != nil {
		return nil, errors.Annotate(err, "failed to look up dataset")
	}
	geos, err := ds.SearchGeography(ctx, flags.Filters...)
	if err != nil {
		return nil, errors.Annotate(err, "failed to search geographies")
	}
	census.SortByLevel(geos)
	tbl := table.New("Level", "Name", "Requires", "Wildcard", "Reference Date")
	for _, g := range geos {
		tbl.AddRow(table.RawRow{
			g.Level,
			g.Name,
			strings.Join(g.Requires, ","),
			strings.Join(g.Wildcard, ","),
			g.ReferenceDate.String(),
		})
	}
	return tbl, nil
}

func groupsTable(ctx context.Context, flags *Flags) (*table.Table, error) {
	ds, err := census.LookupDataset(ctx, flags.Year, flags.Path)
	if err != nil {
		return nil, errors.Annotate(err, "failed to look up dataset")
	}
	groups, err := ds.SearchGroups(ctx, flags.mode(), flags.Filters...)
	if err != nil {
		return nil, errors.Annotate(err, "failed to search groups")
	}
	tbl := table.New("Name", "Description")
	for _, g := range groups {
		tbl.AddRow(table.RawRow{g.Name, g.Description})
	}
	return tbl, nil
}

func varsTable(ctx context.Context, flags *Flags) (*table.Table, error) {
	ds, err := census.LookupDataset(ctx, flags.Year, flags.Path)
	if err != nil {
		return nil, errors.Annotate(err, "failed to look up dataset")
	}
	vars, err := ds.SearchVariables(ctx, flags.mode(), flags.Filters...)
	if err != nil {
		return nil, errors.Annotate(err, "failed to search variables")
	}
	tbl := table.New("Name", "Group", "Label", "Concept")
	for _, v := range vars {
		tbl.AddRow(table.RawRow{v.Name, v.GroupName, v.Label, v.Concept})
	}
	return tbl, nil
}

func printSearch(ctx context.Context, flags *Flags, w io.Writer) error {
	var tbl *table.Table
	var err error
	switch {
	case flags.Datasets:
		tbl, err = datasetsTable(ctx, flags)
	case flags.Geos:
		tbl, err = geosTable(ctx, flags)
	case flags.Groups:
		tbl, err = groupsTable(ctx, flags)
	case flags.Vars:
		tbl, err = varsTable(ctx, flags)
	}
	if err != nil {
		return err
	}
	if flags.CSV {
		if err := tbl.WriteCSV(w, table.Params{}); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
		return nil
	}
	if err := tbl.WriteText(w, table.Params{}); err != nil {
		return errors.Annotate(err, "failed to print text")
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := printSearch(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}

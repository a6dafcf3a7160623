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
	"github.com/stockparfait/uscensus/stats"
	"github.com/stockparfait/uscensus/table"

	toml "github.com/pelletier/go-toml/v2"
)

type Flags struct {
	Config   string // path to the TOML config (required)
	Out      string // output file; default: stdout
	CSV      bool   // dump CSV format; default: text
	Summary  string // comma-separated variable names to summarize
	LogLevel logging.Level
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("census-fetch", flag.ExitOnError)
	fs.StringVar(&flags.Config, "config", "", "path to the TOML config file (required)")
	fs.StringVar(&flags.Out, "out", "", "output file; default: stdout")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	fs.StringVar(&flags.Summary, "summary", "",
		"comma-separated variable names to print summary statistics for")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if flags.Config == "" {
		return nil, errors.Reason("missing required -config argument")
	}
	return &flags, err
}

// GeoFilter restricts the download to specific units of a geography field.
type GeoFilter struct {
	Field  string   `toml:"field"`
	Values []string `toml:"values"`
}

type Config struct {
	Year       int         `toml:"year"`
	Path       string      `toml:"path"`      // e.g. "acs/acs5"
	GeoLevel   string      `toml:"geo_level"` // e.g. "050" for county
	GeoFilters []GeoFilter `toml:"geo"`
	Variables  []string    `toml:"variables"`
	BatchSize  int         `toml:"batch_size"` // default: API limit of 50
}

func parseConfig(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sample := `year = 2021
path = "acs/acs5"
geo_level = "050"
variables = ["NAME", "B01001_001E"]

[[geo]]
field = "state"
values = ["06"]
`
			err = errors.Annotate(err,
				"config file '%s' does not exist.\nPlease create a config file containing:\n%s",
				filePath, sample)
			return nil, err
		}
		return nil, errors.Annotate(err,
			"cannot check config file for existence: '%s'", filePath)
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	var c Config
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", filePath)
	}
	if c.Year == 0 {
		return nil, errors.Reason("config must set 'year'")
	}
	if c.Path == "" {
		return nil, errors.Reason("config must set 'path'")
	}
	if c.GeoLevel == "" {
		return nil, errors.Reason("config must set 'geo_level'")
	}
	if len(c.Variables) == 0 {
		return nil, errors.Reason("config must set 'variables'")
	}
	return &c, nil
}

func (c *Config) request() census.DownloadRequest {
	req := census.DownloadRequest{
		GeoLevel:      c.GeoLevel,
		VariableNames: c.Variables,
		BatchSize:     c.BatchSize,
	}
	for _, gf := range c.GeoFilters {
		for _, v := range gf.Values {
			req.GeoFilters = append(req.GeoFilters, census.GeoFilter{
				Field: gf.Field, Value: v})
		}
	}
	return req
}

func writeTable(tbl *table.Table, csv bool, w io.Writer) error {
	if csv {
		return tbl.WriteCSV(w, table.Params{})
	}
	return tbl.WriteText(w, table.Params{})
}

func summaryTable(rows [][]string, columns []string) (*table.Table, error) {
	tbl := table.New("Column", "N", "Mean", "Sigma", "Min", "Max")
	for _, col := range columns {
		xs, err := stats.Column(rows, col)
		if err != nil {
			return nil, errors.Annotate(err, "failed to extract column %q", col)
		}
		s := stats.Summarize(xs)
		tbl.AddRow(table.RawRow{
			col,
			fmt.Sprintf("%d", s.N),
			fmt.Sprintf("%g", s.Mean),
			fmt.Sprintf("%g", s.Sigma),
			fmt.Sprintf("%g", s.Min),
			fmt.Sprintf("%g", s.Max),
		})
	}
	return tbl, nil
}

func fetchData(ctx context.Context, flags *Flags, dataW, summaryW io.Writer) error {
	config, err := parseConfig(flags.Config)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	ds, err := census.LookupDataset(ctx, config.Year, config.Path)
	if err != nil {
		return errors.Annotate(err, "failed to look up dataset")
	}
	rows, err := ds.Download(ctx, config.request())
	if err != nil {
		return errors.Annotate(err, "failed to download data")
	}
	logging.Infof(ctx, "downloaded %d rows from %s", len(rows), ds.Path)

	if err := writeTable(table.FromRows(rows), flags.CSV, dataW); err != nil {
		return errors.Annotate(err, "failed to write data")
	}
	if flags.Summary != "" {
		tbl, err := summaryTable(rows, strings.Split(flags.Summary, ","))
		if err != nil {
			return errors.Annotate(err, "failed to summarize data")
		}
		if err := tbl.WriteText(summaryW, table.Params{}); err != nil {
			return errors.Annotate(err, "failed to write summary")
		}
	}
	return nil
}

func run(ctx context.Context, flags *Flags) error {
	var dataW io.Writer = os.Stdout
	if flags.Out != "" {
		f, err := os.OpenFile(flags.Out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return errors.Annotate(err, "failed to create output file %s", flags.Out)
		}
		defer f.Close()
		dataW = f
	}
	return fetchData(ctx, flags, dataW, os.Stdout)
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

	if err := run(ctx, flags); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}

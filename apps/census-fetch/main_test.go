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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/testutil"
	"github.com/stockparfait/uscensus/census"

	. "github.com/smartystreets/goconvey/convey"
)

const testConfig = `year = 2021
path = "acs/acs5"
geo_level = "050"
variables = ["NAME", "B01001_001E"]

[[geo]]
field = "county"
values = ["*"]

[[geo]]
field = "state"
values = ["06"]
`

func testCatalog(serverURL string) string {
	return fmt.Sprintf(`{
  "dataset": [
    {
      "title": "ACS 5-Year Estimates",
      "description": "detailed tables",
      "c_dataset": ["acs", "acs5"],
      "c_geographyLink": "%[1]s/geography.json",
      "c_variablesLink": "%[1]s/variables.json",
      "c_groupsLink": "%[1]s/groups.json",
      "distribution": [{"format": "API", "accessURL": "%[1]s/data/2021/acs/acs5"}]
    }
  ]
}`, serverURL)
}

const testGeoDoc = `{
  "fips": [
    {
      "name": "county",
      "geoLevelDisplay": "050",
      "referenceDate": "2021-01-01",
      "requires": ["state"],
      "wildcard": ["state"]
    }
  ]
}`

const testData = `[
  ["NAME", "B01001_001E", "state", "county"],
  ["Alameda County", "1", "06", "001"],
  ["Alpine County", "2", "06", "003"],
  ["Amador County", "3", "06", "005"]
]`

func TestMain(t *testing.T) {
	t.Parallel()

	tmpdir, tmpdirErr := os.MkdirTemp("", "test_census_fetch")
	defer os.RemoveAll(tmpdir)

	Convey("Setup succeeded", t, func() {
		So(tmpdirErr, ShouldBeNil)
	})

	Convey("parseFlags", t, func() {
		flags, err := parseFlags([]string{
			"-config", "config.toml", "-out", "data.csv", "-csv",
			"-summary", "B01001_001E", "-log-level", "warning"})
		So(err, ShouldBeNil)
		So(flags.Config, ShouldEqual, "config.toml")
		So(flags.Out, ShouldEqual, "data.csv")
		So(flags.CSV, ShouldBeTrue)
		So(flags.Summary, ShouldEqual, "B01001_001E")
		So(flags.LogLevel, ShouldEqual, logging.Warning)

		_, err = parseFlags([]string{"-csv"})
		So(err, ShouldNotBeNil)
	})

	Convey("parseConfig", t, func() {
		Convey("reads a valid config", func() {
			fileName := filepath.Join(tmpdir, "config.toml")
			So(testutil.WriteFile(fileName, testConfig), ShouldBeNil)

			c, err := parseConfig(fileName)
			So(err, ShouldBeNil)
			So(c.Year, ShouldEqual, 2021)
			So(c.Path, ShouldEqual, "acs/acs5")
			So(c.GeoLevel, ShouldEqual, "050")
			So(c.Variables, ShouldResemble, []string{"NAME", "B01001_001E"})
			So(c.request().GeoFilters, ShouldResemble, []census.GeoFilter{
				{Field: "county", Value: "*"},
				{Field: "state", Value: "06"},
			})
		})

		Convey("fails for a missing file", func() {
			_, err := parseConfig(filepath.Join(tmpdir, "no-such.toml"))
			So(err, ShouldNotBeNil)
		})

		Convey("fails for an incomplete config", func() {
			fileName := filepath.Join(tmpdir, "incomplete.toml")
			So(testutil.WriteFile(fileName, `year = 2021`), ShouldBeNil)

			_, err := parseConfig(fileName)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("fetchData", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		server.ResponseBody = []string{
			testCatalog(server.URL()), testGeoDoc, testData}

		ctx := fetch.UseClient(context.Background(), server.Client())
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		census.URL = server.URL() + "/data"

		fileName := filepath.Join(tmpdir, "fetch.toml")
		So(testutil.WriteFile(fileName, testConfig), ShouldBeNil)

		flags, err := parseFlags([]string{
			"-config", fileName, "-csv", "-summary", "B01001_001E"})
		So(err, ShouldBeNil)

		var dataW, summaryW bytes.Buffer
		So(fetchData(ctx, flags, &dataW, &summaryW), ShouldBeNil)
		So("\n"+dataW.String(), ShouldEqual, `
NAME,B01001_001E,state,county
Alameda County,1,06,001
Alpine County,2,06,003
Amador County,3,06,005
`)
		So("\n"+summaryW.String(), ShouldEqual, `
     Column | N | Mean | Sigma | Min | Max
----------- | - | ---- | ----- | --- | ---
B01001_001E | 3 |    2 |     1 |   1 |   3
`)
		So(server.RequestQuery["get"], ShouldResemble,
			[]string{"NAME,B01001_001E"})
		So(server.RequestQuery["for"], ShouldResemble, []string{"county:*"})
		So(server.RequestQuery["in"], ShouldResemble, []string{"state:06"})
	})
}

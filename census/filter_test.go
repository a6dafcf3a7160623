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
	"testing"

	"github.com/stockparfait/errors"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	Convey("normalize", t, func() {
		Convey("compiles patterns into case-insensitive substring predicates", func() {
			fs, err := normalize([]Filter{Match("name", "county")})
			So(err, ShouldBeNil)
			So(fs[0].Crit.match("US County Subdivision"), ShouldBeTrue)
			So(fs[0].Crit.match("state"), ShouldBeFalse)
		})

		Convey("passes predicates through unchanged", func() {
			f := MatchFunc("name", func(v string) bool { return v == "tract" })
			fs, err := normalize([]Filter{f})
			So(err, ShouldBeNil)
			So(fs[0].Crit.match("tract"), ShouldBeTrue)
			So(fs[0].Crit.match("county"), ShouldBeFalse)
		})

		Convey("zero criterion fails", func() {
			_, err := normalize([]Filter{{Field: "name"}})
			So(errors.Is(err, ErrInvalidCriterion), ShouldBeTrue)
		})

		Convey("invalid regex fails", func() {
			_, err := normalize([]Filter{Match("name", "(unclosed")})
			So(errors.Is(err, ErrInvalidCriterion), ShouldBeTrue)
		})
	})

	Convey("checkFilters", t, func() {
		g := Group{Name: "B01001", Description: "Sex by Age"}

		norm := func(fs ...Filter) []Filter {
			res, err := normalize(fs)
			So(err, ShouldBeNil)
			return res
		}

		Convey("empty filter list always passes", func() {
			for _, mode := range []Mode{ModeAnd, ModeOr} {
				ok, err := checkFilters(g, nil, mode)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			}
		})

		Convey("unknown field fails", func() {
			_, err := checkFilters(g, norm(Match("vintage", ".*")), ModeAnd)
			So(errors.Is(err, ErrInvalidFilterField), ShouldBeTrue)
		})

		Convey("AND requires all filters, OR requires at least one", func() {
			fs := norm(Match("name", "b01001"), Match("description", "income"))
			ok, err := checkFilters(g, fs, ModeAnd)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			ok, err = checkFilters(g, fs, ModeOr)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		})

		Convey("AND passes when all filters match", func() {
			fs := norm(Match("name", "b01001"), Match("description", "sex"))
			ok, err := checkFilters(g, fs, ModeAnd)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		})

		Convey("OR fails when no filter matches", func() {
			fs := norm(Match("name", "b19013"), Match("description", "income"))
			ok, err := checkFilters(g, fs, ModeOr)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})
}

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

	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoCache(t *testing.T) {
	t.Parallel()

	Convey("memoCache", t, func() {
		c := newMemoCache(2)
		a := []Variable{{Name: "A"}}
		b := []Variable{{Name: "B"}}
		x := []Variable{{Name: "X"}}

		Convey("stores and retrieves entries", func() {
			c.put("a", a)
			vs, ok := c.get("a")
			So(ok, ShouldBeTrue)
			So(vs, ShouldResemble, a)

			_, ok = c.get("missing")
			So(ok, ShouldBeFalse)
		})

		Convey("evicts the least recently used entry", func() {
			c.put("a", a)
			c.put("b", b)
			c.put("x", x)

			_, ok := c.get("a")
			So(ok, ShouldBeFalse)
			_, ok = c.get("b")
			So(ok, ShouldBeTrue)
			_, ok = c.get("x")
			So(ok, ShouldBeTrue)
		})

		Convey("get refreshes recency", func() {
			c.put("a", a)
			c.put("b", b)
			_, ok := c.get("a")
			So(ok, ShouldBeTrue)
			c.put("x", x)

			_, ok = c.get("b")
			So(ok, ShouldBeFalse)
			_, ok = c.get("a")
			So(ok, ShouldBeTrue)
		})

		Convey("overwriting a key does not evict", func() {
			c.put("a", a)
			c.put("b", b)
			c.put("a", x)

			vs, ok := c.get("a")
			So(ok, ShouldBeTrue)
			So(vs, ShouldResemble, x)
			_, ok = c.get("b")
			So(ok, ShouldBeTrue)
		})

		Convey("returned slices are copies", func() {
			c.put("a", a)
			vs, ok := c.get("a")
			So(ok, ShouldBeTrue)
			vs[0].Name = "mutated"

			vs2, ok := c.get("a")
			So(ok, ShouldBeTrue)
			So(vs2[0].Name, ShouldEqual, "A")
		})
	})

	Convey("cacheKey", t, func() {
		Convey("pattern filters produce a stable key", func() {
			fs, err := normalize([]Filter{
				Match("name", "b01001"), Match("label", "total")})
			So(err, ShouldBeNil)
			key, ok := cacheKey("http://u/vars.json", fs, ModeAnd)
			So(ok, ShouldBeTrue)
			So(key, ShouldEqual, "http://u/vars.json|and|name=b01001|label=total")

			keyOr, ok := cacheKey("http://u/vars.json", fs, ModeOr)
			So(ok, ShouldBeTrue)
			So(keyOr, ShouldNotEqual, key)
		})

		Convey("predicate filters are uncacheable", func() {
			fs := []Filter{MatchFunc("name", func(string) bool { return true })}
			_, ok := cacheKey("http://u/vars.json", fs, ModeAnd)
			So(ok, ShouldBeFalse)
		})
	})
}

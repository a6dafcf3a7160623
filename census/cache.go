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
	"strings"
	"sync"
)

// variableCacheSize is the capacity of the variable search memo cache. The
// cache only smooths out repeated drilling into the same large variables
// document; it is not required for correctness.
const variableCacheSize = 2

// memoCache is a fixed-capacity key -> search result map with
// least-recently-used eviction.
type memoCache struct {
	mu      sync.Mutex
	cap     int
	keys    []string // recency order, most recent last
	entries map[string][]Variable
}

func newMemoCache(capacity int) *memoCache {
	return &memoCache{cap: capacity, entries: make(map[string][]Variable)}
}

var varCache = newMemoCache(variableCacheSize)

// bump moves the key to the most recent position. Lock must be held.
func (c *memoCache) bump(key string) {
	for i, k := range c.keys {
		if k == key {
			c.keys = append(append(c.keys[:i:i], c.keys[i+1:]...), key)
			return
		}
	}
	c.keys = append(c.keys, key)
}

// get returns a copy of the cached result, so callers cannot mutate the
// cached slice.
func (c *memoCache) get(key string) ([]Variable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vs, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.bump(key)
	return append([]Variable(nil), vs...), true
}

func (c *memoCache) put(key string, vs []Variable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.cap {
		oldest := c.keys[0]
		c.keys = c.keys[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = append([]Variable(nil), vs...)
	c.bump(key)
}

// cacheKey derives the memo key for a variable search from the document URL,
// the normalized filters and the combination mode. Predicate criteria have
// no canonical representation, so their presence makes the search
// uncacheable.
func cacheKey(uri string, filters []Filter, mode Mode) (string, bool) {
	parts := make([]string, 0, len(filters)+2)
	parts = append(parts, uri, mode.String())
	for _, f := range filters {
		if !f.Crit.isPattern {
			return "", false
		}
		parts = append(parts, f.Field+"="+f.Crit.pattern)
	}
	return strings.Join(parts, "|"), true
}

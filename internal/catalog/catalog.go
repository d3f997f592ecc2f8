// Package catalog holds the static, read-only list of precomputed API
// combinations that card generation draws from.
//
// The catalog is baked into the binary with go:embed and loaded once at
// startup. Nothing in the application mutates it at runtime, so it needs
// no locking — every consumer shares the same immutable slice.
//
// IDENTITY:
// A combination is an UNORDERED pair of API names. Its canonical identity
// (the "combination key") is the two names sorted lexicographically and
// joined with "-". The key is what uniqueness is enforced against: a user
// owning "GitHub-Slack" owns it regardless of which order the pair was
// requested in.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed combinations.json
var combinationsJSON []byte

// Combination is one precomputed record in the catalog.
// All fields are immutable after load.
type Combination struct {
	APIs           []string `json:"apis"` // exactly 2, distinct
	Title          string   `json:"title"`
	Subtitle       string   `json:"subtitle"`
	Industry       string   `json:"industry"`
	Problem        string   `json:"problem"`
	Solution       string   `json:"solution"`
	Implementation string   `json:"implementation"`
	MarketOpp      string   `json:"marketOpportunity"`
	Summary        string   `json:"summary"`
	Rating         float64  `json:"rating"` // in [0,1]
	Feasibility    string   `json:"feasibility"`
	Complexity     string   `json:"complexity"`
}

// Key returns the combination's canonical key.
func (c *Combination) Key() string {
	return Key(c.APIs[0], c.APIs[1])
}

// Key computes the canonical combination key for two API names.
//
// This is a pure function — it never mutates its inputs. Sorting a
// shared slice in place would silently reorder arrays held by callers,
// so we sort a copy.
func Key(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "-")
}

// Catalog is the loaded, validated combination set.
type Catalog struct {
	combinations []Combination
	byKey        map[string]*Combination
	apis         []string // distinct API names, sorted
}

// Load parses and validates the embedded catalog.
//
// Validation is defensive: the data is assumed correct (each pair distinct,
// no duplicate keys, ratings in range), but a bad data file should fail the
// process at startup rather than corrupt uniqueness guarantees at runtime.
func Load() (*Catalog, error) {
	return Parse(combinationsJSON)
}

// Parse builds a catalog from raw JSON. Load uses the embedded data;
// tests use Parse with small fixtures.
func Parse(data []byte) (*Catalog, error) {
	var combinations []Combination
	if err := json.Unmarshal(data, &combinations); err != nil {
		return nil, fmt.Errorf("catalog: parsing combinations: %w", err)
	}
	if len(combinations) == 0 {
		return nil, fmt.Errorf("catalog: no combinations in data file")
	}

	byKey := make(map[string]*Combination, len(combinations))
	apiSet := make(map[string]bool)

	for i := range combinations {
		c := &combinations[i]
		if len(c.APIs) != 2 || c.APIs[0] == c.APIs[1] {
			return nil, fmt.Errorf("catalog: record %d: apis must be 2 distinct names, got %v", i, c.APIs)
		}
		if c.Rating < 0 || c.Rating > 1 {
			return nil, fmt.Errorf("catalog: record %d (%s): rating %f out of [0,1]", i, c.Key(), c.Rating)
		}
		key := c.Key()
		if _, dup := byKey[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate combination key %q", key)
		}
		byKey[key] = c
		apiSet[c.APIs[0]] = true
		apiSet[c.APIs[1]] = true
	}

	apis := make([]string, 0, len(apiSet))
	for name := range apiSet {
		apis = append(apis, name)
	}
	sort.Strings(apis)

	return &Catalog{
		combinations: combinations,
		byKey:        byKey,
		apis:         apis,
	}, nil
}

// Size returns the number of combinations in the catalog.
func (c *Catalog) Size() int {
	return len(c.combinations)
}

// All returns every combination. Callers must treat the slice as read-only.
func (c *Catalog) All() []Combination {
	return c.combinations
}

// ByKey looks up a combination by its canonical key.
// Returns nil if no such pair exists in the catalog — exact lookup only,
// no fuzzy matching.
func (c *Catalog) ByKey(key string) *Combination {
	return c.byKey[key]
}

// APIs returns the distinct API names appearing in the catalog, sorted.
func (c *Catalog) APIs() []string {
	return c.apis
}

// HasAPI reports whether name is part of the catalog's API roster.
func (c *Catalog) HasAPI(name string) bool {
	// apis is sorted, so binary search would work, but the roster is ~20
	// names — a linear scan is fine.
	for _, a := range c.apis {
		if a == name {
			return true
		}
	}
	return false
}

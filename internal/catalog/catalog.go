// Package catalog is the hardware reference database: known CPU and GPU
// models with a performance tier, a composite gaming score and pricing.
// A Catalog is immutable after construction and safe for concurrent use.
package catalog

import (
	"sort"
	"strings"
)

// DefaultMaxCandidates is the number of upgrade suggestions returned when the
// caller does not ask for a specific count.
const DefaultMaxCandidates = 3

// Tier is a coarse performance class.
type Tier string

const (
	TierVeryLow  Tier = "very_low"
	TierLow      Tier = "low"
	TierMid      Tier = "mid"
	TierHigh     Tier = "high"
	TierVeryHigh Tier = "very_high"
)

// TierRank maps a tier to 0..4 for arithmetic comparison. Unknown tiers
// return -1.
func TierRank(t Tier) int {
	switch t {
	case TierVeryLow:
		return 0
	case TierLow:
		return 1
	case TierMid:
		return 2
	case TierHigh:
		return 3
	case TierVeryHigh:
		return 4
	default:
		return -1
	}
}

// Entry is one catalog row.
type Entry struct {
	Name        string  `json:"name" yaml:"name"`
	Tier        Tier    `json:"tier" yaml:"tier"`
	GamingScore int     `json:"gaming_score" yaml:"gaming_score"`
	ReleaseYear int     `json:"release_year" yaml:"release_year"`
	MSRP        float64 `json:"msrp" yaml:"msrp"`
	Price       float64 `json:"current_price" yaml:"current_price"`
}

// Key is the normalized lookup key of the entry.
func (e Entry) Key() string { return Normalize(e.Name) }

// Catalog is an ordered, keyed table of entries. Declaration order is kept:
// it is the final tie-break for fuzzy lookups and upgrade ranking.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// New builds a catalog from entries in declaration order. An entry whose key
// already exists replaces the earlier one in place.
func New(entries ...Entry) *Catalog {
	c := &Catalog{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		c.add(e)
	}
	return c
}

func (c *Catalog) add(e Entry) {
	key := e.Key()
	if key == "" {
		return
	}
	if i, ok := c.index[key]; ok {
		c.entries[i] = e
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, e)
}

// With returns a new catalog containing c's entries followed by extra.
func (c *Catalog) With(extra ...Entry) *Catalog {
	out := New(c.entries...)
	for _, e := range extra {
		out.add(e)
	}
	return out
}

// Entries returns a copy of the entries in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Normalize lower-cases a model name, strips trademark marks and collapses
// whitespace, so "Intel(R) Core(TM) i5-12400F" and "intel core i5-12400f"
// produce the same key.
func Normalize(name string) string {
	s := strings.ToLower(name)
	for _, mark := range []string{"(r)", "(tm)", "®", "™"} {
		s = strings.ReplaceAll(s, mark, " ")
	}
	return strings.Join(strings.Fields(s), " ")
}

// Lookup finds the entry for a model name.
//
// An exact key match wins. Otherwise every entry whose key occurs in the name
// as a run of whole words, or contains the name that way, is a candidate, so
// fragments such as "a" or "4" never match. Candidates are ranked by:
//  1. longest matched length (the shorter of key and name),
//  2. smallest length difference between key and name,
//  3. catalog declaration order.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	q := Normalize(name)
	if q == "" {
		return Entry{}, false
	}
	if i, ok := c.index[q]; ok {
		return c.entries[i], true
	}

	best, bestMatch, bestDiff := -1, 0, 0
	for i, e := range c.entries {
		key := e.Key()
		var match, diff int
		switch {
		case containsWords(q, key):
			match, diff = len(key), len(q)-len(key)
		case containsWords(key, q):
			match, diff = len(q), len(key)-len(q)
		default:
			continue
		}
		if best < 0 || match > bestMatch || (match == bestMatch && diff < bestDiff) {
			best, bestMatch, bestDiff = i, match, diff
		}
	}
	if best < 0 {
		return Entry{}, false
	}
	return c.entries[best], true
}

// containsWords reports whether needle occurs in s on word boundaries. Both
// are normalized, so words are separated by single spaces.
func containsWords(s, needle string) bool {
	return strings.Contains(" "+s+" ", " "+needle+" ")
}

// UpgradeCandidates returns up to maxResults entries in a strictly higher tier
// than current, best value (gaming score per dollar) first. Prices below one
// dollar count as one dollar. maxResults <= 0 means DefaultMaxCandidates.
func (c *Catalog) UpgradeCandidates(current Entry, maxResults int) []Entry {
	if c == nil {
		return nil
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxCandidates
	}
	rank := TierRank(current.Tier)

	var out []Entry
	for _, e := range c.entries {
		if TierRank(e.Tier) > rank {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return valueRatio(out[i]) > valueRatio(out[j])
	})
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

func valueRatio(e Entry) float64 {
	return float64(e.GamingScore) / max(e.Price, 1)
}

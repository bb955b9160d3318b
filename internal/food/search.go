package food

import (
	"iter"
	"sort"
	"strings"
)

// Query selects foods by keyword.
type Query struct {
	// Terms are matched case-insensitively as substrings of each keyword.
	// An empty query matches every food.
	Terms []string

	// MatchAll requires every term to match; otherwise any term suffices.
	MatchAll bool

	// Ranked orders exact keyword matches before partial ones.
	Ranked bool
}

// ParseQuery splits a whitespace-separated query string into terms.
func ParseQuery(s string, matchAll bool) Query {
	return Query{Terms: strings.Fields(s), MatchAll: matchAll}
}

// Search yields the ids of foods matching q. The sequence is lazy and may be
// ranged over any number of times; each pass sees the catalog as it is when
// the pass starts.
func (c *Catalog) Search(q Query) iter.Seq[string] {
	terms := make([]string, 0, len(q.Terms))
	for _, t := range q.Terms {
		if t = Normalize(t); t != "" {
			terms = append(terms, t)
		}
	}

	return func(yield func(string) bool) {
		ids := c.order[:len(c.order)]

		if !q.Ranked {
			for _, id := range ids {
				if ok, _ := match(c.foods[id], terms, q.MatchAll); ok {
					if !yield(id) {
						return
					}
				}
			}
			return
		}

		type hit struct {
			id    string
			seq   int
			exact bool
		}
		var hits []hit
		for seq, id := range ids {
			if ok, exact := match(c.foods[id], terms, q.MatchAll); ok {
				hits = append(hits, hit{id: id, seq: seq, exact: exact})
			}
		}
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].exact != hits[j].exact {
				return hits[i].exact
			}
			if hits[i].seq != hits[j].seq {
				return hits[i].seq < hits[j].seq
			}
			return hits[i].id < hits[j].id
		})
		for _, h := range hits {
			if !yield(h.id) {
				return
			}
		}
	}
}

// match reports whether f matches the normalized terms, and whether any
// term equals one of its keywords exactly.
func match(f *Food, terms []string, matchAll bool) (ok, exact bool) {
	if len(terms) == 0 {
		return true, false
	}

	keywords := make([]string, len(f.Keywords))
	for i, k := range f.Keywords {
		keywords[i] = strings.ToLower(k)
	}

	matched := 0
	for _, term := range terms {
		termMatched := false
		for _, k := range keywords {
			if k == term {
				exact = true
				termMatched = true
			} else if strings.Contains(k, term) {
				termMatched = true
			}
		}
		if termMatched {
			matched++
		} else if matchAll {
			return false, false
		}
	}
	return matched > 0, exact
}

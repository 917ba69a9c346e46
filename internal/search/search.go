package search

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

type Match struct {
	// Index is the position of the candidate in the list passed to Rank.
	Index      int
	Candidate  string
	Similarity float64
}

// Rank scores every candidate against the query with Jaro-Winkler similarity,
// ignoring case, and returns at most limit matches from most to least similar.
// Candidates with no similarity at all are dropped. limit <= 0 means no limit.
func Rank(query string, candidates []string, limit int) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var out []Match
	for i, c := range candidates {
		similarity := matchr.JaroWinkler(query, strings.ToLower(c), false)
		if similarity <= 0 {
			continue
		}
		out = append(out, Match{Index: i, Candidate: c, Similarity: similarity})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

package resolver

import (
	"sort"
)

// Suggestion is a near-match candidate produced by the opt-in suggestion
// tool. Suggestions are for manual alias-table maintenance only; nothing in
// ingestion or backtesting consumes them.
type Suggestion struct {
	Canonical string  `json:"canonical"`
	Score     float64 `json:"score"`
}

// Suggester offers fuzzy candidates for unresolved names. It is deliberately
// a separate type from TeamResolver so the authoritative path cannot reach it
// by accident.
type Suggester struct {
	index     *AliasIndex
	threshold float64
}

// NewSuggester builds a suggester over the same immutable index the resolver
// uses. Threshold is the minimum similarity ratio (0-1) for a candidate to be
// reported.
func NewSuggester(index *AliasIndex, threshold float64) *Suggester {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.85
	}
	return &Suggester{index: index, threshold: threshold}
}

// Suggest returns up to limit canonical candidates ordered by descending
// similarity, ties broken lexically for determinism.
func (s *Suggester) Suggest(rawName string, limit int) []Suggestion {
	key := Normalize(rawName)
	if key == "" || limit <= 0 {
		return nil
	}

	var out []Suggestion
	for _, canonical := range s.index.CanonicalNames() {
		score := similarity(key, Normalize(canonical))
		if score >= s.threshold {
			out = append(out, Suggestion{Canonical: canonical, Score: score})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Canonical < out[j].Canonical
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// similarity is a Levenshtein ratio: 1 - distance/maxLen.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

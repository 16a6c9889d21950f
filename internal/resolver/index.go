package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// CollisionDecision records one deterministic choice made while building the
// index: two or more aliases shared a key and exactly one canonical target was
// kept. Decisions are retained so an index build is reproducible and auditable
// from its inputs alone.
type CollisionDecision struct {
	Key      string   `json:"key"`
	Chosen   string   `json:"chosen"`
	Rejected []string `json:"rejected"`
	Reason   string   `json:"reason"`
}

// AliasIndex is the immutable mapping from raw team strings to canonical
// identities. It is built once per run and read-only afterwards. Two key
// forms are kept per table: the exact form (lowercased, trimmed) serving the
// case-insensitive strategies, and the normalized form serving the
// punctuation-and-unicode-folded retry.
type AliasIndex struct {
	canonicalExact map[string]string
	canonicalNorm  map[string]string
	aliasExact     map[string]string
	aliasNorm      map[string]string
	canonicalList  []string
	collisions     []CollisionDecision
}

// IndexOptions configures alias-index construction.
type IndexOptions struct {
	// HasRatings reports whether a canonical team has at least one rating
	// record. Rated teams outrank unrated ones when an alias key collides,
	// because an alias pointing at an unrated team can never produce a
	// graded bet.
	HasRatings func(canonical string) bool
	Logger     *logrus.Logger
}

type aliasCandidate struct {
	canonical  string
	rawLowers  []string
	confidence float64
	rated      bool
}

// BuildIndex constructs an AliasIndex from the closed canonical set and the
// alias table. Duplicate keys are resolved with a fixed ranking: rated
// canonical first, then higher declared confidence, then lexical order of
// canonical name. The same inputs always produce the same index.
func BuildIndex(canonicalTeams []models.CanonicalTeam, aliases []models.Alias, opts IndexOptions) (*AliasIndex, error) {
	if len(canonicalTeams) == 0 {
		return nil, fmt.Errorf("canonical team set is empty")
	}
	hasRatings := opts.HasRatings
	if hasRatings == nil {
		hasRatings = func(string) bool { return true }
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	idx := &AliasIndex{
		canonicalExact: make(map[string]string, len(canonicalTeams)),
		canonicalNorm:  make(map[string]string, len(canonicalTeams)),
		aliasExact:     make(map[string]string, len(aliases)),
		aliasNorm:      make(map[string]string, len(aliases)),
	}

	for _, team := range canonicalTeams {
		name := strings.TrimSpace(team.Name)
		if name == "" {
			continue
		}
		normKey := Normalize(name)
		if existing, ok := idx.canonicalNorm[normKey]; ok && existing != name {
			return nil, fmt.Errorf("canonical names %q and %q normalize to the same key %q", existing, name, normKey)
		}
		idx.canonicalExact[strings.ToLower(name)] = name
		idx.canonicalNorm[normKey] = name
		idx.canonicalList = append(idx.canonicalList, name)
	}
	sort.Strings(idx.canonicalList)

	// Group alias candidates by normalized key before deciding winners so
	// the outcome does not depend on input order. Raw spellings that share a
	// lowercase key necessarily share a normalized key, so the group winner
	// serves both tables and the two can never disagree.
	grouped := make(map[string]map[string]*aliasCandidate)
	for _, alias := range aliases {
		key := Normalize(alias.RawText)
		if key == "" {
			continue
		}
		canonical := strings.TrimSpace(alias.Canonical)
		if canonical == "" {
			continue
		}
		if _, ok := idx.canonicalNorm[Normalize(canonical)]; !ok {
			logger.WithFields(logrus.Fields{
				"alias":     alias.RawText,
				"canonical": canonical,
				"source":    alias.Source,
			}).Warn("Alias targets unknown canonical team, dropping")
			continue
		}

		group, ok := grouped[key]
		if !ok {
			group = make(map[string]*aliasCandidate)
			grouped[key] = group
		}
		cand, ok := group[canonical]
		if !ok {
			cand = &aliasCandidate{canonical: canonical, rated: hasRatings(canonical)}
			group[canonical] = cand
		}
		if alias.Confidence != nil && *alias.Confidence > cand.confidence {
			cand.confidence = *alias.Confidence
		}
		cand.rawLowers = append(cand.rawLowers, strings.ToLower(strings.TrimSpace(alias.RawText)))
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		candidates := flattenGroup(grouped[key])
		winner := candidates[0]
		if len(candidates) > 1 {
			var reason string
			winner, reason = pickWinner(candidates)
			rejected := make([]string, 0, len(candidates)-1)
			for _, cand := range candidates {
				if cand.canonical != winner.canonical {
					rejected = append(rejected, cand.canonical)
				}
			}
			sort.Strings(rejected)
			idx.collisions = append(idx.collisions, CollisionDecision{
				Key:      key,
				Chosen:   winner.canonical,
				Rejected: rejected,
				Reason:   reason,
			})
			logger.WithFields(logrus.Fields{
				"key":      key,
				"chosen":   winner.canonical,
				"rejected": rejected,
				"reason":   reason,
			}).Info("Alias collision resolved")
		}

		idx.aliasNorm[key] = winner.canonical
		for _, cand := range candidates {
			for _, rawLower := range cand.rawLowers {
				idx.aliasExact[rawLower] = winner.canonical
			}
		}
	}

	return idx, nil
}

func flattenGroup(group map[string]*aliasCandidate) []aliasCandidate {
	out := make([]aliasCandidate, 0, len(group))
	for _, cand := range group {
		sort.Strings(cand.rawLowers)
		out = append(out, *cand)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].canonical < out[j].canonical })
	return out
}

// pickWinner applies the fixed collision ranking and names the rule that
// separated the winner from the runner-up.
func pickWinner(candidates []aliasCandidate) (aliasCandidate, string) {
	ranked := make([]aliasCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].rated != ranked[j].rated {
			return ranked[i].rated
		}
		if ranked[i].confidence != ranked[j].confidence {
			return ranked[i].confidence > ranked[j].confidence
		}
		return ranked[i].canonical < ranked[j].canonical
	})

	winner, runnerUp := ranked[0], ranked[1]
	switch {
	case winner.rated != runnerUp.rated:
		return winner, "rated team preferred"
	case winner.confidence != runnerUp.confidence:
		return winner, "higher confidence"
	default:
		return winner, "lexical order"
	}
}

// LookupCanonicalExact matches a lowercased raw string against canonical
// names case-insensitively.
func (idx *AliasIndex) LookupCanonicalExact(lowered string) (string, bool) {
	name, ok := idx.canonicalExact[lowered]
	return name, ok
}

// LookupAliasExact matches a lowercased raw string against the alias table
// case-insensitively.
func (idx *AliasIndex) LookupAliasExact(lowered string) (string, bool) {
	name, ok := idx.aliasExact[lowered]
	return name, ok
}

// LookupCanonicalNormalized matches a normalized key against canonical names.
func (idx *AliasIndex) LookupCanonicalNormalized(key string) (string, bool) {
	name, ok := idx.canonicalNorm[key]
	return name, ok
}

// LookupAliasNormalized matches a normalized key against the alias table.
func (idx *AliasIndex) LookupAliasNormalized(key string) (string, bool) {
	name, ok := idx.aliasNorm[key]
	return name, ok
}

// CanonicalNames returns the sorted closed set of canonical team names.
func (idx *AliasIndex) CanonicalNames() []string {
	out := make([]string, len(idx.canonicalList))
	copy(out, idx.canonicalList)
	return out
}

// Collisions returns every collision decision made during the build, in
// deterministic key order.
func (idx *AliasIndex) Collisions() []CollisionDecision {
	out := make([]CollisionDecision, len(idx.collisions))
	copy(out, idx.collisions)
	return out
}

// Size returns the number of normalized alias keys in the index.
func (idx *AliasIndex) Size() int {
	return len(idx.aliasNorm)
}

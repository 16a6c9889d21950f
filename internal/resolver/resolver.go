// Package resolver provides deterministic team-identity resolution. Every raw
// team string, regardless of source formatting, resolves to exactly one
// canonical name or to a structured non-match; there is no fuzzy matching in
// the authoritative path.
package resolver

import (
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// TeamResolver wraps an AliasIndex with the fixed-order strategy chain:
// non-member filter, exact canonical, exact alias, normalized retry, mascot
// strip. It never guesses and never substitutes the closest string: a
// plausible-looking wrong match is worse than a dropped game.
type TeamResolver struct {
	index      *AliasIndex
	nonMembers map[string]struct{}
	cache      *gocache.Cache
	logger     *logrus.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// ResolverOptions configures a TeamResolver.
type ResolverOptions struct {
	// NonMembers lists known non-top-division entities. Resolution of these
	// short-circuits to NON_EXISTENT before any matching strategy runs, so
	// the audit trail can separate intentional exclusions from alias-table
	// gaps.
	NonMembers []string
	// CacheTTL bounds the resolution memo. Zero means entries never expire,
	// which is correct for a single run over immutable tables.
	CacheTTL time.Duration
	Logger   *logrus.Logger
}

// NewTeamResolver builds a resolver over an immutable index.
func NewTeamResolver(index *AliasIndex, opts ResolverOptions) *TeamResolver {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	ttl := opts.CacheTTL
	cleanup := 2 * ttl
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}

	nonMembers := make(map[string]struct{}, len(opts.NonMembers))
	for _, name := range opts.NonMembers {
		if key := Normalize(name); key != "" {
			nonMembers[key] = struct{}{}
		}
	}

	return &TeamResolver{
		index:      index,
		nonMembers: nonMembers,
		cache:      gocache.New(ttl, cleanup),
		logger:     logger,
	}
}

// Resolve maps a raw name to its canonical identity. It never returns an
// error: malformed input yields an UNRESOLVED outcome the caller can treat as
// fatal (strict ingestion) or skip-worthy (backtest loop).
func (r *TeamResolver) Resolve(rawName string) models.Resolution {
	trimmed := strings.TrimSpace(rawName)
	if trimmed == "" {
		return models.Resolution{RawName: rawName, Method: models.MethodUnresolved}
	}

	cacheKey := strings.ToLower(trimmed)
	if cached, ok := r.cache.Get(cacheKey); ok {
		r.hits.Add(1)
		res := cached.(models.Resolution)
		res.RawName = rawName
		return res
	}
	r.misses.Add(1)

	res := r.resolveUncached(trimmed)
	r.cache.Set(cacheKey, res, gocache.DefaultExpiration)
	res.RawName = rawName
	return res
}

func (r *TeamResolver) resolveUncached(name string) models.Resolution {
	normKey := Normalize(name)
	if normKey == "" {
		return models.Resolution{RawName: name, Method: models.MethodUnresolved}
	}

	// Non-member filter runs before any matching strategy. A known non-D1
	// entity is intentionally excluded, not a resolution failure.
	if _, ok := r.nonMembers[normKey]; ok {
		return models.Resolution{RawName: name, Method: models.MethodNonExistent}
	}

	lowered := strings.ToLower(name)

	// 1. Exact canonical match, case-insensitive.
	if canonical, ok := r.index.LookupCanonicalExact(lowered); ok {
		return models.Resolution{RawName: name, Canonical: canonical, Method: models.MethodCanonical}
	}

	// 2. Exact alias match, case-insensitive.
	if canonical, ok := r.index.LookupAliasExact(lowered); ok {
		return models.Resolution{RawName: name, Canonical: canonical, Method: models.MethodAlias}
	}

	// 3. Normalized retry of both tables.
	if canonical, ok := r.index.LookupCanonicalNormalized(normKey); ok {
		return models.Resolution{RawName: name, Canonical: canonical, Method: models.MethodNormalized}
	}
	if canonical, ok := r.index.LookupAliasNormalized(normKey); ok {
		return models.Resolution{RawName: name, Canonical: canonical, Method: models.MethodNormalized}
	}

	// 4. Mascot-stripped retry against both tables.
	if stripped, ok := StripMascot(normKey); ok {
		if canonical, found := r.index.LookupCanonicalNormalized(stripped); found {
			return models.Resolution{RawName: name, Canonical: canonical, Method: models.MethodMascotStripped}
		}
		if canonical, found := r.index.LookupAliasNormalized(stripped); found {
			return models.Resolution{RawName: name, Canonical: canonical, Method: models.MethodMascotStripped}
		}
	}

	return models.Resolution{RawName: name, Method: models.MethodUnresolved}
}

// CacheStats returns memo hit/miss counters for observability.
func (r *TeamResolver) CacheStats() (hits, misses int64) {
	return r.hits.Load(), r.misses.Load()
}

// Index exposes the underlying immutable index.
func (r *TeamResolver) Index() *AliasIndex {
	return r.index
}

package match

import (
	"context"
	"log"
)

// Chain is the production resolver: normalized exact matching first,
// then the fuzzy matcher for whatever is still unresolved. Fuzzy
// failures degrade silently — the exact results stand and unresolved
// terms stay "not found". A Chain therefore never returns an error.
type Chain struct {
	exact Matcher
	fuzzy Matcher // nil when no API key is configured
}

// NewChain builds the resolver chain. fuzzy may be nil, in which case
// only deterministic matching runs.
func NewChain(fuzzy Matcher) *Chain {
	return &Chain{exact: NormalizeMatcher{}, fuzzy: fuzzy}
}

// Match resolves the queries against the candidates. With an empty
// candidate set every query comes back unmatched.
func (c *Chain) Match(ctx context.Context, candidates []Candidate, queries []string) ([]Result, error) {
	results, _ := c.exact.Match(ctx, candidates, queries)
	if c.fuzzy == nil || len(candidates) == 0 {
		return results, nil
	}

	// Collect terms the normalizer could not place.
	var pending []string
	var pendingIdx []int
	for i, r := range results {
		if !r.Found {
			pending = append(pending, r.Query)
			pendingIdx = append(pendingIdx, i)
		}
	}
	if len(pending) == 0 {
		return results, nil
	}

	fuzzyResults, err := c.fuzzy.Match(ctx, candidates, pending)
	if err != nil {
		log.Printf("WARNING: fuzzy match degraded to exact-only: %v", err)
		return results, nil
	}
	for j, fr := range fuzzyResults {
		if fr.Found {
			results[pendingIdx[j]] = Result{Query: fr.Query, ID: fr.ID, Found: true}
		}
	}
	return results, nil
}

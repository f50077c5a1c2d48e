// Package match resolves free-text user terms ("아침약", "저녁") onto
// canonical schedule records. Matching is a strategy chain: an exact
// normalized match always wins, and only the leftovers go to the
// language-model matcher. The normalizer is the deterministic part of
// the contract — the remote matcher is best-effort and its failures
// never propagate.
package match

import (
	"context"
	"strings"
)

// Candidate is one canonical record a query term may resolve to.
type Candidate struct {
	ID   int64
	Name string
}

// Result is the resolution outcome for a single query term. When Found
// is false the ID is meaningless and the caller should treat the term
// as unresolved.
type Result struct {
	Query string
	ID    int64
	Found bool
}

// Matcher maps query terms onto candidate ids. Implementations must
// never return an ID that is not present in candidates.
type Matcher interface {
	Match(ctx context.Context, candidates []Candidate, queries []string) ([]Result, error)
}

// noiseSuffix is trailing text users append that carries no identity:
// "아침약" means the same slot as "아침".
const noiseSuffix = "약"

// Normalize strips the ignorable suffix and case/space variance from a
// term so two spellings of the same slot name compare equal.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, noiseSuffix)
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}

// NormalizeMatcher is the deterministic matcher: normalized exact
// equality, first candidate wins on duplicate names. It never errors.
type NormalizeMatcher struct{}

// Match resolves each query by normalized string equality.
func (NormalizeMatcher) Match(_ context.Context, candidates []Candidate, queries []string) ([]Result, error) {
	results := make([]Result, len(queries))
	for i, q := range queries {
		results[i] = Result{Query: q}
		nq := Normalize(q)
		if nq == "" {
			continue
		}
		for _, c := range candidates {
			if Normalize(c.Name) == nq {
				results[i].ID = c.ID
				results[i].Found = true
				break
			}
		}
	}
	return results, nil
}

// Package retrieve scope-filters registry terms and loaded translations and
// scores them against a raw term.
package retrieve

import (
	"slices"
	"sort"
	"strings"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/score"
)

const (
	// DefaultThreshold is the minimum score for a candidate to be kept
	DefaultThreshold = 0.4

	// MaxResults caps every retrieval
	MaxResults = 10
)

// Retriever produces scored candidates for a term
type Retriever struct {
	threshold float64
	limit     int
}

// NewRetriever creates a retriever. Non-positive limits fall back to MaxResults.
func NewRetriever(threshold float64, limit int) *Retriever {
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}
	return &Retriever{threshold: threshold, limit: limit}
}

// Retrieve runs with the default threshold and cap
func Retrieve(term string, terms []model.RegistryTerm, tctx model.TenantContext, translations model.Translations) []model.Candidate {
	return NewRetriever(DefaultThreshold, MaxResults).Retrieve(term, terms, tctx, translations)
}

// Retrieve returns candidates sorted by descending score, at most the configured
// limit, all scoring at or above the threshold. An empty result means the term
// is definitely new.
func (r *Retriever) Retrieve(term string, terms []model.RegistryTerm, tctx model.TenantContext, translations model.Translations) []model.Candidate {
	needle := normalize(term)
	var candidates []model.Candidate
	seen := make(map[string]bool)

	// 1. Registry pass
	for _, rt := range terms {
		if !InScope(rt, tctx) {
			continue
		}
		s := registryScore(needle, rt.Key)
		if s < r.threshold {
			continue
		}
		if seen[rt.Key] {
			continue
		}
		seen[rt.Key] = true
		candidates = append(candidates, model.Candidate{
			Key:    rt.Key,
			Score:  s,
			Source: model.SourceRegistry,
		})
	}

	// 2. Translation pass; registry keys take precedence, duplicate translation
	// keys across namespaces keep their best score
	best := make(map[string]int)
	for _, ns := range translations.Namespaces() {
		flat := translations[ns].Flatten()
		keys := make([]string, 0, len(flat))
		for k := range flat {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if seen[key] {
				continue
			}
			s := score.Similarity(needle, normalize(flat[key]))
			if s < r.threshold {
				continue
			}
			if idx, ok := best[key]; ok {
				if s > candidates[idx].Score {
					candidates[idx].Score = s
					candidates[idx].Namespace = ns
				}
				continue
			}
			best[key] = len(candidates)
			candidates = append(candidates, model.Candidate{
				Key:       key,
				Score:     s,
				Source:    model.SourceTranslation,
				Namespace: ns,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > r.limit {
		candidates = candidates[:r.limit]
	}
	return candidates
}

// InScope reports whether a registry term applies to the context. A dimension
// only restricts when both the term declares an allow-list and the context
// supplies a value for it. Modules match on any overlap.
func InScope(rt model.RegistryTerm, tctx model.TenantContext) bool {
	if rt.Scopes == nil {
		return true
	}
	sc := rt.Scopes
	if len(sc.Vertical) > 0 && tctx.Vertical != "" && !slices.Contains(sc.Vertical, tctx.Vertical) {
		return false
	}
	if len(sc.Subvertical) > 0 && tctx.Subvertical != "" && !slices.Contains(sc.Subvertical, tctx.Subvertical) {
		return false
	}
	if len(sc.Module) > 0 && len(tctx.Modules) > 0 {
		for _, m := range tctx.Modules {
			if slices.Contains(sc.Module, m) {
				return true
			}
		}
		return false
	}
	return true
}

// registryScore compares the term with the key as written and with its
// separators read as spaces, so "fire order" finds "pos.fire_order".
func registryScore(needle, key string) float64 {
	raw := normalize(key)
	s := score.Similarity(needle, raw)
	if s == score.ExactScore {
		return s
	}
	spaced := strings.Join(score.Tokenize(raw), " ")
	return max(s, score.Similarity(needle, spaced))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

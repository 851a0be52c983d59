// Package score implements the term similarity ladder used by candidate retrieval.
//
// The ladder is a deliberate short-circuit, not a weighted blend: the first
// matching tier wins, so near-duplicate phrasing always outranks strings that are
// only lexically close.
package score

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Tier names the rung of the ladder that produced a score
type Tier string

const (
	TierExact     Tier = "exact"
	TierSubstring Tier = "substring"
	TierToken     Tier = "token"
	TierEdit      Tier = "edit"
)

const (
	// ExactScore is returned for identical strings
	ExactScore = 1.0

	// SubstringScore is fixed; it does not scale with the length difference
	SubstringScore = 0.85

	tokenBase  = 0.5
	tokenRange = 0.3
)

// Match is an explainable similarity result
type Match struct {
	Score   float64 `json:"score"`
	Tier    Tier    `json:"tier"`
	Formula string  `json:"formula"`
}

// Similarity returns a score in [0,1] for two lower-cased strings
func Similarity(a, b string) float64 {
	return Compare(a, b).Score
}

// Compare scores a against b and reports which tier matched
func Compare(a, b string) Match {
	// 1. Exact equality (also covers two empty strings)
	if a == b {
		return Match{Score: ExactScore, Tier: TierExact, Formula: "a == b"}
	}

	// 2. Containment
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return Match{Score: SubstringScore, Tier: TierSubstring, Formula: "a contains b or b contains a"}
	}

	// 3. Token overlap
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if shared := intersection(tokensA, tokensB); shared > 0 {
		largest := max(len(tokensA), len(tokensB))
		return Match{
			Score:   tokenBase + tokenRange*(float64(shared)/float64(largest)),
			Tier:    TierToken,
			Formula: "0.5 + 0.3 * |shared tokens| / max(|tokens a|, |tokens b|)",
		}
	}

	// 4. Normalized edit distance
	return Match{
		Score:   editSimilarity(a, b),
		Tier:    TierEdit,
		Formula: "1 - levenshtein(a, b) / max(len(a), len(b))",
	}
}

// Tokenize splits s on whitespace, '_', '.' and '-', dropping empty tokens
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '.' || r == '-'
	})
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(s) {
		set[tok] = struct{}{}
	}
	return set
}

func intersection(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}

func editSimilarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return ExactScore
	}
	dist := levenshtein.ComputeDistance(a, b)
	sim := 1 - float64(dist)/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}

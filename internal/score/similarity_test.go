package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare_Ladder(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		tier  Tier
		score float64
	}{
		{"exact", "fire order", "fire order", TierExact, 1.0},
		{"both empty", "", "", TierExact, 1.0},
		{"substring short in long", "order", "fire order now please", TierSubstring, 0.85},
		{"substring long in short", "pos fire order", "fire order", TierSubstring, 0.85},
		{"token full overlap reordered", "order fire", "fire order", TierToken, 0.8},
		{"token partial", "fire order", "pos.fire_order.button", TierToken, 0.5 + 0.3*(2.0/4.0)},
		{"edit distance", "kitten", "sitting", TierEdit, 1 - 3.0/7.0},
		{"nothing in common", "abc", "xyz", TierEdit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compare(tt.a, tt.b)
			assert.Equal(t, tt.tier, m.Tier)
			assert.InDelta(t, tt.score, m.Score, 1e-9)
			assert.NotEmpty(t, m.Formula)
		})
	}
}

func TestSimilarity_SelfIsOne(t *testing.T) {
	for _, s := range []string{"", "a", "fire order", "pos.fire_order", "menú del día"} {
		assert.Equal(t, 1.0, Similarity(s, s), "score(%q,%q)", s, s)
	}
}

func TestSimilarity_SubstringIgnoresLengthDelta(t *testing.T) {
	short := Similarity("tab", "table")
	long := Similarity("tab", "tab management for the whole restaurant floor")
	assert.Equal(t, SubstringScore, short)
	assert.Equal(t, SubstringScore, long)
}

func TestSimilarity_TokenTierBounds(t *testing.T) {
	for _, pair := range [][2]string{
		{"guest check", "check out guest list today"},
		{"a b c d e f g h", "h zz"},
		{"table_number", "number of tables"},
	} {
		m := Compare(pair[0], pair[1])
		if m.Tier != TierToken {
			continue
		}
		assert.GreaterOrEqual(t, m.Score, 0.5)
		assert.LessOrEqual(t, m.Score, 0.8)
	}
}

func TestSimilarity_Range(t *testing.T) {
	pairs := [][2]string{
		{"", "abc"},
		{"reservation", "booking"},
		{"check-in", "checkin"},
		{"日本", "日本語"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"pos", "fire", "order", "now"}, Tokenize("pos.fire_order-now"))
	assert.Equal(t, []string{"a", "b"}, Tokenize("  a \t b  "))
	assert.Empty(t, Tokenize(" ._- "))
}

package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/validate"
)

var restaurantPOS = model.TenantContext{
	Locale:      "en",
	Vertical:    "hospitality",
	Subvertical: "restaurant",
	Modules:     []string{"pos"},
}

func newRules(t *testing.T) *RuleClassifier {
	t.Helper()
	c, err := NewRuleClassifier(model.DefaultClassifierConfig())
	require.NoError(t, err)
	return c
}

func classify(t *testing.T, term string, registry []model.RegistryTerm, translations model.Translations) model.ClassifierOutput {
	t.Helper()
	out, err := newRules(t).Classify(context.Background(), Request{
		Term:         term,
		Context:      restaurantPOS,
		Registry:     registry,
		Translations: translations,
	})
	require.NoError(t, err)
	require.NoError(t, validate.Output(out))
	return out
}

func TestClassify_NewTermEmptyInputs(t *testing.T) {
	out := classify(t, "Fire Order", nil, nil)

	assert.Equal(t, model.ActionProposeNew, out.Action)
	assert.Equal(t, 0.75, out.Confidence)
	assert.Equal(t, ReasonNoSimilarTerms, out.Reason)
	assert.Equal(t, model.LayerWorkspace, out.Layer)
	assert.Equal(t, "workspace/pos", out.Namespace)
	assert.Equal(t, []string{"pos.fire_order", "hospitality.fire_order", "fire_order"}, out.SuggestedKeys)
	assert.NotNil(t, out.MatchedCandidates)
	assert.Empty(t, out.MatchedCandidates)
}

func TestClassify_ExistingRegistryKey(t *testing.T) {
	registry := []model.RegistryTerm{{Key: "pos.fire_order", Layer: model.LayerWorkspace}}

	out := classify(t, "fire order", registry, nil)

	assert.Equal(t, model.ActionUseExisting, out.Action)
	assert.Equal(t, "pos.fire_order", out.Key)
	assert.GreaterOrEqual(t, out.Confidence, 0.85)
}

func TestClassify_IdenticalKeyIsExact(t *testing.T) {
	registry := []model.RegistryTerm{{Key: "pos.fire_order", Layer: model.LayerWorkspace}}

	out := classify(t, "pos.fire_order", registry, nil)

	assert.Equal(t, model.ActionUseExisting, out.Action)
	assert.Equal(t, ReasonExactMatch, out.Reason)
	assert.GreaterOrEqual(t, out.Confidence, 0.95)
}

func TestClassify_ZeroOverlapProposesNew(t *testing.T) {
	registry := []model.RegistryTerm{{Key: "calendar.week", Layer: model.LayerTransversal}}

	out := classify(t, "qxz", registry, nil)

	assert.Equal(t, model.ActionProposeNew, out.Action)
	assert.Equal(t, 0.75, out.Confidence)
	assert.Empty(t, out.MatchedCandidates)
}

func TestClassify_SimilarProposesNewWithFixedConfidence(t *testing.T) {
	// "order fire" vs "fire order": full token overlap, 0.8
	translations := model.Translations{
		"workspace/pos": model.Tree{"fire": "fire order"},
	}

	out := classify(t, "order fire", nil, translations)

	assert.Equal(t, model.ActionProposeNew, out.Action)
	assert.Equal(t, 0.8, out.Confidence)
	assert.Contains(t, out.Reason, `"fire"`)
	assert.Contains(t, out.Reason, "80%")
	require.Len(t, out.MatchedCandidates, 1)
	assert.Equal(t, "workspace/pos", out.Namespace)
}

func TestClassify_LowConfidenceNeedsReview(t *testing.T) {
	// token overlap 1 of 3: 0.6
	translations := model.Translations{
		"concept/hospitality": model.Tree{
			"a": "guest table",
			"b": "table service charge",
			"c": "table map",
		},
	}

	out := classify(t, "table turnover time", nil, translations)

	assert.Equal(t, model.ActionNeedsReview, out.Action)
	assert.Equal(t, ReasonLowConfidence, out.Reason)
	require.NotEmpty(t, out.MatchedCandidates)
	assert.Equal(t, out.MatchedCandidates[0].Score, out.Confidence)
	assert.Less(t, out.Confidence, 0.70)
}

func TestClassify_MatchedCandidatesCapped(t *testing.T) {
	tree := model.Tree{}
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		tree[k] = "table " + k + " extra words"
	}
	out := classify(t, "table turnover", nil, model.Translations{"concept/hospitality": tree})

	assert.LessOrEqual(t, len(out.MatchedCandidates), 5)
}

func TestClassify_EmptyTerm(t *testing.T) {
	_, err := newRules(t).Classify(context.Background(), Request{Term: "   "})
	assert.ErrorIs(t, err, ErrEmptyTerm)
}

func TestClassify_UnkeyableTerm(t *testing.T) {
	_, err := newRules(t).Classify(context.Background(), Request{Term: "¿¡", Context: restaurantPOS})
	assert.ErrorIs(t, err, ErrUnkeyableTerm)
}

func TestNewRuleClassifier_RejectsBadLadder(t *testing.T) {
	cfg := model.DefaultClassifierConfig()
	cfg.HighSimilarity = 0.99
	_, err := NewRuleClassifier(cfg)
	assert.Error(t, err)
}

type stubBackend struct {
	out model.ClassifierOutput
	err error
}

func (s stubBackend) Name() string { return "stub" }

func (s stubBackend) Classify(context.Context, Request) (model.ClassifierOutput, error) {
	return s.out, s.err
}

func TestWithValidation_RejectsMalformedOutput(t *testing.T) {
	c := WithValidation(stubBackend{out: model.ClassifierOutput{
		Action:     model.ActionProposeNew,
		Confidence: 0.9,
		Reason:     "learned reranker",
	}})

	_, err := c.Classify(context.Background(), Request{Term: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, validate.ErrInvalidOutput))
	assert.Contains(t, err.Error(), "stub backend")
}

func TestWithValidation_PassesValidOutputAndErrors(t *testing.T) {
	good := model.ClassifierOutput{Action: model.ActionUseExisting, Confidence: 0.97, Reason: "r", Key: "k"}
	out, err := WithValidation(stubBackend{out: good}).Classify(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, good, out)

	boom := errors.New("backend down")
	_, err = WithValidation(stubBackend{err: boom}).Classify(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
}

func TestWithValidation_Idempotent(t *testing.T) {
	once := WithValidation(stubBackend{})
	assert.Same(t, once, WithValidation(once))
}

func TestNewClassifier(t *testing.T) {
	c, err := NewClassifier(model.DefaultClassifierConfig())
	require.NoError(t, err)
	assert.Equal(t, "rules", c.Name())

	cfg := model.DefaultClassifierConfig()
	cfg.Backend = "neural"
	_, err = NewClassifier(cfg)
	assert.Error(t, err)
}

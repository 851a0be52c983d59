package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

func TestOutput_Valid(t *testing.T) {
	outputs := []model.ClassifierOutput{
		{Action: model.ActionUseExisting, Confidence: 1, Reason: "exact match", Key: "pos.fire_order"},
		{
			Action:        model.ActionProposeNew,
			Confidence:    0.75,
			Reason:        "no similar terms found",
			Layer:         model.LayerWorkspace,
			Namespace:     "workspace/pos",
			SuggestedKeys: []string{"pos.fire_order"},
		},
		{
			Action:     model.ActionNeedsReview,
			Confidence: 0.5,
			Reason:     "low confidence, multiple possible placements",
			MatchedCandidates: []model.Candidate{
				{Key: "pos.order", Score: 0.5, Source: model.SourceRegistry},
			},
		},
	}
	for _, out := range outputs {
		assert.NoError(t, Output(out), "action %s", out.Action)
	}
}

func TestOutput_Rejected(t *testing.T) {
	tests := []struct {
		name string
		out  model.ClassifierOutput
	}{
		{"unknown action", model.ClassifierOutput{Action: "merge", Confidence: 0.5, Reason: "x"}},
		{"confidence above one", model.ClassifierOutput{Action: model.ActionNeedsReview, Confidence: 1.5, Reason: "x"}},
		{"missing reason", model.ClassifierOutput{Action: model.ActionNeedsReview, Confidence: 0.5}},
		{"use_existing without key", model.ClassifierOutput{Action: model.ActionUseExisting, Confidence: 0.9, Reason: "x"}},
		{"propose_new without namespace", model.ClassifierOutput{
			Action: model.ActionProposeNew, Confidence: 0.8, Reason: "x",
			Layer: model.LayerConcept, SuggestedKeys: []string{"a"},
		}},
		{"propose_new without keys", model.ClassifierOutput{
			Action: model.ActionProposeNew, Confidence: 0.8, Reason: "x",
			Layer: model.LayerConcept, Namespace: "concept/x",
		}},
		{"bad layer", model.ClassifierOutput{
			Action: model.ActionProposeNew, Confidence: 0.8, Reason: "x",
			Layer: "galaxy", Namespace: "concept/x", SuggestedKeys: []string{"a"},
		}},
		{"too many candidates", model.ClassifierOutput{
			Action: model.ActionNeedsReview, Confidence: 0.5, Reason: "x",
			MatchedCandidates: make6(),
		}},
		{"candidate score out of range", model.ClassifierOutput{
			Action: model.ActionNeedsReview, Confidence: 0.5, Reason: "x",
			MatchedCandidates: []model.Candidate{{Key: "a", Score: 2, Source: model.SourceRegistry}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Output(tt.out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOutput))
		})
	}
}

func make6() []model.Candidate {
	out := make([]model.Candidate, 6)
	for i := range out {
		out[i] = model.Candidate{Key: "k", Score: 0.5, Source: model.SourceTranslation}
	}
	return out
}

func TestResolution(t *testing.T) {
	assert.NoError(t, Resolution(model.Resolution{Action: model.ResolveSkip}))
	assert.NoError(t, Resolution(model.Resolution{Action: model.ResolveCreateNew, Key: "pos.fire_order"}))
	assert.NoError(t, Resolution(model.Resolution{Action: model.ResolveUseExisting, Key: "pos.fire_order"}))

	assert.ErrorIs(t, Resolution(model.Resolution{Action: model.ResolveUseExisting}), ErrInvalidResolution)
	assert.ErrorIs(t, Resolution(model.Resolution{Action: "approve"}), ErrInvalidResolution)
}

func TestRegistry(t *testing.T) {
	ok := []model.RegistryTerm{
		{Key: "common.save", Layer: model.LayerTransversal},
		{Key: "pos.fire_order", Layer: model.LayerWorkspace},
	}
	require.NoError(t, Registry(ok))

	dup := append(ok, model.RegistryTerm{Key: "common.save", Layer: model.LayerConcept})
	assert.ErrorIs(t, Registry(dup), ErrDuplicateKey)

	assert.Error(t, Registry([]model.RegistryTerm{{Key: "", Layer: model.LayerConcept}}))
	assert.Error(t, Registry([]model.RegistryTerm{{Key: "x", Layer: "unknown"}}))
	assert.Error(t, Registry([]model.RegistryTerm{{Key: " x", Layer: model.LayerConcept}}))
}

func TestCoverage(t *testing.T) {
	catalog := model.Catalog{
		"en": {
			"transversal/common": model.Tree{
				"_metadata": map[string]any{"owner": "core"},
				"save":      "Save",
				"cancel":    "Cancel",
			},
			"workspace/pos": model.Tree{"order": map[string]any{"fire": "Fire order"}},
		},
		"es": {
			"transversal/common": model.Tree{"save": "Guardar", "cancel": "Cancelar"},
			"workspace/pos":      model.Tree{"order": map[string]any{"fire": "Marchar pedido"}},
		},
		"fr": {
			"transversal/common": model.Tree{"save": "Enregistrer", "legacy": "Ancien"},
		},
	}

	report := Coverage("en", catalog, []string{"en", "es", "fr", "de"})

	assert.Equal(t, 3, report.BaselineKeys)
	require.Len(t, report.Locales, 4)

	byLocale := make(map[string]LocaleCoverage)
	for _, l := range report.Locales {
		byLocale[l.Locale] = l
	}

	assert.Equal(t, CoverageMissing, byLocale["de"].Status)
	assert.Equal(t, CoverageComplete, byLocale["en"].Status)
	assert.Equal(t, CoverageComplete, byLocale["es"].Status)
	assert.Equal(t, 100.0, byLocale["es"].Coverage)

	fr := byLocale["fr"]
	assert.Equal(t, CoverageIncomplete, fr.Status)
	assert.Equal(t, 33.3, fr.Coverage)
	assert.Equal(t, []string{"transversal/common:cancel", "workspace/pos:order.fire"}, fr.MissingKeys)
	assert.Equal(t, []string{"transversal/common:legacy"}, fr.ExtraKeys)

	// (3 + 3 + 1 + 0) / (3 * 4)
	assert.Equal(t, 58, report.Score)
	assert.False(t, report.Complete())
}

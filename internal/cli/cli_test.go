package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

func TestContextFlags_Tenant(t *testing.T) {
	cfg := model.DefaultConfig()
	f := contextFlags{vertical: " hospitality ", modules: []string{"pos", " ", "kds"}}

	got := f.tenant(cfg)
	if got.Locale != "en" {
		t.Errorf("expected default locale en, got %q", got.Locale)
	}
	if got.Vertical != "hospitality" {
		t.Errorf("expected trimmed vertical, got %q", got.Vertical)
	}
	if len(got.Modules) != 2 || got.Modules[0] != "pos" || got.Modules[1] != "kds" {
		t.Errorf("expected modules [pos kds] in order, got %v", got.Modules)
	}

	f.locale = "es"
	if got := f.tenant(cfg); got.Locale != "es" {
		t.Errorf("expected explicit locale es, got %q", got.Locale)
	}
}

func TestDefaultKey(t *testing.T) {
	it := model.ReviewQueueItem{Result: model.ClassifierOutput{
		SuggestedKeys:     []string{"pos.comanda"},
		MatchedCandidates: []model.Candidate{{Key: "pos.fire_order", Score: 0.6}},
	}}
	if got := defaultKey(it); got != "pos.fire_order" {
		t.Errorf("expected top candidate, got %q", got)
	}

	it.Result.MatchedCandidates = nil
	if got := defaultKey(it); got != "pos.comanda" {
		t.Errorf("expected first suggested key, got %q", got)
	}
}

func TestReviewerName(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Review.Reviewer = "ana"

	reviewer = ""
	if got := reviewerName(cfg); got != "ana" {
		t.Errorf("expected configured reviewer, got %q", got)
	}

	reviewer = "bob"
	defer func() { reviewer = "" }()
	if got := reviewerName(cfg); got != "bob" {
		t.Errorf("expected flag reviewer, got %q", got)
	}
}

func TestRenderDecision(t *testing.T) {
	out := model.ClassifierOutput{
		Action:        model.ActionProposeNew,
		Confidence:    0.75,
		Reason:        "no similar terms found",
		Layer:         model.LayerWorkspace,
		Namespace:     "workspace/pos",
		SuggestedKeys: []string{"pos.comanda", "hospitality.comanda", "comanda"},
	}
	text := renderDecision("Comanda", model.TenantContext{Locale: "es", Modules: []string{"pos"}}, out)
	for _, want := range []string{"Comanda", "propose_new", "workspace/pos", "hospitality.comanda"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected rendered decision to contain %q", want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	if !strings.HasPrefix(buf.String(), "termgov ") {
		t.Errorf("unexpected version output %q", buf.String())
	}
}

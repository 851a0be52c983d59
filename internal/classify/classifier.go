// Package classify decides whether a raw UI term maps to an existing key,
// should become a new key, or needs a human decision.
package classify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/infer"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/retrieve"
)

var (
	// ErrEmptyTerm is returned for blank input
	ErrEmptyTerm = errors.New("term is empty")

	// ErrUnkeyableTerm is returned when no key can be derived from the term
	ErrUnkeyableTerm = errors.New("term has no characters usable in a key")
)

// Reasons emitted by the rule ladder
const (
	ReasonExactMatch     = "exact match"
	ReasonNoSimilarTerms = "no similar terms found"
	ReasonHighSimilarity = "high similarity match"
	ReasonLowConfidence  = "low confidence, multiple possible placements"
)

// Request is the input to any classifier backend
type Request struct {
	Term         string
	Context      model.TenantContext
	Registry     []model.RegistryTerm
	Translations model.Translations
}

// TermClassifier decides what to do with a raw term. Implementations other than
// the rule ladder must be wrapped with WithValidation before their output is trusted.
type TermClassifier interface {
	// Name identifies the backend
	Name() string

	// Classify produces a decision for the request
	Classify(ctx context.Context, req Request) (model.ClassifierOutput, error)
}

// RuleClassifier is the deterministic, explainable decision ladder.
// It never touches the review queue; enqueueing is an explicit caller action.
type RuleClassifier struct {
	cfg       model.ClassifierConfig
	retriever *retrieve.Retriever
}

// NewRuleClassifier creates a rule classifier with validated ladder constants
func NewRuleClassifier(cfg model.ClassifierConfig) (*RuleClassifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RuleClassifier{
		cfg:       cfg,
		retriever: retrieve.NewRetriever(cfg.RetrievalThreshold, cfg.MaxCandidates),
	}, nil
}

// Name returns the backend name
func (c *RuleClassifier) Name() string {
	return "rules"
}

// Classify applies the ladder; the first matching rule wins and thresholds are inclusive
func (c *RuleClassifier) Classify(_ context.Context, req Request) (model.ClassifierOutput, error) {
	term := strings.TrimSpace(req.Term)
	if term == "" {
		return model.ClassifierOutput{}, ErrEmptyTerm
	}

	candidates := c.retriever.Retrieve(term, req.Registry, req.Context, req.Translations)

	// 1. Near-certain match
	if len(candidates) > 0 && candidates[0].Score >= c.cfg.ExactMatch {
		return useExisting(candidates[0], ReasonExactMatch), nil
	}

	// 2. Nothing similar at all: definitely new
	if len(candidates) == 0 {
		return c.proposeNew(term, req.Context, c.cfg.NoCandidatesConfidence, ReasonNoSimilarTerms, []model.Candidate{})
	}

	top := candidates[0]
	matched := c.top(candidates)

	// 3. High similarity
	if top.Score >= c.cfg.HighSimilarity {
		return useExisting(top, ReasonHighSimilarity), nil
	}

	// 4. Similar but distinct. Confidence is fixed, not derived from top.Score.
	if top.Score >= c.cfg.ProposeThreshold {
		reason := fmt.Sprintf("similar to %q (%d%% match) but distinct enough for a new key", top.Key, percent(top.Score))
		return c.proposeNew(term, req.Context, c.cfg.ProposeConfidence, reason, matched)
	}

	// 5. Ambiguous
	return model.ClassifierOutput{
		Action:            model.ActionNeedsReview,
		Confidence:        top.Score,
		Reason:            ReasonLowConfidence,
		MatchedCandidates: matched,
	}, nil
}

func (c *RuleClassifier) proposeNew(term string, tctx model.TenantContext, confidence float64, reason string, matched []model.Candidate) (model.ClassifierOutput, error) {
	keys := infer.KeyOptions(term, tctx)
	if len(keys) == 0 {
		return model.ClassifierOutput{}, fmt.Errorf("%w: %q", ErrUnkeyableTerm, term)
	}
	layer := infer.Layer(term, tctx)
	return model.ClassifierOutput{
		Action:            model.ActionProposeNew,
		Confidence:        confidence,
		Reason:            reason,
		Layer:             layer,
		Namespace:         infer.Namespace(layer, tctx),
		SuggestedKeys:     keys,
		MatchedCandidates: matched,
	}, nil
}

func (c *RuleClassifier) top(candidates []model.Candidate) []model.Candidate {
	n := min(len(candidates), c.cfg.MaxMatched)
	return append([]model.Candidate(nil), candidates[:n]...)
}

func useExisting(cand model.Candidate, reason string) model.ClassifierOutput {
	return model.ClassifierOutput{
		Action:     model.ActionUseExisting,
		Confidence: cand.Score,
		Reason:     reason,
		Key:        cand.Key,
	}
}

func percent(score float64) int {
	return int(math.Round(score * 100))
}

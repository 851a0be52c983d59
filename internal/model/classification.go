package model

// Action is the decision a classifier takes for a raw term
type Action string

const (
	ActionUseExisting Action = "use_existing" // Term already has a canonical key
	ActionProposeNew  Action = "propose_new"  // Term should become a new key
	ActionNeedsReview Action = "needs_review" // Ambiguous, a human decides
)

// ClassifierOutput is the contract boundary between any classifier backend and
// the rest of the system. Action-specific fields:
//   - use_existing requires Key
//   - propose_new requires Layer, Namespace and SuggestedKeys
type ClassifierOutput struct {
	Action            Action      `json:"action" validate:"required,oneof=use_existing propose_new needs_review"`
	Confidence        float64     `json:"confidence" validate:"gte=0,lte=1"`
	Reason            string      `json:"reason" validate:"required"`
	Key               string      `json:"key,omitempty"`
	Layer             Layer       `json:"layer,omitempty" validate:"omitempty,oneof=transversal concept workspace"`
	Namespace         string      `json:"namespace,omitempty"`
	SuggestedKeys     []string    `json:"suggestedKeys,omitempty" validate:"dive,required"`
	MatchedCandidates []Candidate `json:"matchedCandidates,omitempty" validate:"max=5,dive"`
}

// TopCandidate returns the best matched candidate, if the output carries any
func (o ClassifierOutput) TopCandidate() (Candidate, bool) {
	if len(o.MatchedCandidates) == 0 {
		return Candidate{}, false
	}
	return o.MatchedCandidates[0], true
}

package model

// CandidateSource tells where a candidate key was found
type CandidateSource string

const (
	SourceRegistry    CandidateSource = "registry"
	SourceTranslation CandidateSource = "translation"
)

// Candidate is a possible match for a raw term. Produced per retrieval, never stored
// except as part of a classifier output snapshot.
type Candidate struct {
	Key       string          `json:"key" validate:"required"`
	Score     float64         `json:"score" validate:"gte=0,lte=1"`
	Source    CandidateSource `json:"source" validate:"oneof=registry translation"`
	Namespace string          `json:"namespace,omitempty"` // Set for translation candidates
}

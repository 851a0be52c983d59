package model

import "time"

// ReviewStatus is the state of a queued review item
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
	StatusMerged   ReviewStatus = "merged" // Decision written into registry/translations
)

// Valid reports whether s is a known status
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusMerged:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the review state machine allows from -> to.
// Only pending->approved, pending->rejected and approved->merged exist.
func CanTransition(from, to ReviewStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusMerged
	default:
		return false
	}
}

// ResolutionAction is what a human reviewer decided
type ResolutionAction string

const (
	ResolveUseExisting ResolutionAction = "use_existing"
	ResolveCreateNew   ResolutionAction = "create_new"
	ResolveSkip        ResolutionAction = "skip"
)

// Resolution records a reviewer decision
type Resolution struct {
	Action    ResolutionAction `json:"action" validate:"required,oneof=use_existing create_new skip"`
	Key       string           `json:"key,omitempty" validate:"required_if=Action use_existing"`
	Namespace string           `json:"namespace,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// ReviewQueueItem is one ambiguous decision awaiting (or past) human review
type ReviewQueueItem struct {
	ID         string           `json:"id"`
	Term       string           `json:"term"`
	Context    TenantContext    `json:"context"`
	Result     ClassifierOutput `json:"result"`
	Timestamp  time.Time        `json:"timestamp"`
	Status     ReviewStatus     `json:"status"`
	ReviewedAt *time.Time       `json:"reviewedAt,omitempty"`
	ReviewedBy string           `json:"reviewedBy,omitempty"`
	Resolution *Resolution      `json:"resolution,omitempty"`
}

// ReviewQueue is the durable document backing the file store
type ReviewQueue struct {
	Version string            `json:"version"`
	Items   []ReviewQueueItem `json:"items"`
}

// ListOptions filters a queue listing. Zero values mean no filter / no limit.
type ListOptions struct {
	Status ReviewStatus
	Limit  int
}

// QueueStats counts items per status
type QueueStats struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Merged   int `json:"merged"`
	Total    int `json:"total"`
}

// Add counts one item with the given status
func (s *QueueStats) Add(status ReviewStatus) {
	switch status {
	case StatusPending:
		s.Pending++
	case StatusApproved:
		s.Approved++
	case StatusRejected:
		s.Rejected++
	case StatusMerged:
		s.Merged++
	}
	s.Total++
}

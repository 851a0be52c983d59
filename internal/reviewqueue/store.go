// Package reviewqueue persists ambiguous classification decisions for human
// review. Items move pending -> approved|rejected, and approved -> merged once
// the decision has been written into the registry or translations.
package reviewqueue

import (
	"context"
	"sort"
	"time"

	"golang.org/x/text/cases"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/validate"
)

// DocumentVersion is written into new queue documents
const DocumentVersion = "1.0"

// ErrInvalidResolution is returned when a resolution does not validate
var ErrInvalidResolution = validate.ErrInvalidResolution

// Store is the review queue contract shared by every backend.
// Resolve and MarkMerged report false (with a nil error) when the item is
// missing or in the wrong state; errors are reserved for I/O and invalid input.
type Store interface {
	// Append enqueues a decision unless a pending item already exists for the
	// same case-insensitive term, vertical and subvertical; either way the
	// pending item's id is returned.
	Append(ctx context.Context, term string, tctx model.TenantContext, result model.ClassifierOutput, ts time.Time) (string, error)

	// List returns items newest first
	List(ctx context.Context, opts model.ListOptions) ([]model.ReviewQueueItem, error)

	// Get returns one item
	Get(ctx context.Context, id string) (model.ReviewQueueItem, bool, error)

	// Resolve records a human decision on a pending item
	Resolve(ctx context.Context, id string, res model.Resolution, reviewer string) (bool, error)

	// MarkMerged records that an approved decision was applied externally
	MarkMerged(ctx context.Context, id string) (bool, error)

	// Stats counts items per status
	Stats(ctx context.Context) (model.QueueStats, error)
}

var folder = cases.Fold()

// FoldTerm normalizes a term for duplicate detection
func FoldTerm(term string) string {
	return folder.String(term)
}

// SameSubject reports whether item is about the same term in the same vertical/subvertical
func SameSubject(item model.ReviewQueueItem, term string, tctx model.TenantContext) bool {
	return FoldTerm(item.Term) == FoldTerm(term) &&
		item.Context.Vertical == tctx.Vertical &&
		item.Context.Subvertical == tctx.Subvertical
}

// ResolvedStatus maps a resolution to the status it produces
func ResolvedStatus(res model.Resolution) model.ReviewStatus {
	if res.Action == model.ResolveSkip {
		return model.StatusRejected
	}
	return model.StatusApproved
}

// Filter applies status filtering, newest-first ordering and the limit
func Filter(items []model.ReviewQueueItem, opts model.ListOptions) []model.ReviewQueueItem {
	out := make([]model.ReviewQueueItem, 0, len(items))
	for _, it := range items {
		if opts.Status != "" && it.Status != opts.Status {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

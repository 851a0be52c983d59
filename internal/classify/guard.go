package classify

import (
	"context"
	"fmt"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/validate"
)

// validated rejects any output that does not satisfy the ClassifierOutput contract
type validated struct {
	next TermClassifier
}

// WithValidation wraps a backend so every output is schema-checked at the boundary
func WithValidation(next TermClassifier) TermClassifier {
	if _, ok := next.(*validated); ok {
		return next
	}
	return &validated{next: next}
}

func (v *validated) Name() string {
	return v.next.Name()
}

func (v *validated) Classify(ctx context.Context, req Request) (model.ClassifierOutput, error) {
	out, err := v.next.Classify(ctx, req)
	if err != nil {
		return model.ClassifierOutput{}, err
	}
	if err := validate.Output(out); err != nil {
		return model.ClassifierOutput{}, fmt.Errorf("%s backend: %w", v.next.Name(), err)
	}
	return out, nil
}

// Package validate holds the boundary checks applied to classifier outputs,
// review resolutions and registry documents, plus the locale coverage report.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

// ErrInvalidOutput is returned when a classifier output does not match the contract
var ErrInvalidOutput = errors.New("invalid classifier output")

// ErrInvalidResolution is returned for a malformed reviewer resolution
var ErrInvalidResolution = errors.New("invalid resolution")

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func instance() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// Output checks a classifier output against the contract. Outputs missing
// action-specific fields are rejected, never repaired.
func Output(out model.ClassifierOutput) error {
	if err := instance().Struct(out); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOutput, describe(err))
	}

	var missing []string
	switch out.Action {
	case model.ActionUseExisting:
		if strings.TrimSpace(out.Key) == "" {
			missing = append(missing, "key")
		}
	case model.ActionProposeNew:
		if out.Layer == "" {
			missing = append(missing, "layer")
		}
		if strings.TrimSpace(out.Namespace) == "" {
			missing = append(missing, "namespace")
		}
		if len(out.SuggestedKeys) == 0 {
			missing = append(missing, "suggestedKeys")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidOutput, out.Action, strings.Join(missing, ", "))
	}
	return nil
}

// Resolution checks a reviewer resolution
func Resolution(res model.Resolution) error {
	if err := instance().Struct(res); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidResolution, describe(err))
	}
	return nil
}

// describe flattens validator field errors into one readable line
func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

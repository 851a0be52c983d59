package classify

import (
	"fmt"
	"strings"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

// NewClassifier creates the configured backend, always behind output validation
func NewClassifier(cfg model.ClassifierConfig) (TermClassifier, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))

	switch backend {
	case "rules", "":
		c, err := NewRuleClassifier(cfg)
		if err != nil {
			return nil, err
		}
		return WithValidation(c), nil

	default:
		return nil, fmt.Errorf("unknown classifier backend: %s (supported: rules)", cfg.Backend)
	}
}

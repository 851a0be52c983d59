package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

// ErrDuplicateKey is returned when two registry terms share a key
var ErrDuplicateKey = errors.New("duplicate registry key")

// Registry checks every term's shape and global key uniqueness
func Registry(terms []model.RegistryTerm) error {
	seen := make(map[string]int, len(terms))
	var errs []error
	for i, rt := range terms {
		if err := instance().Struct(rt); err != nil {
			errs = append(errs, fmt.Errorf("term %d (%q): %s", i, rt.Key, describe(err)))
			continue
		}
		if strings.TrimSpace(rt.Key) != rt.Key {
			errs = append(errs, fmt.Errorf("term %d (%q): key has surrounding whitespace", i, rt.Key))
		}
		if first, dup := seen[rt.Key]; dup {
			errs = append(errs, fmt.Errorf("%w: %q at terms %d and %d", ErrDuplicateKey, rt.Key, first, i))
			continue
		}
		seen[rt.Key] = i
	}
	return errors.Join(errs...)
}

// Package loader reads and writes the on-disk registry and translation
// documents. The classification core only ever sees the in-memory values.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/validate"
)

// RegistryVersion is written when saving a registry that has none
const RegistryVersion = "1.0"

// ErrDuplicateKey is returned when a registry holds the same key twice
var ErrDuplicateKey = validate.ErrDuplicateKey

// LoadRegistry reads a registry document. Files ending in .json are decoded as
// JSON, anything else as YAML. Both the {version, terms} document and a bare
// list of terms are accepted. The result is validated before it is returned.
func LoadRegistry(path string) (*model.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	reg, err := decodeRegistry(data, isJSON(path))
	if err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	if err := validate.Registry(reg.Terms); err != nil {
		return nil, fmt.Errorf("invalid registry %s: %w", path, err)
	}
	return reg, nil
}

// SaveRegistry validates and writes the registry, replacing the file atomically
func SaveRegistry(path string, reg *model.Registry) error {
	if reg == nil {
		return fmt.Errorf("registry is nil")
	}
	if err := validate.Registry(reg.Terms); err != nil {
		return fmt.Errorf("refusing to save invalid registry: %w", err)
	}
	out := *reg
	if out.Version == "" {
		out.Version = RegistryVersion
	}
	if out.Terms == nil {
		out.Terms = []model.RegistryTerm{}
	}

	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(out, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	return writeAtomic(path, data)
}

func decodeRegistry(data []byte, asJSON bool) (*model.Registry, error) {
	unmarshal := yaml.Unmarshal
	if asJSON {
		unmarshal = json.Unmarshal
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return &model.Registry{Version: RegistryVersion, Terms: []model.RegistryTerm{}}, nil
	}

	// A leading '[' or '-' is a bare list of terms
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "-") {
		var terms []model.RegistryTerm
		if err := unmarshal(data, &terms); err != nil {
			return nil, err
		}
		return &model.Registry{Version: RegistryVersion, Terms: terms}, nil
	}

	var reg model.Registry
	if err := unmarshal(data, &reg); err != nil {
		return nil, err
	}
	if reg.Terms == nil {
		reg.Terms = []model.RegistryTerm{}
	}
	return &reg, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

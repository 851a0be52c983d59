package model

// Layer is the level of the vocabulary hierarchy a key lives in
type Layer string

const (
	LayerTransversal Layer = "transversal" // Universal UI vocabulary (save, cancel, ...)
	LayerConcept     Layer = "concept"     // Vertical-specific business concepts
	LayerWorkspace   Layer = "workspace"   // Module-specific wording
)

// Valid reports whether l is one of the known layers
func (l Layer) Valid() bool {
	switch l {
	case LayerTransversal, LayerConcept, LayerWorkspace:
		return true
	default:
		return false
	}
}

// Scopes restricts where a registry term applies. A nil or empty list never
// restricts on that dimension.
type Scopes struct {
	Vertical    []string `json:"vertical,omitempty" yaml:"vertical,omitempty"`
	Subvertical []string `json:"subvertical,omitempty" yaml:"subvertical,omitempty"`
	Module      []string `json:"module,omitempty" yaml:"module,omitempty"`
}

// RegistryTerm is a governed vocabulary entry
type RegistryTerm struct {
	Key         string  `json:"key" yaml:"key" validate:"required"` // Globally unique dotted id
	Layer       Layer   `json:"layer" yaml:"layer" validate:"required,oneof=transversal concept workspace"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Scopes      *Scopes `json:"scopes,omitempty" yaml:"scopes,omitempty"`
}

// Registry is the on-disk document holding the governed terms
type Registry struct {
	Version string         `json:"version" yaml:"version"`
	Terms   []RegistryTerm `json:"terms" yaml:"terms"`
}

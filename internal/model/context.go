package model

import "strings"

// TenantContext identifies the product surface a term or translation applies to.
// It is treated as immutable once built.
type TenantContext struct {
	Locale      string   `json:"locale" yaml:"locale"`
	Vertical    string   `json:"vertical,omitempty" yaml:"vertical,omitempty"`
	Subvertical string   `json:"subvertical,omitempty" yaml:"subvertical,omitempty"`
	Modules     []string `json:"modules,omitempty" yaml:"modules,omitempty"` // Declaration order matters
}

// HasModules reports whether the context declares at least one module
func (c TenantContext) HasModules() bool {
	return len(c.Modules) > 0
}

// FirstModule returns the first declared module, if any
func (c TenantContext) FirstModule() (string, bool) {
	if len(c.Modules) == 0 {
		return "", false
	}
	return c.Modules[0], true
}

// Clone returns a copy that does not share the Modules slice
func (c TenantContext) Clone() TenantContext {
	out := c
	if c.Modules != nil {
		out.Modules = append([]string(nil), c.Modules...)
	}
	return out
}

// String renders the context for logs and CLI headers
func (c TenantContext) String() string {
	parts := []string{"locale=" + c.Locale}
	if c.Vertical != "" {
		parts = append(parts, "vertical="+c.Vertical)
	}
	if c.Subvertical != "" {
		parts = append(parts, "subvertical="+c.Subvertical)
	}
	if len(c.Modules) > 0 {
		parts = append(parts, "modules="+strings.Join(c.Modules, ","))
	}
	return strings.Join(parts, " ")
}

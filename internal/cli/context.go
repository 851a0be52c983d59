package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

// contextFlags holds the tenant context flags shared by several commands
type contextFlags struct {
	locale      string
	vertical    string
	subvertical string
	modules     []string
}

// bind registers --locale, --vertical, --subvertical and --module on cmd
func (f *contextFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.locale, "locale", "l", "", "locale (default: locale.default from config)")
	cmd.Flags().StringVar(&f.vertical, "vertical", "", "business vertical, e.g. hospitality")
	cmd.Flags().StringVar(&f.subvertical, "subvertical", "", "sub-vertical, e.g. restaurant")
	// StringArray keeps declaration order and does not split on commas
	cmd.Flags().StringArrayVarP(&f.modules, "module", "m", nil, "enabled module (repeatable, first wins)")
}

// tenant builds the context, defaulting the locale from config
func (f *contextFlags) tenant(cfg *model.Config) model.TenantContext {
	locale := strings.TrimSpace(f.locale)
	if locale == "" {
		locale = cfg.Locale.Default
	}
	var modules []string
	for _, m := range f.modules {
		if m = strings.TrimSpace(m); m != "" {
			modules = append(modules, m)
		}
	}
	return model.TenantContext{
		Locale:      locale,
		Vertical:    strings.TrimSpace(f.vertical),
		Subvertical: strings.TrimSpace(f.subvertical),
		Modules:     modules,
	}
}

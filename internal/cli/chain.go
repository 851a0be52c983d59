package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/fallback"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

var chainCtx contextFlags

// chainCmd represents the chain command
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Inspect the translation fallback chain for a context",
	Long: `The fallback chain lists the namespaces consulted for a context, most
specific first:

  concept/<vertical>/<subvertical>
  concept/<vertical>
  workspace/<module>           (one per module, declaration order)
  transversal/tasks, transversal/calendar, transversal/common`,
}

var chainShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the chain and whether each namespace is loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, tctx, tr, err := chainInputs(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = s.close() }()

		report := fallback.ValidateChain(tctx, tr)
		w := cmd.OutOrStdout()
		if s.wantJSON() {
			return printJSON(w, report)
		}
		missing := make(map[string]bool, len(report.Missing))
		for _, ns := range report.Missing {
			missing[ns] = true
		}
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render("Chain for"), dimStyle.Render(tctx.String()))
		for i, ns := range report.Chain {
			mark := okStyle.Render("loaded")
			if missing[ns] {
				mark = warnStyle.Render("missing")
			}
			fmt.Fprintf(w, "  %d. %-40s %s\n", i+1, ns, mark)
		}
		return nil
	},
}

var chainValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Fail when any chain namespace has no loaded translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, tctx, tr, err := chainInputs(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = s.close() }()

		report := fallback.ValidateChain(tctx, tr)
		w := cmd.OutOrStdout()
		if s.wantJSON() {
			if err := printJSON(w, report); err != nil {
				return err
			}
		} else if report.Valid() {
			fmt.Fprintf(w, "%s all %d namespaces loaded for %s\n", okStyle.Render("✓"), len(report.Chain), tctx)
		} else {
			for _, ns := range report.Missing {
				fmt.Fprintf(w, "%s missing namespace %s\n", errStyle.Render("✗"), ns)
			}
		}
		if !report.Valid() {
			return fmt.Errorf("%d of %d chain namespaces missing", len(report.Missing), len(report.Chain))
		}
		return nil
	},
}

var chainKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List every key reachable from the chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, tctx, tr, err := chainInputs(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = s.close() }()

		keys := fallback.AllKeys(tctx, tr)
		w := cmd.OutOrStdout()
		if s.wantJSON() {
			return printJSON(w, keys)
		}
		for _, k := range keys {
			fmt.Fprintln(w, k)
		}
		return nil
	},
}

// chainInputs loads the context locale's translations for a chain subcommand
func chainInputs(cmd *cobra.Command) (*session, model.TenantContext, model.Translations, error) {
	s, err := openSession(cmd, false)
	if err != nil {
		return nil, model.TenantContext{}, nil, err
	}
	tctx := chainCtx.tenant(s.cfg)
	tr, err := s.pipeline.TranslationLoader().Load(cmd.Context(), tctx.Locale)
	if err != nil {
		_ = s.close()
		return nil, model.TenantContext{}, nil, fmt.Errorf("load translations: %w", err)
	}
	return s, tctx, tr, nil
}

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.AddCommand(chainShowCmd)
	chainCmd.AddCommand(chainValidateCmd)
	chainCmd.AddCommand(chainKeysCmd)

	for _, c := range []*cobra.Command{chainShowCmd, chainValidateCmd, chainKeysCmd} {
		chainCtx.bind(c)
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/validate"
)

var (
	coverageBaseline string
	coverageRequired []string
	coverageStrict   bool
	coverageShowKeys int
)

// coverageCmd represents the coverage command
var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Compare every locale's translation keys with a baseline locale",
	Long: `Coverage flattens every namespace of the baseline locale (ignoring
_metadata) and reports, per locale, how many of those keys exist, which are
missing and which exist only in that locale.

Example:
  termgov coverage --baseline en
  termgov coverage --baseline en --require es --require pt-BR --strict`,
	RunE: runCoverage,
}

func init() {
	rootCmd.AddCommand(coverageCmd)

	coverageCmd.Flags().StringVar(&coverageBaseline, "baseline", "", "baseline locale (default: locale.default from config)")
	coverageCmd.Flags().StringArrayVar(&coverageRequired, "require", nil, "locale that must exist (repeatable)")
	coverageCmd.Flags().BoolVar(&coverageStrict, "strict", false, "exit with an error unless every locale is complete")
	coverageCmd.Flags().IntVar(&coverageShowKeys, "show-missing", 10, "missing keys to print per locale (0 hides them)")
}

func runCoverage(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	baseline := coverageBaseline
	if baseline == "" {
		baseline = s.cfg.Locale.Default
	}
	catalog, err := s.pipeline.TranslationLoader().LoadCatalog(cmd.Context())
	if err != nil {
		return err
	}
	if _, ok := catalog[baseline]; !ok {
		return fmt.Errorf("baseline locale %q has no translations under %s", baseline, s.cfg.Paths.Translations)
	}

	report := validate.Coverage(baseline, catalog, coverageRequired)
	w := cmd.OutOrStdout()
	if s.wantJSON() {
		if err := printJSON(w, report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "%s %s (%d keys)\n\n", titleStyle.Render("Baseline:"), baseline, report.BaselineKeys)
		for _, lc := range report.Locales {
			switch lc.Status {
			case validate.CoverageMissing:
				fmt.Fprintf(w, "%s %-8s %s\n", errStyle.Render("✗"), lc.Locale, errStyle.Render("missing"))
				continue
			case validate.CoverageComplete:
				fmt.Fprintf(w, "%s %-8s %5.1f%%  %d keys\n", okStyle.Render("✓"), lc.Locale, lc.Coverage, lc.Keys)
			default:
				fmt.Fprintf(w, "%s %-8s %5.1f%%  %d keys, %d missing\n", warnStyle.Render("!"), lc.Locale, lc.Coverage, lc.Keys, len(lc.MissingKeys))
			}
			for i, k := range lc.MissingKeys {
				if i >= coverageShowKeys {
					fmt.Fprintf(w, "      %s\n", dimStyle.Render(fmt.Sprintf("... %d more", len(lc.MissingKeys)-i)))
					break
				}
				fmt.Fprintf(w, "      - %s\n", dimStyle.Render(k))
			}
		}
		fmt.Fprintf(w, "\n%s %d/100\n", titleStyle.Render("Score:"), report.Score)
	}

	if coverageStrict && !report.Complete() {
		return fmt.Errorf("translation coverage incomplete (score %d/100)", report.Score)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/fallback"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/loader"
)

var (
	resolveCtx   contextFlags
	resolveWatch bool
	resolveAll   bool
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [key...]",
	Short: "Resolve translation keys to display strings for a context",
	Long: `Resolve walks the fallback chain for the context (subvertical, vertical,
modules, then universal namespaces) in the context locale, then in the default
locale, and prints the first string found. Unknown keys resolve to themselves.

With --all every key reachable from the chain is resolved. With --watch the
translation directory is watched and the keys are re-resolved after each
change until interrupted.

Example:
  termgov resolve order.fire actions.save -l es --vertical hospitality --module pos
  termgov resolve --all -l es --vertical hospitality --json
  termgov resolve order.fire -l es --module pos --watch`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCtx.bind(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveWatch, "watch", false, "re-resolve when translation files change")
	resolveCmd.Flags().BoolVar(&resolveAll, "all", false, "resolve every key reachable from the chain")
}

func runResolve(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !resolveAll {
		return fmt.Errorf("at least one key is required (or use --all)")
	}
	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	ctx := cmd.Context()
	resolver, err := s.pipeline.NewResolver(ctx)
	if err != nil {
		return err
	}
	tctx := resolveCtx.tenant(s.cfg)

	w := cmd.OutOrStdout()
	keys := func() []string {
		if !resolveAll {
			return args
		}
		tr, _ := resolver.Translations(tctx.Locale)
		return fallback.AllKeys(tctx, tr)
	}
	if err := printSnapshot(w, resolver.Snapshot(keys(), tctx), s.wantJSON()); err != nil {
		return err
	}
	if !resolveWatch {
		return nil
	}

	tl := s.pipeline.TranslationLoader()
	fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("Watching "+tl.Root()+" (Ctrl+C to stop)"))
	return loader.Watch(ctx, tl.Root(), s.logger, func(locale string) {
		if err := reloadLocale(ctx, tl, resolver, locale); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s reload %s: %v\n", errStyle.Render("✗"), locale, err)
			return
		}
		fmt.Fprintf(w, "\n%s %s reloaded\n", okStyle.Render("↻"), locale)
		_ = printSnapshot(w, resolver.Snapshot(keys(), tctx), s.wantJSON())
	})
}

// reloadLocale reads one locale from disk and swaps it into the resolver
func reloadLocale(ctx context.Context, tl *loader.TranslationLoader, r *fallback.Resolver, locale string) error {
	tr, err := tl.Load(ctx, locale)
	if err != nil {
		return err
	}
	r.SetTranslations(locale, tr)
	return nil
}

func printSnapshot(w io.Writer, snap fallback.Snapshot, asJSON bool) error {
	if asJSON {
		return printJSON(w, snap)
	}
	keys := make([]string, 0, len(snap.Values))
	for k := range snap.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := snap.Values[k]
		if v == k {
			fmt.Fprintf(w, "%-40s %s\n", keyStyle.Render(k), warnStyle.Render("(unresolved)"))
			continue
		}
		fmt.Fprintf(w, "%-40s %s\n", keyStyle.Render(k), v)
	}
	return nil
}

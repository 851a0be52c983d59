package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

var (
	reviewStatus   string
	reviewLimit    int
	reviewAction   string
	reviewKey      string
	reviewNS       string
	reviewNotes    string
	reviewer       string
	reviewApplyNow bool
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Work the human review queue",
	Long: `Ambiguous classifications wait in the review queue until a reviewer
decides. Items move pending -> approved | rejected, and approved -> merged once
the decision has been applied to the registry.

The queue is a JSON document (review.backend: file) or a SQLite database
(review.backend: sqlite) at paths.review_queue.`,
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queue items, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer func() { _ = s.close() }()

		status := model.ReviewStatus(reviewStatus)
		if status != "" && !status.Valid() {
			return fmt.Errorf("unknown status %q", reviewStatus)
		}
		items, err := s.pipeline.Store().List(cmd.Context(), model.ListOptions{Status: status, Limit: reviewLimit})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if s.wantJSON() {
			return printJSON(w, items)
		}
		if len(items) == 0 {
			fmt.Fprintln(w, dimStyle.Render("Review queue is empty."))
			return nil
		}
		for _, it := range items {
			fmt.Fprintln(w, renderItemRow(it))
		}
		return nil
	},
}

var reviewShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one queue item in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer func() { _ = s.close() }()

		item, found, err := s.pipeline.Store().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("review item %s not found", args[0])
		}
		if s.wantJSON() {
			return printJSON(cmd.OutOrStdout(), item)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderItem(item))
		return nil
	},
}

var reviewResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Record a decision on a pending item",
	Long: `Resolve records a reviewer decision on a pending item:

  use_existing   the term maps to --key (required); item becomes approved
  create_new     a new key is created on apply; item becomes approved
  skip           nothing to do; item becomes rejected

Example:
  termgov review resolve 7f9c... --action use_existing --key pos.fire_order
  termgov review resolve 7f9c... --action create_new --key restaurant.comanda --apply`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer func() { _ = s.close() }()

		res := model.Resolution{
			Action:    model.ResolutionAction(reviewAction),
			Key:       strings.TrimSpace(reviewKey),
			Namespace: strings.TrimSpace(reviewNS),
			Notes:     reviewNotes,
		}
		who := reviewerName(s.cfg)
		ok, err := s.pipeline.Store().Resolve(cmd.Context(), args[0], res, who)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("review item %s is missing or not pending", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s resolved as %s by %s\n", okStyle.Render("✓"), args[0], res.Action, who)

		if reviewApplyNow && res.Action != model.ResolveSkip {
			return applyItem(cmd, s, args[0])
		}
		return nil
	},
}

var reviewMergeCmd = &cobra.Command{
	Use:   "merge <id>",
	Short: "Mark an approved item as merged without touching the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer func() { _ = s.close() }()

		ok, err := s.pipeline.Store().MarkMerged(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("review item %s is missing or not approved", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s merged\n", okStyle.Render("✓"), args[0])
		return nil
	},
}

var reviewApplyCmd = &cobra.Command{
	Use:   "apply <id>",
	Short: "Write an approved decision into the registry and mark it merged",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer func() { _ = s.close() }()
		return applyItem(cmd, s, args[0])
	},
}

var reviewStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count queue items per status",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer func() { _ = s.close() }()

		stats, err := s.pipeline.Store().Stats(cmd.Context())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if s.wantJSON() {
			return printJSON(w, stats)
		}
		fmt.Fprintf(w, "  %-9s %d\n", statusStyle(model.StatusPending).Render("pending"), stats.Pending)
		fmt.Fprintf(w, "  %-9s %d\n", statusStyle(model.StatusApproved).Render("approved"), stats.Approved)
		fmt.Fprintf(w, "  %-9s %d\n", statusStyle(model.StatusRejected).Render("rejected"), stats.Rejected)
		fmt.Fprintf(w, "  %-9s %d\n", statusStyle(model.StatusMerged).Render("merged"), stats.Merged)
		fmt.Fprintf(w, "  %-9s %d\n", "total", stats.Total)
		return nil
	},
}

var reviewInteractiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Step through pending items and decide each one",
	RunE:  runReviewInteractive,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewListCmd, reviewShowCmd, reviewResolveCmd, reviewMergeCmd, reviewApplyCmd, reviewStatsCmd, reviewInteractiveCmd)

	reviewListCmd.Flags().StringVar(&reviewStatus, "status", "", "filter by status (pending, approved, rejected, merged)")
	reviewListCmd.Flags().IntVar(&reviewLimit, "limit", 0, "maximum items to list (0 = all)")

	reviewResolveCmd.Flags().StringVar(&reviewAction, "action", "", "use_existing, create_new or skip")
	reviewResolveCmd.Flags().StringVar(&reviewKey, "key", "", "canonical key (required for use_existing)")
	reviewResolveCmd.Flags().StringVar(&reviewNS, "namespace", "", "namespace of the key")
	reviewResolveCmd.Flags().StringVar(&reviewNotes, "notes", "", "free-form reviewer notes")
	reviewResolveCmd.Flags().BoolVar(&reviewApplyNow, "apply", false, "apply the decision immediately")
	_ = reviewResolveCmd.MarkFlagRequired("action")

	for _, c := range []*cobra.Command{reviewResolveCmd, reviewInteractiveCmd} {
		c.Flags().StringVar(&reviewer, "reviewer", "", "reviewer name (default: review.reviewer from config, then $USER)")
	}
}

func reviewerName(cfg *model.Config) string {
	if reviewer != "" {
		return reviewer
	}
	if cfg.Review.Reviewer != "" {
		return cfg.Review.Reviewer
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

func applyItem(cmd *cobra.Command, s *session, id string) error {
	res, err := s.pipeline.Apply(cmd.Context(), id)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if s.wantJSON() {
		return printJSON(w, res)
	}
	if res.RegistryUpdated {
		fmt.Fprintf(w, "%s added %s to %s\n", okStyle.Render("✓"), keyStyle.Render(res.Key), s.cfg.Paths.Registry)
	}
	fmt.Fprintf(w, "%s %s merged\n", okStyle.Render("✓"), id)
	return nil
}

const decideLater = "later"

func runReviewInteractive(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	ctx := cmd.Context()
	items, err := s.pipeline.Store().List(ctx, model.ListOptions{Status: model.StatusPending})
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(w, dimStyle.Render("Nothing pending."))
		return nil
	}

	who := reviewerName(s.cfg)
	decided := 0
	for i, it := range items {
		fmt.Fprintf(w, "\n%s\n", titleStyle.Render(fmt.Sprintf("[%d/%d]", i+1, len(items))))
		fmt.Fprintln(w, renderItem(it))

		action, key, notes := decideLater, defaultKey(it), ""
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Decision").
					Options(
						huh.NewOption("Use an existing key", string(model.ResolveUseExisting)),
						huh.NewOption("Create a new key", string(model.ResolveCreateNew)),
						huh.NewOption("Skip (reject)", string(model.ResolveSkip)),
						huh.NewOption("Decide later", decideLater),
					).
					Value(&action),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Key").
					Value(&key).
					Validate(func(v string) error {
						if action == string(model.ResolveUseExisting) && strings.TrimSpace(v) == "" {
							return errors.New("use_existing needs a key")
						}
						return nil
					}),
				huh.NewInput().Title("Notes").Value(&notes),
			).WithHideFunc(func() bool {
				return action == decideLater || action == string(model.ResolveSkip)
			}),
		)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				break
			}
			return err
		}
		if action == decideLater {
			continue
		}

		res := model.Resolution{Action: model.ResolutionAction(action), Key: strings.TrimSpace(key), Notes: notes}
		if res.Action == model.ResolveSkip {
			res.Key = ""
		}
		ok, err := s.pipeline.Store().Resolve(ctx, it.ID, res, who)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(w, "%s %s was resolved elsewhere\n", warnStyle.Render("!"), it.ID)
			continue
		}
		decided++
		fmt.Fprintf(w, "%s %s -> %s\n", okStyle.Render("✓"), it.Term, res.Action)
	}

	fmt.Fprintf(w, "\n%d of %d pending items decided. Run 'termgov review apply <id>' to merge approved items.\n", decided, len(items))
	return nil
}

// defaultKey pre-fills the key prompt with the best guess for the item
func defaultKey(it model.ReviewQueueItem) string {
	if top, ok := it.Result.TopCandidate(); ok {
		return top.Key
	}
	if len(it.Result.SuggestedKeys) > 0 {
		return it.Result.SuggestedKeys[0]
	}
	return it.Result.Key
}

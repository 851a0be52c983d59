package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/retrieve"
)

var (
	classifyCtx     contextFlags
	classifyEnqueue bool
	candidatesCtx   contextFlags
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <term>",
	Short: "Decide whether a term has a key, needs a new key, or needs review",
	Long: `Classify compares a raw UI term against the governed registry and the
loaded translations for the given context and prints one decision:

  use_existing   the term already has a canonical key
  propose_new    the term should become a new key (layer, namespace, keys)
  needs_review   ambiguous; a human decides

Nothing is written unless --enqueue is given, in which case a needs_review
decision is added to the review queue.

Example:
  termgov classify "Fire order" --vertical hospitality --module pos
  termgov classify "Comanda" -l es --vertical hospitality --subvertical restaurant --enqueue`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

// candidatesCmd represents the candidates command
var candidatesCmd = &cobra.Command{
	Use:   "candidates <term>",
	Short: "List the similar registry and translation keys for a term",
	Long: `Candidates runs only the retrieval step: registry terms in scope for the
context and translation keys of the context locale, scored and sorted.

Example:
  termgov candidates "fire order" --vertical hospitality --module pos`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCandidates,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(candidatesCmd)

	classifyCtx.bind(classifyCmd)
	classifyCmd.Flags().BoolVar(&classifyEnqueue, "enqueue", false, "add needs_review decisions to the review queue")

	candidatesCtx.bind(candidatesCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")
	s, err := openSession(cmd, classifyEnqueue)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	tctx := classifyCtx.tenant(s.cfg)
	out, err := s.pipeline.Classify(ctx, term, tctx)
	if err != nil {
		return fmt.Errorf("classify %q: %w", term, err)
	}

	var queuedID string
	if classifyEnqueue && out.Action == model.ActionNeedsReview {
		if queuedID, err = s.pipeline.Enqueue(ctx, term, tctx, out); err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}
	}

	w := cmd.OutOrStdout()
	if s.wantJSON() {
		return printJSON(w, struct {
			Term    string                 `json:"term"`
			Context model.TenantContext    `json:"context"`
			Result  model.ClassifierOutput `json:"result"`
			QueueID string                 `json:"queueId,omitempty"`
		}{term, tctx, out, queuedID})
	}

	fmt.Fprintln(w, renderDecision(term, tctx, out))
	if queuedID != "" {
		fmt.Fprintf(w, "%s queued for review as %s\n", okStyle.Render("✓"), queuedID)
	} else if out.Action == model.ActionNeedsReview {
		fmt.Fprintln(w, dimStyle.Render("Use --enqueue to add this term to the review queue."))
	}
	return nil
}

func runCandidates(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")
	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	tctx := candidatesCtx.tenant(s.cfg)
	req, err := s.pipeline.Request(cmd.Context(), term, tctx)
	if err != nil {
		return err
	}

	r := retrieve.NewRetriever(s.cfg.Classifier.RetrievalThreshold, s.cfg.Classifier.MaxCandidates)
	cands := r.Retrieve(term, req.Registry, tctx, req.Translations)

	w := cmd.OutOrStdout()
	if s.wantJSON() {
		if cands == nil {
			cands = []model.Candidate{}
		}
		return printJSON(w, cands)
	}
	if len(cands) == 0 {
		fmt.Fprintln(w, warnStyle.Render("No similar terms found."))
		return nil
	}
	fmt.Fprintf(w, "%s %q (%s)\n", titleStyle.Render("Candidates for"), term, dimStyle.Render(tctx.String()))
	fmt.Fprint(w, renderCandidates(cands))
	return nil
}

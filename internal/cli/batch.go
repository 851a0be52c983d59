package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/worker"
)

var (
	batchCtx     contextFlags
	concurrency  int
	batchEnqueue bool
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Classify many terms from a file in parallel",
	Long: `Batch classifies every term of a file (one per line) under one context:
- Blank lines, # comments and duplicate lines are skipped
- Terms are classified concurrently with a configurable worker count
- Results are printed in file order
- With --enqueue, needs_review decisions are added to the review queue

Example:
  termgov batch terms.txt --vertical hospitality --module pos
  termgov batch terms.txt -l es --concurrency 8 --enqueue --json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCtx.bind(batchCmd)
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: batch.workers from config)")
	batchCmd.Flags().BoolVar(&batchEnqueue, "enqueue", false, "add needs_review decisions to the review queue")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

// batchRow is one line of JSON batch output
type batchRow struct {
	Term    string                  `json:"term"`
	Result  *model.ClassifierOutput `json:"result,omitempty"`
	Error   string                  `json:"error,omitempty"`
	QueueID string                  `json:"queueId,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	s, err := openSession(cmd, batchEnqueue)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	workers := concurrency
	if workers <= 0 {
		workers = s.cfg.Batch.Workers
	}
	tctx := batchCtx.tenant(s.cfg)

	// Load the documents once; every job shares the same snapshot
	template, err := s.pipeline.Request(ctx, "", tctx)
	if err != nil {
		return err
	}

	if !s.wantJSON() {
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
		fmt.Fprintf(os.Stderr, "  Context:      %s\n", tctx)
		fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
		fmt.Fprintf(os.Stderr, "\n")
	}

	bc := worker.NewBatchClassifier(s.pipeline.Classifier(), workers, s.logger)
	results, err := bc.ClassifyFile(ctx, file, template)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	rows := make([]batchRow, 0, len(results))
	counts := map[model.Action]int{}
	failures := 0
	for _, res := range results {
		row := batchRow{Term: res.Term, Result: res.Output}
		if res.Error != nil {
			failures++
			row.Error = res.Error.Error()
			rows = append(rows, row)
			continue
		}
		counts[res.Output.Action]++
		if batchEnqueue && res.Output.Action == model.ActionNeedsReview {
			id, err := s.pipeline.Enqueue(ctx, res.Term, tctx, *res.Output)
			if err != nil {
				return fmt.Errorf("enqueue %q: %w", res.Term, err)
			}
			row.QueueID = id
		}
		rows = append(rows, row)
	}

	w := cmd.OutOrStdout()
	if s.wantJSON() {
		return printJSON(w, rows)
	}

	for _, row := range rows {
		if row.Error != "" {
			fmt.Fprintf(w, "%s %s: %s\n", errStyle.Render("✗"), row.Term, row.Error)
			continue
		}
		target := row.Result.Key
		if target == "" && len(row.Result.SuggestedKeys) > 0 {
			target = row.Result.SuggestedKeys[0]
		}
		line := fmt.Sprintf("%-13s %-28s %s %s",
			actionStyle(row.Result.Action).Render(string(row.Result.Action)),
			row.Term,
			keyStyle.Render(target),
			dimStyle.Render(fmt.Sprintf("(%.2f)", row.Result.Confidence)),
		)
		if row.QueueID != "" {
			line += dimStyle.Render(" queued " + row.QueueID)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "\n  Total: %d  use_existing: %d  propose_new: %d  needs_review: %d  failures: %d\n",
		len(rows), counts[model.ActionUseExisting], counts[model.ActionProposeNew], counts[model.ActionNeedsReview], failures)
	return nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func actionStyle(a model.Action) lipgloss.Style {
	switch a {
	case model.ActionUseExisting:
		return okStyle
	case model.ActionProposeNew:
		return keyStyle
	default:
		return warnStyle
	}
}

func statusStyle(s model.ReviewStatus) lipgloss.Style {
	switch s {
	case model.StatusApproved, model.StatusMerged:
		return okStyle
	case model.StatusRejected:
		return errStyle
	default:
		return warnStyle
	}
}

// renderDecision formats a classifier output for humans
func renderDecision(term string, tctx model.TenantContext, out model.ClassifierOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Term:"), term)
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Context:"), dimStyle.Render(tctx.String()))
	fmt.Fprintf(&b, "%s %s (confidence %.2f)\n", titleStyle.Render("Action:"), actionStyle(out.Action).Render(string(out.Action)), out.Confidence)
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Reason:"), out.Reason)
	if out.Key != "" {
		fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Key:"), keyStyle.Render(out.Key))
	}
	if out.Layer != "" {
		fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Layer:"), out.Layer)
	}
	if out.Namespace != "" {
		fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Namespace:"), out.Namespace)
	}
	if len(out.SuggestedKeys) > 0 {
		fmt.Fprintf(&b, "%s\n", titleStyle.Render("Suggested keys:"))
		for _, k := range out.SuggestedKeys {
			fmt.Fprintf(&b, "  - %s\n", keyStyle.Render(k))
		}
	}
	if len(out.MatchedCandidates) > 0 {
		fmt.Fprintf(&b, "%s\n", titleStyle.Render("Matched candidates:"))
		b.WriteString(renderCandidates(out.MatchedCandidates))
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// renderCandidates formats candidates as aligned rows
func renderCandidates(cands []model.Candidate) string {
	var b strings.Builder
	for _, c := range cands {
		where := string(c.Source)
		if c.Namespace != "" {
			where += ":" + c.Namespace
		}
		fmt.Fprintf(&b, "  %5.1f%%  %-40s %s\n", c.Score*100, keyStyle.Render(c.Key), dimStyle.Render(where))
	}
	return b.String()
}

// renderItemRow formats one review queue item as a single line
func renderItemRow(it model.ReviewQueueItem) string {
	return fmt.Sprintf("%s  %-9s  %-24s  %s  %s",
		dimStyle.Render(it.ID),
		statusStyle(it.Status).Render(string(it.Status)),
		it.Term,
		dimStyle.Render(it.Context.String()),
		dimStyle.Render(it.Timestamp.Format("2006-01-02 15:04")),
	)
}

// renderItem formats a review queue item in full
func renderItem(it model.ReviewQueueItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("ID:"), it.ID)
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Status:"), statusStyle(it.Status).Render(string(it.Status)))
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Queued:"), it.Timestamp.Format("2006-01-02 15:04:05 MST"))
	if it.ReviewedAt != nil {
		fmt.Fprintf(&b, "%s %s by %s\n", titleStyle.Render("Reviewed:"), it.ReviewedAt.Format("2006-01-02 15:04:05 MST"), it.ReviewedBy)
	}
	if it.Resolution != nil {
		fmt.Fprintf(&b, "%s %s", titleStyle.Render("Resolution:"), it.Resolution.Action)
		if it.Resolution.Key != "" {
			fmt.Fprintf(&b, " %s", keyStyle.Render(it.Resolution.Key))
		}
		if it.Resolution.Notes != "" {
			fmt.Fprintf(&b, " (%s)", it.Resolution.Notes)
		}
		b.WriteString("\n")
	}
	return b.String() + renderDecision(it.Term, it.Context, it.Result)
}

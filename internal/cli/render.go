package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"eduqa-backend/internal/report"
)

const noSuggestions = "No improvement suggestions provided."

// RenderReport writes the three report sections, with the rubric and suggestions
// as tables.
func RenderReport(w io.Writer, sum report.Summary) {
	fmt.Fprintln(w, "Relevance Summary")
	if sum.RelevanceSummary != "" {
		fmt.Fprintln(w, sum.RelevanceSummary)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Rubric Evaluation")
	rubric := tablewriter.NewWriter(w)
	rubric.SetHeader([]string{"Criterion", "Score", "Explanation"})
	rubric.SetAutoWrapText(true)
	rubric.SetRowLine(true)
	for _, row := range sum.Rubric {
		score := "-"
		if row.Score != nil {
			score = strconv.Itoa(*row.Score)
		}
		rubric.Append([]string{row.Criterion, score, row.Explanation})
	}
	rubric.SetFooter([]string{"Total", fmt.Sprintf("%d / %d", sum.TotalScore, sum.MaxScore), fmt.Sprintf("%d%%", sum.Percentage)})
	rubric.Render()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Suggestions for Improvement")
	if len(sum.Suggestions) == 0 {
		fmt.Fprintln(w, noSuggestions)
		return
	}
	suggestions := tablewriter.NewWriter(w)
	suggestions.SetHeader([]string{"Criterion", "Suggestion"})
	suggestions.SetAutoWrapText(true)
	suggestions.SetRowLine(true)
	for _, s := range sum.Suggestions {
		suggestions.Append([]string{s.Criterion, s.Suggestion})
	}
	suggestions.Render()
}

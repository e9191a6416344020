package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetRubric      = "Rubric"
	sheetSuggestions = "Suggestions"
	sheetSummary     = "Summary"
)

// WriteXLSX writes r as a workbook with Summary, Rubric and Suggestions sheets.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetSummary, "A1", &[]any{"Relevance Summary"}); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetSummary, "A2", r.RelevanceSummary); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetRubric); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetRubric, "A1", &[]any{"Criterion", "Score", "Explanation"}); err != nil {
		return err
	}
	row := 2
	for _, rr := range r.Rubric {
		var score any = ""
		if rr.Score != nil {
			score = *rr.Score
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetRubric, cell, &[]any{rr.Criterion, score, rr.Explanation}); err != nil {
			return err
		}
		row++
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	total := fmt.Sprintf("%d / %d (%d%%)", r.TotalScore(), MaxScore, r.Percentage())
	if err := f.SetSheetRow(sheetRubric, cell, &[]any{"Total", total}); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetSuggestions); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetSuggestions, "A1", &[]any{"Criterion", "Suggestions"}); err != nil {
		return err
	}
	for i, s := range r.Suggestions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetSuggestions, cell, &[]any{s.Criterion, s.Suggestion}); err != nil {
			return err
		}
	}

	return f.Write(w)
}

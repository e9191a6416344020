package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const sampleReport = `Calling the model...

1. Relevance Summary - Intro to Algorithms $
The lesson covers sorting and matches CLO 2.

2. Rubric Evaluation

Criterion: Clarity and Organization
Score: 3
Explanation: Slides follow a logical order.

Criterion: Use of Technology
Score: 2
Explanation: Only static slides.
No interactive tools are used.

3. Suggestions for Improvement
Clarity and Organization: Add an agenda slide.
Use of Technology: Embed a sorting visualiser: see slide 4.`

func TestParseSimpleSections(t *testing.T) {
	rep := Parse("1. Relevance Summary\nX\n2. Rubric Evaluation\nY\n3. Suggestions for Improvement\nZ")

	if rep.RelevanceSummary != "X" {
		t.Fatalf("relevance = %q", rep.RelevanceSummary)
	}
	if rep.RubricText != "Y" {
		t.Fatalf("rubric = %q", rep.RubricText)
	}
	if rep.SuggestionsText != "Z" {
		t.Fatalf("suggestions = %q", rep.SuggestionsText)
	}
}

func TestSegmentReconstructsSpan(t *testing.T) {
	sections := Segment(sampleReport)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}

	var rebuilt strings.Builder
	for i, s := range sections {
		if i > 0 && sections[i-1].End != s.Start {
			t.Fatalf("sections %d and %d are not contiguous", i-1, i)
		}
		rebuilt.WriteString(s.Header)
		rebuilt.WriteString(s.Body)
	}
	start := strings.Index(sampleReport, HeaderRelevance)
	if rebuilt.String() != sampleReport[start:] {
		t.Fatalf("rebuilt text differs from original span")
	}
}

func TestSegmentCaseInsensitiveAndOutOfOrder(t *testing.T) {
	raw := "3. SUGGESTIONS FOR IMPROVEMENT\nlast\n1. relevance summary\nfirst"
	rep := Parse(raw)
	if rep.RelevanceSummary != "first" {
		t.Fatalf("relevance = %q", rep.RelevanceSummary)
	}
	if rep.SuggestionsText != "last" {
		t.Fatalf("suggestions = %q", rep.SuggestionsText)
	}
	if rep.RubricText != "" || len(rep.Rubric) != 0 {
		t.Fatalf("expected empty rubric, got %q", rep.RubricText)
	}
}

func TestParseMissingHeadersDegrades(t *testing.T) {
	for _, raw := range []string{"", "no headers at all", "❗ Error: boom"} {
		rep := Parse(raw)
		if rep.RelevanceSummary != "" || len(rep.Rubric) != 0 || len(rep.Suggestions) != 0 {
			t.Fatalf("%q: expected empty report, got %+v", raw, rep)
		}
		if rep.TotalScore() != 0 || rep.Percentage() != 0 {
			t.Fatalf("%q: expected zero score", raw)
		}
	}
}

func TestParseFullReport(t *testing.T) {
	rep := Parse(sampleReport)

	if !strings.HasPrefix(rep.RelevanceSummary, "- Intro to Algorithms $") {
		t.Fatalf("relevance = %q", rep.RelevanceSummary)
	}
	if len(rep.Rubric) != 2 {
		t.Fatalf("expected 2 rubric rows, got %d", len(rep.Rubric))
	}
	second := rep.Rubric[1]
	if second.Criterion != "Use of Technology" || second.Score == nil || *second.Score != 2 {
		t.Fatalf("unexpected second row %+v", second)
	}
	if second.Explanation != "Only static slides.\nNo interactive tools are used." {
		t.Fatalf("explanation = %q", second.Explanation)
	}
	if len(rep.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(rep.Suggestions))
	}
	if rep.Suggestions[1].Suggestion != "Embed a sorting visualiser: see slide 4." {
		t.Fatalf("suggestion text must keep later colons, got %q", rep.Suggestions[1].Suggestion)
	}
	if rep.TotalScore() != 5 {
		t.Fatalf("total = %d", rep.TotalScore())
	}
}

func TestRubricScoreAggregation(t *testing.T) {
	rows := ParseRubric("Criterion: Clarity\nScore: 3\nExplanation: Good\n\nCriterion: Engagement\nScore: 4\nExplanation: Great")
	rep := Report{Rubric: rows}

	if rep.TotalScore() != 7 {
		t.Fatalf("total = %d, want 7", rep.TotalScore())
	}
	if rep.Percentage() != 22 {
		t.Fatalf("percentage = %d, want 22", rep.Percentage())
	}
}

func TestRubricBlockWithoutScore(t *testing.T) {
	rows := ParseRubric("Criterion: Depth\nExplanation: Not scored\n\nScore: 4")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Score != nil {
		t.Fatalf("expected nil score, got %d", *rows[0].Score)
	}
	if rows[1].Criterion != UnknownCriterion || rows[1].Explanation != "" {
		t.Fatalf("unexpected defaults %+v", rows[1])
	}
	rep := Report{Rubric: rows}
	if rep.TotalScore() != 4 {
		t.Fatalf("total = %d, want 4", rep.TotalScore())
	}
}

func TestRubricLabelsCaseInsensitive(t *testing.T) {
	rows := ParseRubric("CRITERION: Alignment with CLOs\nscore: 1\nexplanation:   Weak")
	if len(rows) != 1 || rows[0].Criterion != "Alignment with CLOs" || *rows[0].Score != 1 || rows[0].Explanation != "Weak" {
		t.Fatalf("unexpected row %+v", rows)
	}
}

func TestParseSuggestions(t *testing.T) {
	got := ParseSuggestions("Clarity: improve examples\nEngagement: add polls")
	want := []Suggestion{
		{Criterion: "Clarity", Suggestion: "improve examples"},
		{Criterion: "Engagement", Suggestion: "add polls"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d suggestions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("suggestion %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseSuggestionsHeuristic(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []Suggestion
	}{
		{
			name: "lower-case continuation stays in block",
			in:   "Clarity: tighten intro\nand shorten slide 3",
			want: []Suggestion{{Criterion: "Clarity", Suggestion: "tighten intro\nand shorten slide 3"}},
		},
		{
			name: "upper-case line splits even without colon",
			in:   "Engagement:\n\nPage 7: add a poll",
			want: []Suggestion{{Criterion: "Engagement", Suggestion: ""}, {Criterion: "Page 7", Suggestion: "add a poll"}},
		},
		{
			name: "indented line does not split",
			in:   "Depth: more proofs\n  Section 2 needs one",
			want: []Suggestion{{Criterion: "Depth", Suggestion: "more proofs\n  Section 2 needs one"}},
		},
		{
			name: "empty",
			in:   "   ",
			want: []Suggestion{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseSuggestions(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d suggestions, got %+v", len(tc.want), got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("suggestion %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestSummaryJSON(t *testing.T) {
	data, err := json.Marshal(Parse(sampleReport).Summarize())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"relevanceSummary", "rubric", "suggestions", "totalScore", "maxScore", "percentage"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing key %s", key)
		}
	}
	if payload["percentage"] != float64(16) {
		t.Fatalf("percentage = %v, want 16", payload["percentage"])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, Parse(sampleReport)); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(sheetRubric, "A3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "Use of Technology" {
		t.Fatalf("A3 = %q", got)
	}
	total, err := f.GetCellValue(sheetRubric, "B4")
	if err != nil {
		t.Fatalf("read total: %v", err)
	}
	if total != "5 / 32 (16%)" {
		t.Fatalf("total cell = %q", total)
	}
	crit, err := f.GetCellValue(sheetSuggestions, "A2")
	if err != nil {
		t.Fatalf("read suggestion: %v", err)
	}
	if crit != "Clarity and Organization" {
		t.Fatalf("suggestion criterion = %q", crit)
	}
}

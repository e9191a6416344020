// Package report turns the grader's plain-text output into a structured report.
//
// The output has three headed sections: "1. Relevance Summary" with free text,
// "2. Rubric Evaluation" with blank-line separated blocks of "Criterion:",
// "Score:" and "Explanation:" labels, and "3. Suggestions for Improvement" with
// one "<criterion>: <suggestion>" entry per paragraph.
//
// Parsing never fails. Missing or malformed pieces degrade to empty values.
package report

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Section headers, matched case-insensitively.
const (
	HeaderRelevance   = "1. Relevance Summary"
	HeaderRubric      = "2. Rubric Evaluation"
	HeaderSuggestions = "3. Suggestions for Improvement"
)

// UnknownCriterion names a rubric block without a "Criterion:" label.
const UnknownCriterion = "Unknown"

// SectionKind identifies one of the three report sections.
type SectionKind int

const (
	SectionRelevance SectionKind = iota
	SectionRubric
	SectionSuggestions
)

var headers = []struct {
	kind SectionKind
	text string
	re   *regexp.Regexp
}{
	{SectionRelevance, HeaderRelevance, headerPattern(HeaderRelevance)},
	{SectionRubric, HeaderRubric, headerPattern(HeaderRubric)},
	{SectionSuggestions, HeaderSuggestions, headerPattern(HeaderSuggestions)},
}

func headerPattern(h string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(h))
}

var (
	blankLine        = regexp.MustCompile(`\n\s*\n`)
	criterionLabel   = regexp.MustCompile(`(?i)Criterion:\s*(.+)`)
	scoreLabel       = regexp.MustCompile(`(?i)Score:\s*(\d+)`)
	explanationLabel = regexp.MustCompile(`(?is)Explanation:\s*(.+)`)
)

// Section is a located header and the raw text that follows it up to the next
// located header or the end of the input. Start and End are byte offsets of the
// whole section (header included) in the input.
type Section struct {
	Kind   SectionKind
	Header string
	Body   string
	Start  int
	End    int
}

// RubricRow is one scored criterion. Score is nil when the block had no score.
type RubricRow struct {
	Criterion   string `json:"criterion"`
	Score       *int   `json:"score"`
	Explanation string `json:"explanation"`
}

// Suggestion is one improvement entry keyed by criterion.
type Suggestion struct {
	Criterion  string `json:"criterion"`
	Suggestion string `json:"suggestions"`
}

// Report is the structured view of a raw grader report.
type Report struct {
	RelevanceSummary string       `json:"relevanceSummary"`
	RubricText       string       `json:"-"`
	SuggestionsText  string       `json:"-"`
	Rubric           []RubricRow  `json:"rubric"`
	Suggestions      []Suggestion `json:"suggestions"`
}

// Segment locates the three section headers (first occurrence of each) and returns
// the sections found, ordered by position. Header is the text as it appears in raw.
func Segment(raw string) []Section {
	var found []Section
	for _, h := range headers {
		loc := h.re.FindStringIndex(raw)
		if loc == nil {
			continue
		}
		found = append(found, Section{Kind: h.kind, Header: raw[loc[0]:loc[1]], Start: loc[0]})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Start < found[j].Start })

	for i := range found {
		bodyStart := found[i].Start + len(found[i].Header)
		end := len(raw)
		if i+1 < len(found) {
			end = found[i+1].Start
		}
		if end < bodyStart {
			// Overlapping headers; the earlier one keeps nothing.
			end = bodyStart
		}
		found[i].Body = raw[bodyStart:end]
		found[i].End = end
	}
	return found
}

// Parse builds a Report from raw grader output.
func Parse(raw string) Report {
	var rep Report
	for _, s := range Segment(raw) {
		body := strings.TrimSpace(s.Body)
		switch s.Kind {
		case SectionRelevance:
			rep.RelevanceSummary = body
		case SectionRubric:
			rep.RubricText = body
		case SectionSuggestions:
			rep.SuggestionsText = body
		}
	}
	rep.Rubric = ParseRubric(rep.RubricText)
	rep.Suggestions = ParseSuggestions(rep.SuggestionsText)
	return rep
}

// ParseRubric splits rubric text into blocks at blank lines and reads the
// Criterion, Score and Explanation labels of each block.
func ParseRubric(text string) []RubricRow {
	text = strings.TrimSpace(text)
	if text == "" {
		return []RubricRow{}
	}
	blocks := blankLine.Split(text, -1)
	rows := make([]RubricRow, 0, len(blocks))
	for _, block := range blocks {
		row := RubricRow{Criterion: UnknownCriterion}
		if m := criterionLabel.FindStringSubmatch(block); m != nil {
			row.Criterion = strings.TrimSpace(m[1])
		}
		if m := scoreLabel.FindStringSubmatch(block); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				row.Score = &n
			}
		}
		if m := explanationLabel.FindStringSubmatch(block); m != nil {
			row.Explanation = strings.TrimSpace(m[1])
		}
		rows = append(rows, row)
	}
	return rows
}

// ParseSuggestions starts a new block at every line that begins with an ASCII
// upper-case letter, then splits each block at its first colon. Criterion names
// that wrap onto a lower-case line stay attached to the previous block.
func ParseSuggestions(text string) []Suggestion {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Suggestion{}
	}

	var blocks []string
	var current []string
	for i, line := range strings.Split(text, "\n") {
		if i > 0 && startsUpper(line) {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
		current = append(current, line)
	}
	blocks = append(blocks, strings.Join(current, "\n"))

	out := make([]Suggestion, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		criterion, rest, _ := strings.Cut(block, ":")
		out = append(out, Suggestion{
			Criterion:  strings.TrimSpace(criterion),
			Suggestion: strings.TrimSpace(rest),
		})
	}
	return out
}

func startsUpper(line string) bool {
	return line != "" && line[0] >= 'A' && line[0] <= 'Z'
}

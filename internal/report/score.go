package report

import "math"

// MaxScore is the denominator for Percentage: 8 criteria scored 1 to 4. It is not
// derived from the rubric document, so a rubric with a different shape skews the
// percentage.
const MaxScore = 32

// TotalScore sums rubric scores; rows without a score count as 0.
func (r Report) TotalScore() int {
	total := 0
	for _, row := range r.Rubric {
		if row.Score != nil {
			total += *row.Score
		}
	}
	return total
}

// Percentage returns round(TotalScore / MaxScore * 100).
func (r Report) Percentage() int {
	return int(math.Round(float64(r.TotalScore()) / MaxScore * 100))
}

// Summary is the JSON shape served to clients.
type Summary struct {
	Report
	TotalScore int `json:"totalScore"`
	MaxScore   int `json:"maxScore"`
	Percentage int `json:"percentage"`
}

// Summarize attaches the aggregate score to r.
func (r Report) Summarize() Summary {
	return Summary{
		Report:     r,
		TotalScore: r.TotalScore(),
		MaxScore:   MaxScore,
		Percentage: r.Percentage(),
	}
}

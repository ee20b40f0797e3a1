package scoring

import (
	"sort"

	"readiness-workers/internal/models"
)

// QuestionAnswer pairs an answer with the question it responds to.
type QuestionAnswer struct {
	Question models.Question
	Answer   models.Answer
}

// DimensionScore keeps both representations of a dimension: Raw points out
// of Max, and Percent, the percentage-of-max view consumed by matching.
type DimensionScore struct {
	Raw       float64 `json:"raw"`
	Max       float64 `json:"max"`
	Percent   int     `json:"percent"`
	Questions int     `json:"questions"`
}

// Average is the mean score per answered question.
func (s DimensionScore) Average() float64 {
	if s.Questions == 0 {
		return 0
	}
	return s.Raw / float64(s.Questions)
}

type DimensionScores map[models.Dimension]DimensionScore

// RescoreAnswers recomputes every cached ScoreImpact from its raw value so the
// aggregate never trusts a stale derived value.
func RescoreAnswers(pairs []QuestionAnswer) []QuestionAnswer {
	out := make([]QuestionAnswer, len(pairs))
	for i, p := range pairs {
		p.Answer.ScoreImpact = ScoreAnswer(p.Answer.Value, p.Question.Type, p.Question.Options)
		out[i] = p
	}
	return out
}

// AggregateDimensionScores groups pairs by dimension and sums score_impact
// against each question's ceiling. Empty input yields an empty map.
func AggregateDimensionScores(pairs []QuestionAnswer) DimensionScores {
	scores := make(DimensionScores)
	for _, p := range pairs {
		d := p.Question.Dimension
		s := scores[d]
		s.Raw += p.Answer.ScoreImpact
		s.Max += QuestionCeiling(p.Question)
		s.Questions++
		scores[d] = s
	}

	for d, s := range scores {
		if s.Max > 0 {
			s.Percent = roundInt(100 * s.Raw / s.Max)
		}
		scores[d] = s
	}
	return scores
}

// Percentages returns the dimension -> 0-100 mapping used by matching.
func (ds DimensionScores) Percentages() map[models.Dimension]int {
	out := make(map[models.Dimension]int, len(ds))
	for d, s := range ds {
		out[d] = s.Percent
	}
	return out
}

// orderedDimensions returns the keys of m in canonical order, followed by any
// non-canonical keys sorted lexically.
func orderedDimensions[V any](m map[models.Dimension]V) []models.Dimension {
	out := make([]models.Dimension, 0, len(m))
	for _, d := range models.Dimensions {
		if _, ok := m[d]; ok {
			out = append(out, d)
		}
	}
	var extra []models.Dimension
	for d := range m {
		if !d.Valid() {
			extra = append(extra, d)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

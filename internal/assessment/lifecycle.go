// Package assessment drives an assessment through draft, in_progress and
// completed, and tracks which question comes next.
package assessment

import (
	"errors"
	"math"
	"sort"
	"time"

	"readiness-workers/internal/models"
	"readiness-workers/internal/scoring"
)

var (
	ErrCompleted    = errors.New("assessment is completed")
	ErrNotCompleted = errors.New("assessment is not completed")
)

// Cursor points at the next question to ask. QuestionID is empty once every
// active question has an answer.
type Cursor struct {
	QuestionID string `json:"questionId,omitempty"`
	Position   int    `json:"position"`
	Answered   int    `json:"answered"`
	Total      int    `json:"total"`
}

// Done reports whether no unanswered active question remains.
func (c Cursor) Done() bool {
	return c.QuestionID == ""
}

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }

// CanAnswer rejects answers for a completed assessment. Editing a completed
// assessment goes through Reopen first.
func CanAnswer(a models.Assessment) error {
	if a.Status == models.AssessmentStatusCompleted {
		return ErrCompleted
	}
	return nil
}

// Advance recomputes progress, status and cursor from the current answers.
// A completed assessment is returned unchanged so its scores stay frozen.
func Advance(a models.Assessment, questions []models.Question, answers []models.Answer) (models.Assessment, Cursor) {
	active := activeQuestions(questions)
	answered := answeredSet(answers)

	if a.Status == models.AssessmentStatusCompleted {
		return a, Cursor{Answered: countAnswered(active, answered), Total: len(active)}
	}

	cursor := Cursor{Total: len(active)}
	for i, q := range active {
		if answered[q.ID] {
			cursor.Answered++
			continue
		}
		if cursor.QuestionID == "" {
			cursor.QuestionID = q.ID
			cursor.Position = i + 1
		}
	}

	gating := coreQuestions(active)
	gated := countAnswered(gating, answered)
	if len(gating) > 0 {
		a.ProgressPercentage = int(math.Round(float64(gated) * 100 / float64(len(gating))))
	} else {
		a.ProgressPercentage = 0
	}

	if a.Status == "" || a.Status == models.AssessmentStatusDraft {
		if len(answered) > 0 {
			a.Status = models.AssessmentStatusInProgress
		} else {
			a.Status = models.AssessmentStatusDraft
		}
	}

	a.CurrentQuestionID = cursor.QuestionID
	a.UpdatedAt = now()

	if len(gating) > 0 && gated == len(gating) {
		scores := Score(questions, answers)
		a.DimensionScores = scores.Percentages()
		a.OverallReadinessScore = scoring.ComputeOverallScore(scores, scoring.ConventionPercentage)
		a.Status = models.AssessmentStatusCompleted
		completed := a.UpdatedAt
		a.CompletedAt = &completed
	}

	return a, cursor
}

// Reopen moves a completed assessment back to in_progress so answers can be
// edited. Scores are recomputed on the next completion.
func Reopen(a models.Assessment) (models.Assessment, error) {
	if a.Status != models.AssessmentStatusCompleted {
		return a, ErrNotCompleted
	}
	a.Status = models.AssessmentStatusInProgress
	a.CompletedAt = nil
	a.UpdatedAt = now()
	return a, nil
}

// Pair joins answers to their questions. Answers to unknown questions are
// dropped; a question answered twice keeps the last answer.
func Pair(questions []models.Question, answers []models.Answer) []scoring.QuestionAnswer {
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	idx := make(map[string]int, len(answers))
	pairs := make([]scoring.QuestionAnswer, 0, len(answers))
	for _, ans := range answers {
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}
		if i, seen := idx[ans.QuestionID]; seen {
			pairs[i].Answer = ans
			continue
		}
		idx[ans.QuestionID] = len(pairs)
		pairs = append(pairs, scoring.QuestionAnswer{Question: q, Answer: ans})
	}
	return pairs
}

// Score rescores every answer and aggregates by dimension.
func Score(questions []models.Question, answers []models.Answer) scoring.DimensionScores {
	return scoring.AggregateDimensionScores(scoring.RescoreAnswers(Pair(questions, answers)))
}

func activeQuestions(questions []models.Question) []models.Question {
	out := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if q.Active {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

// coreQuestions gate completion. Without any core question every active
// question gates.
func coreQuestions(active []models.Question) []models.Question {
	var core []models.Question
	for _, q := range active {
		if q.Core {
			core = append(core, q)
		}
	}
	if len(core) == 0 {
		return active
	}
	return core
}

func answeredSet(answers []models.Answer) map[string]bool {
	set := make(map[string]bool, len(answers))
	for _, a := range answers {
		if a.Value != "" {
			set[a.QuestionID] = true
		}
	}
	return set
}

func countAnswered(questions []models.Question, answered map[string]bool) int {
	n := 0
	for _, q := range questions {
		if answered[q.ID] {
			n++
		}
	}
	return n
}

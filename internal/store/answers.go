package store

import (
	"context"
	"database/sql"
	"time"

	"readiness-workers/internal/models"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

func (s *Store) ListAnswers(ctx context.Context, assessmentID string) ([]models.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT answer_id, assessment_id, question_id, answer_value, score_impact, created_at, updated_at
		FROM answers
		WHERE assessment_id = $1
		ORDER BY created_at, answer_id`, assessmentID)
	if err != nil {
		return nil, eris.Wrapf(err, "store: list answers for assessment %s", assessmentID)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var (
			a      models.Answer
			impact sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &a.AssessmentID, &a.QuestionID, &a.Value, &impact, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan answer")
		}
		a.ScoreImpact = impact.Float64
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate answers")
	}
	return answers, nil
}

// UpsertAnswer stores the answer for (assessment, question), replacing any
// earlier value. ID and CreatedAt are filled from the stored row.
func (s *Store) UpsertAnswer(ctx context.Context, a models.Answer) (models.Answer, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO answers (answer_id, assessment_id, question_id, answer_value, score_impact, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (assessment_id, question_id) DO UPDATE SET
			answer_value = EXCLUDED.answer_value,
			score_impact = EXCLUDED.score_impact,
			updated_at = EXCLUDED.updated_at
		RETURNING answer_id, created_at`,
		a.ID, a.AssessmentID, a.QuestionID, a.Value, a.ScoreImpact, now,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return a, eris.Wrapf(err, "store: upsert answer for question %s", a.QuestionID)
	}
	return a, nil
}

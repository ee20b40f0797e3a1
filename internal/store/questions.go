package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"readiness-workers/internal/models"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

const (
	moduleCore         = "core"
	moduleSupplemental = "supplemental"
)

const questionColumns = `question_id, question_text, question_type, dimension, module,
	order_index, options, help_text, is_required, is_active`

// ListQuestions returns questions ordered by order_index.
func (s *Store) ListQuestions(ctx context.Context, activeOnly bool) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY order_index, question_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "store: list questions")
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate questions")
	}
	return questions, nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (models.Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE question_id = $1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Question{}, eris.Wrapf(ErrNotFound, "store: question %s", id)
	}
	return q, err
}

// UpsertQuestion inserts q, or updates the existing row with the same id.
// An empty id gets a fresh UUID. The stored id is returned.
func (s *Store) UpsertQuestion(ctx context.Context, q models.Question) (string, error) {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	options, err := jsonColumn(q.Options)
	if err != nil {
		return "", eris.Wrapf(err, "store: encode options for question %s", q.ID)
	}
	module := moduleSupplemental
	if q.Core {
		module = moduleCore
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questions (`+questionColumns+`, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (question_id) DO UPDATE SET
			question_text = EXCLUDED.question_text,
			question_type = EXCLUDED.question_type,
			dimension = EXCLUDED.dimension,
			module = EXCLUDED.module,
			order_index = EXCLUDED.order_index,
			options = EXCLUDED.options,
			help_text = EXCLUDED.help_text,
			is_required = EXCLUDED.is_required,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`,
		q.ID, q.Text, string(q.Type), string(q.Dimension), module,
		q.OrderIndex, options, toNullString(q.HelpText), q.Required, q.Active, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "store: upsert question %s", q.ID)
	}
	return q.ID, nil
}

func scanQuestion(sc scanner) (models.Question, error) {
	var (
		q        models.Question
		qType    string
		dim      string
		module   string
		options  []byte
		helpText sql.NullString
	)
	err := sc.Scan(&q.ID, &q.Text, &qType, &dim, &module, &q.OrderIndex, &options, &helpText, &q.Required, &q.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return q, err
		}
		return q, eris.Wrap(err, "store: scan question")
	}

	q.Type = models.QuestionType(qType)
	q.Dimension = models.Dimension(dim)
	q.Core = module == moduleCore
	q.HelpText = nullString(helpText)
	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return q, eris.Wrapf(err, "store: decode options for question %s", q.ID)
		}
	}
	return q, nil
}

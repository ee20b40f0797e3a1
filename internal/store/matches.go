package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"readiness-workers/internal/common/database"
	"readiness-workers/internal/models"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// ReplaceMatches deletes every stored match for the assessment and inserts
// matches in one transaction. Readers never see a partial set.
func (s *Store) ReplaceMatches(ctx context.Context, assessmentID string, matches []models.InvestorMatch) error {
	now := time.Now().UTC()

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM investor_matches WHERE assessment_id = $1`, assessmentID); err != nil {
			return eris.Wrap(err, "delete previous matches")
		}

		for _, m := range matches {
			id := m.ID
			if id == "" {
				id = uuid.New().String()
			}
			reasoning, err := json.Marshal(m.Reasoning)
			if err != nil {
				return eris.Wrapf(err, "encode reasoning for investor %s", m.InvestorID)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO investor_matches (match_id, assessment_id, investor_id, match_score, match_reasoning, rank_position, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				id, assessmentID, m.InvestorID, m.MatchScore, reasoning, m.RankPosition, now,
			); err != nil {
				return eris.Wrapf(err, "insert match for investor %s", m.InvestorID)
			}
		}
		return nil
	})
	if err != nil {
		return eris.Wrapf(err, "store: replace matches for assessment %s", assessmentID)
	}
	return nil
}

// ListMatches returns stored matches ordered by score, highest first. A
// limit of 0 or less returns every match.
func (s *Store) ListMatches(ctx context.Context, assessmentID string, limit int) ([]models.InvestorMatch, error) {
	query := `
		SELECT m.match_id, m.assessment_id, m.investor_id, i.name, m.match_score,
			m.match_reasoning, m.rank_position, m.created_at
		FROM investor_matches m
		JOIN investors i ON i.investor_id = m.investor_id
		WHERE m.assessment_id = $1
		ORDER BY m.match_score DESC, m.rank_position ASC`
	args := []interface{}{assessmentID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "store: list matches for assessment %s", assessmentID)
	}
	defer rows.Close()

	var matches []models.InvestorMatch
	for rows.Next() {
		var (
			m         models.InvestorMatch
			reasoning []byte
			rank      sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.AssessmentID, &m.InvestorID, &m.InvestorName, &m.MatchScore,
			&reasoning, &rank, &m.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan match")
		}
		m.RankPosition = int(rank.Int64)
		if err := decodeJSON(reasoning, &m.Reasoning); err != nil {
			return nil, eris.Wrapf(err, "store: decode reasoning for match %s", m.ID)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate matches")
	}
	return matches, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"readiness-workers/internal/models"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"
)

const investorColumns = `investor_id, name, type, focus_areas, investment_range_min, investment_range_max,
	geographic_focus, criteria_weights, description, website, is_active`

func (s *Store) ListActiveInvestors(ctx context.Context) ([]models.Investor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+investorColumns+` FROM investors WHERE is_active = TRUE ORDER BY name, investor_id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: list active investors")
	}
	defer rows.Close()
	return scanInvestors(rows)
}

// GetInvestorsByIDs returns the active investors among ids, in the order the
// ids were given. Unknown or inactive ids are skipped.
func (s *Store) GetInvestorsByIDs(ctx context.Context, ids []string) ([]models.Investor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+investorColumns+` FROM investors WHERE investor_id = ANY($1) AND is_active = TRUE`,
		pq.Array(ids))
	if err != nil {
		return nil, eris.Wrap(err, "store: get investors by id")
	}
	defer rows.Close()

	found, err := scanInvestors(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Investor, len(found))
	for _, inv := range found {
		byID[inv.ID] = inv
	}
	ordered := make([]models.Investor, 0, len(found))
	for _, id := range ids {
		if inv, ok := byID[id]; ok {
			ordered = append(ordered, inv)
			delete(byID, id)
		}
	}
	return ordered, nil
}

func scanInvestors(rows *sql.Rows) ([]models.Investor, error) {
	var investors []models.Investor
	for rows.Next() {
		var (
			inv                 models.Investor
			invType             string
			focus, geo, weights []byte
			lo, hi              sql.NullFloat64
			desc, site          sql.NullString
		)
		if err := rows.Scan(&inv.ID, &inv.Name, &invType, &focus, &lo, &hi, &geo, &weights, &desc, &site, &inv.Active); err != nil {
			return nil, eris.Wrap(err, "store: scan investor")
		}

		inv.Type = models.InvestorType(invType)
		inv.InvestmentRangeMin = nullFloatPtr(lo)
		inv.InvestmentRangeMax = nullFloatPtr(hi)
		inv.Description = nullString(desc)
		inv.Website = nullString(site)

		if err := decodeJSON(focus, &inv.FocusAreas); err != nil {
			return nil, eris.Wrapf(err, "store: decode focus areas for investor %s", inv.ID)
		}
		if err := decodeJSON(geo, &inv.GeographicFocus); err != nil {
			return nil, eris.Wrapf(err, "store: decode geographic focus for investor %s", inv.ID)
		}
		// NULL weights stay nil so scoring applies the default weights.
		if err := decodeJSON(weights, &inv.CriteriaWeights); err != nil {
			return nil, eris.Wrapf(err, "store: decode criteria weights for investor %s", inv.ID)
		}
		investors = append(investors, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate investors")
	}
	return investors, nil
}

func decodeJSON(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

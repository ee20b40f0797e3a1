package store

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"readiness-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rotisserie/eris"
)

// InvestorIndex is the Elasticsearch investor directory. Prescreening reads
// the active directory from it, ordered by profile overlap, before exact
// scoring.
type InvestorIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewInvestorIndex(es *elasticsearch.Client, index string) *InvestorIndex {
	return &InvestorIndex{es: es, index: index}
}

type investorDoc struct {
	ID                 string   `json:"investor_id"`
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	FocusAreas         []string `json:"focus_areas"`
	GeographicFocus    []string `json:"geographic_focus"`
	InvestmentRangeMin *float64 `json:"investment_range_min,omitempty"`
	InvestmentRangeMax *float64 `json:"investment_range_max,omitempty"`
	Active             bool     `json:"is_active"`
}

// IndexInvestor writes or replaces the directory document for inv.
func (x *InvestorIndex) IndexInvestor(ctx context.Context, inv models.Investor) error {
	body, err := json.Marshal(investorDoc{
		ID:                 inv.ID,
		Name:               inv.Name,
		Type:               string(inv.Type),
		FocusAreas:         inv.FocusAreas,
		GeographicFocus:    inv.GeographicFocus,
		InvestmentRangeMin: inv.InvestmentRangeMin,
		InvestmentRangeMax: inv.InvestmentRangeMax,
		Active:             inv.Active,
	})
	if err != nil {
		return eris.Wrapf(err, "index: encode investor %s", inv.ID)
	}

	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: inv.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return eris.Wrapf(err, "index: put investor %s", inv.ID)
	}
	defer res.Body.Close()

	if res.IsError() {
		return eris.Errorf("index: put investor %s: %s", inv.ID, res.Status())
	}
	return nil
}

// defaultCandidatePage is the page size used when the caller passes none.
const defaultCandidatePage = 100

// CandidateIDs returns every active investor id ordered by overlap with the
// profile's industry, stage, business model and location. Investors with no
// overlap still match so funding and investment type can score them. Pages of
// pageSize are fetched with search_after until the index is exhausted.
func (x *InvestorIndex) CandidateIDs(ctx context.Context, profile models.CompanyProfile, pageSize int) ([]string, error) {
	if pageSize <= 0 {
		pageSize = defaultCandidatePage
	}

	var (
		ids   []string
		after []interface{}
	)
	for {
		page, last, err := x.candidatePage(ctx, candidateQuery(profile, pageSize, after))
		if err != nil {
			return nil, err
		}
		ids = append(ids, page...)
		if len(page) < pageSize || last == nil {
			return ids, nil
		}
		after = last
	}
}

// candidatePage runs one search and returns its ids plus the sort values of
// the last hit, which seed the next page.
func (x *InvestorIndex) candidatePage(ctx context.Context, query map[string]interface{}) ([]string, []interface{}, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, nil, eris.Wrap(err, "index: encode candidate query")
	}

	req := esapi.SearchRequest{
		Index:          []string{x.index},
		Body:           bytes.NewReader(body),
		SourceIncludes: []string{"investor_id"},
	}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return nil, nil, eris.Wrap(err, "index: search candidates")
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, nil, eris.Errorf("index: search candidates: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source investorDoc   `json:"_source"`
				Sort   []interface{} `json:"sort"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, nil, eris.Wrap(err, "index: decode candidates")
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	var last []interface{}
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.Source.ID)
		last = hit.Sort
	}
	return ids, last, nil
}

func candidateQuery(p models.CompanyProfile, size int, after []interface{}) map[string]interface{} {
	should := []interface{}{}
	focus := []struct {
		value string
		boost float64
	}{
		{p.Industry, 3},
		{p.CompanyStage, 2},
		{p.BusinessModel, 1.5},
	}
	for _, f := range focus {
		if f.value == "" {
			continue
		}
		should = append(should, map[string]interface{}{
			"term": map[string]interface{}{
				"focus_areas": map[string]interface{}{"value": f.value, "boost": f.boost},
			},
		})
	}
	if p.GeographicLocation != "" {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{
				"geographic_focus": strings.ToLower(p.GeographicLocation) + " global",
			},
		})
	}
	if p.FundingAmountSought != nil && *p.FundingAmountSought > 0 {
		amount := *p.FundingAmountSought
		should = append(should, map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"range": map[string]interface{}{"investment_range_min": map[string]interface{}{"gt": 0, "lte": amount}}},
					map[string]interface{}{"range": map[string]interface{}{"investment_range_max": map[string]interface{}{"gte": amount}}},
				},
				"boost": 2.5,
			},
		})
	}

	query := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter":               []interface{}{map[string]interface{}{"term": map[string]interface{}{"is_active": true}}},
				"should":               should,
				"minimum_should_match": 0,
			},
		},
		"sort": []interface{}{"_score", map[string]interface{}{"investor_id": "asc"}},
	}
	if len(after) > 0 {
		query["search_after"] = after
	}
	return query
}

package store

import (
	"context"
	"encoding/json"
	"time"

	"readiness-workers/internal/common/metrics"
	"readiness-workers/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const (
	activeInvestorsKey = "readiness:investors:active"
	dimensionKeyPrefix = "readiness:assessment:"
)

// Cache keeps derived read models in Redis. A nil client disables caching;
// every read then misses and every write is a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func dimensionKey(assessmentID string) string {
	return dimensionKeyPrefix + assessmentID + ":dimensions"
}

// ActiveInvestors is a read-through for the active investor list. Cache
// failures fall back to load; only load errors are returned.
func (c *Cache) ActiveInvestors(ctx context.Context, load func(context.Context) ([]models.Investor, error)) ([]models.Investor, error) {
	var investors []models.Investor
	if c.get(ctx, "investors", activeInvestorsKey, &investors) {
		return investors, nil
	}

	investors, err := load(ctx)
	if err != nil {
		return nil, err
	}
	_ = c.set(ctx, activeInvestorsKey, investors)
	return investors, nil
}

// scoreSnapshot is the cached form of an assessment's dimension scores. The
// status travels with the scores so partial percentages never pass as frozen.
type scoreSnapshot struct {
	Status models.AssessmentStatus  `json:"status"`
	Scores map[models.Dimension]int `json:"scores"`
}

// DimensionScores returns the cached dimension percentages for a completed
// assessment. Snapshots taken before completion are treated as a miss.
func (c *Cache) DimensionScores(ctx context.Context, assessmentID string) (map[models.Dimension]int, bool) {
	var snap scoreSnapshot
	if !c.get(ctx, "dimensions", dimensionKey(assessmentID), &snap) {
		return nil, false
	}
	if snap.Status != models.AssessmentStatusCompleted || len(snap.Scores) == 0 {
		return nil, false
	}
	return snap.Scores, true
}

// SetDimensionScores stores scores together with the assessment status they
// were computed under.
func (c *Cache) SetDimensionScores(ctx context.Context, assessmentID string, status models.AssessmentStatus, scores map[models.Dimension]int) error {
	return c.set(ctx, dimensionKey(assessmentID), scoreSnapshot{Status: status, Scores: scores})
}

// InvalidateAssessment drops cached scores after an answer changes.
func (c *Cache) InvalidateAssessment(ctx context.Context, assessmentID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, dimensionKey(assessmentID)).Err(); err != nil {
		return eris.Wrapf(err, "cache: invalidate assessment %s", assessmentID)
	}
	return nil
}

func (c *Cache) get(ctx context.Context, family, key string, v interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil || json.Unmarshal(val, v) != nil {
		metrics.CacheLookups.WithLabelValues(family, "miss").Inc()
		return false
	}
	metrics.CacheLookups.WithLabelValues(family, "hit").Inc()
	return true
}

func (c *Cache) set(ctx context.Context, key string, v interface{}) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "cache: encode %s", key)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return eris.Wrapf(err, "cache: set %s", key)
	}
	return nil
}

// internal/workers/investor/prescreen-investors/config.go
package prescreeninvestors

import (
	"time"

	"readiness-workers/internal/common/config"
	"readiness-workers/internal/scoring"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	// Limit is clamped to scoring.PrescreenLimit.
	Limit int
	// CandidatePageSize is how many ids each investor index request fetches.
	// Every page is read; it bounds request size, not the candidate set.
	CandidatePageSize int
	InvestorIndex     string
}

func LoadConfig(scoringCfg config.ScoringConfig, es config.ElasticsearchConfig) *Config {
	limit := scoringCfg.PrescreenLimit
	if limit <= 0 || limit > scoring.PrescreenLimit {
		limit = scoring.PrescreenLimit
	}
	return &Config{
		Timeout:           20 * time.Second,
		CacheTTL:          scoringCfg.CacheTTLDuration(),
		Limit:             limit,
		CandidatePageSize: 100,
		InvestorIndex:     es.InvestorIndex,
	}
}

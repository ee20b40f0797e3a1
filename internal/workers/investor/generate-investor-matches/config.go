// internal/workers/investor/generate-investor-matches/config.go
package generateinvestormatches

import (
	"time"

	"readiness-workers/internal/common/config"
)

type Config struct {
	Timeout          time.Duration
	CacheTTL         time.Duration
	MatchConcurrency int
	StoredMatchLimit int
}

func LoadConfig(scoring config.ScoringConfig) *Config {
	cfg := &Config{
		Timeout:          30 * time.Second,
		CacheTTL:         scoring.CacheTTLDuration(),
		MatchConcurrency: scoring.MatchConcurrency,
		StoredMatchLimit: scoring.StoredMatchLimit,
	}
	if cfg.MatchConcurrency <= 0 {
		cfg.MatchConcurrency = 8
	}
	return cfg
}

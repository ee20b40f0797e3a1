// internal/workers/investor/compare-investors/config.go
package compareinvestors

import (
	"time"

	"readiness-workers/internal/common/config"
)

// MaxComparedInvestors is the widest comparison the matrix palette supports.
const MaxComparedInvestors = 5

type Config struct {
	Timeout      time.Duration
	CacheTTL     time.Duration
	MaxInvestors int
}

func LoadConfig(scoring config.ScoringConfig) *Config {
	limit := scoring.ComparisonLimit
	if limit <= 0 || limit > MaxComparedInvestors {
		limit = MaxComparedInvestors
	}
	return &Config{
		Timeout:      15 * time.Second,
		CacheTTL:     scoring.CacheTTLDuration(),
		MaxInvestors: limit,
	}
}

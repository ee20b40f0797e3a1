// internal/workers/readiness/calculate-readiness-score/config.go
package calculatereadinessscore

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  15 * time.Second,
		CacheTTL: 5 * time.Minute,
	}
}

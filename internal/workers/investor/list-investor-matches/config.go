// internal/workers/investor/list-investor-matches/config.go
package listinvestormatches

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		DefaultLimit: 0,
	}
}

// internal/workers/investor/record-investor-evaluations/config.go
package recordinvestorevaluations

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}

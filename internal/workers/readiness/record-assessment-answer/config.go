// internal/workers/readiness/record-assessment-answer/config.go
package recordassessmentanswer

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		CacheTTL: 5 * time.Minute,
	}
}

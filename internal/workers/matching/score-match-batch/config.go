// internal/workers/matching/score-match-batch/config.go
package scorematchbatch

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

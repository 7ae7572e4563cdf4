// internal/workers/matching/record-outcome/config.go
package recordoutcome

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

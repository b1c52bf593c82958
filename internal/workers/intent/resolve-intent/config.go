// internal/workers/intent/resolve-intent/config.go
package resolveintent

import (
	"time"

	"eweb-intent/internal/intent"
)

type Config struct {
	Timeout  time.Duration
	Defaults intent.Defaults
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

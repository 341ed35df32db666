// internal/generation/orchestrator/config.go
package orchestrator

import "time"

// Config bounds the pipeline's backend attempts.
type Config struct {
	// AttemptTimeout is the wall-clock budget for a single backend attempt,
	// assistant run or chat completion alike.
	AttemptTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 30 * time.Second
	}
}

package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	RuntimePath string

	// Persona prompt override; empty uses the built-in one.
	PersonaPath string `env:"LOBUG_PERSONA_PATH"`

	// Transport flags
	EnableTelegram bool `env:"LOBUG_ENABLE_TELEGRAM" envDefault:"false"`

	// Rolling history passed to the chat model
	ContextWindowSize int `env:"LOBUG_CONTEXT_WINDOW_SIZE" envDefault:"20"`

	// Pending background memory jobs before new ones are dropped
	JobQueueSize int `env:"LOBUG_JOB_QUEUE_SIZE" envDefault:"64"`
}

func ParseAppConfig(runtime string) (*AppConfig, error) {
	c := &AppConfig{RuntimePath: runtime}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse app config: %w", err)
	}
	if c.ContextWindowSize <= 0 {
		return nil, fmt.Errorf("context window size must be positive, got %d", c.ContextWindowSize)
	}
	if c.JobQueueSize <= 0 {
		c.JobQueueSize = 1
	}
	return c, nil
}

func (c AppConfig) GetHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}

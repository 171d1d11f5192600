package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/kilianp07/sectionsched/infra/logger"
)

// LoggingConfig defines the application log output.
type LoggingConfig struct {
	// Level is a zerolog level name.
	Level string `json:"level"`
	// Env "dev" selects the console writer. Defaults to APP_ENV.
	Env string `json:"env"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Env == "" {
		c.Env = os.Getenv("APP_ENV")
	}
}

// Validate checks the level name.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("unknown level %q", c.Level)
	}
	return nil
}

// Logger returns a logger for component honoring this configuration.
func (c LoggingConfig) Logger(component string) logger.Logger {
	return logger.NewZerologLogger(component, logger.Options{Env: c.Env, Level: c.Level})
}

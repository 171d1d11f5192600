package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/sectionsched/core/solver"
)

// DefaultHorizonBuffer is the queuing slack added to the horizon, in minutes.
const DefaultHorizonBuffer = 600

// Config defines solving parameters loaded from configuration.
type Config struct {
	// TimeLimitSeconds is the hard wall-clock budget of the search.
	TimeLimitSeconds float64 `json:"time_limit_seconds" yaml:"time_limit_seconds"`
	// Workers is the number of concurrent search strategies, 0 for automatic.
	Workers int `json:"workers" yaml:"workers"`
	// HorizonBufferMinutes is added to the latest arrival plus the longest
	// traversal to bound every entry and exit. Nil means DefaultHorizonBuffer;
	// an explicit 0 is kept.
	HorizonBufferMinutes *int `json:"horizon_buffer_minutes" yaml:"horizon_buffer_minutes"`
}

// BufferMinutes returns a buffer setting for Config.HorizonBufferMinutes.
func BufferMinutes(n int) *int { return &n }

// HorizonBuffer returns the configured buffer, DefaultHorizonBuffer when unset.
func (c Config) HorizonBuffer() int {
	if c.HorizonBufferMinutes == nil {
		return DefaultHorizonBuffer
	}
	return *c.HorizonBufferMinutes
}

// SetDefaults applies the defaults for unset fields.
func (c *Config) SetDefaults() {
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = solver.DefaultTimeLimit.Seconds()
	}
	if c.HorizonBufferMinutes == nil {
		c.HorizonBufferMinutes = BufferMinutes(DefaultHorizonBuffer)
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.TimeLimitSeconds < 0 {
		return fmt.Errorf("time_limit_seconds must be positive")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.HorizonBuffer() < 0 {
		return fmt.Errorf("horizon_buffer_minutes must not be negative")
	}
	return nil
}

// TimeLimit returns the search budget as a duration.
func (c Config) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds * float64(time.Second))
}

// LoadConfig loads a Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err != nil {
		return Config{}, err
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}

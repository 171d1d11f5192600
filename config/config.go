// Package config loads the sectionsched configuration file. Every section can
// be overridden through K_ prefixed environment variables, with "__"
// separating nested keys (K_SOLVER__TIME_LIMIT_SECONDS=30).
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/sectionsched/core/metrics"
	"github.com/kilianp07/sectionsched/core/runlog"
	"github.com/kilianp07/sectionsched/core/scheduler"
	"github.com/kilianp07/sectionsched/infra/monitoring"
	"github.com/kilianp07/sectionsched/infra/mqtt"
)

type Config struct {
	Solver  scheduler.Config  `json:"solver"`
	Input   InputConfig       `json:"input"`
	Output  OutputConfig      `json:"output"`
	Publish PublishConfig     `json:"publish"`
	Metrics metrics.Config    `json:"metrics"`
	RunLog  runlog.Config     `json:"runlog"`
	Sentry  monitoring.Config `json:"sentry"`
	Logging LoggingConfig     `json:"logging"`
}

// InputConfig locates the dataset.
type InputConfig struct {
	Path string `json:"path"`
}

// OutputConfig says where the schedule is written. An empty Path means stdout.
type OutputConfig struct {
	Path    string `json:"path"`
	CSVPath string `json:"csv_path"`
}

// PublishConfig lists the outbound channels for solved schedules.
type PublishConfig struct {
	MQTT mqtt.Config `json:"mqtt"`
}

// Load reads the file at path (JSON or YAML), applies environment overrides,
// defaults and validation. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Solver.SetDefaults()
	c.Publish.MQTT.SetDefaults()
	c.RunLog.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.Publish.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.RunLog.Validate(); err != nil {
		return fmt.Errorf("runlog: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Output.Path != "" && c.Output.Path == c.Output.CSVPath {
		return fmt.Errorf("output: path and csv_path must differ")
	}
	return nil
}

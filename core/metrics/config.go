package metrics

import (
	"fmt"
	"strings"

	"github.com/kilianp07/sectionsched/core/factory"
)

// Config lists the sinks solve runs are reported to.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
}

// Validate checks that every sink names a registered type.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics.sinks[%d]: type is required", i)
		}
		if !sinkRegistry.Has(s.Type) {
			return fmt.Errorf("metrics.sinks[%d]: unknown type %q (registered: %s)", i, s.Type, strings.Join(SinkTypes(), ", "))
		}
	}
	return nil
}

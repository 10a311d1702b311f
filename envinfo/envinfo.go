// Package envinfo records facts about the machine running the checks and
// the backend it targets, for inclusion in the report.
package envinfo

import (
	"context"

	"github.com/rs/zerolog"
)

// Target describes the backend under test.
type Target struct {
	BaseURL     string
	Tunnel      string // bastion address, empty when connecting directly
	ToolVersion string
}

// Collector runs modules and gathers their output by module name.
type Collector struct {
	logger   zerolog.Logger
	executor CommandExecutor
	modules  []Module
}

// DefaultModules returns the modules collected when none are given.
func DefaultModules() []Module {
	return []Module{
		NewSystemModule(),
		NewRuntimeModule(),
		NewTargetModule(),
	}
}

// NewCollector creates a collector. A nil executor runs commands locally and
// no modules means DefaultModules.
func NewCollector(logger zerolog.Logger, executor CommandExecutor, modules ...Module) *Collector {
	if executor == nil {
		executor = NewLocalExecutor()
	}
	if len(modules) == 0 {
		modules = DefaultModules()
	}
	return &Collector{
		logger:   logger,
		executor: executor,
		modules:  modules,
	}
}

// Collect runs every module. A failing module is logged and left out.
func (c *Collector) Collect(ctx context.Context, target Target) map[string]any {
	results := make(map[string]any, len(c.modules))
	for _, module := range c.modules {
		data, err := module.Collect(ctx, c.executor, target)
		if err != nil {
			c.logger.Warn().Err(err).Str("module", module.Name()).Msg("Environment module failed")
			continue
		}
		results[module.Name()] = data
		c.logger.Debug().Str("module", module.Name()).Msg("Collected environment data")
	}
	return results
}

package envinfo

import (
	"context"
)

// Module represents a pluggable environment information collector
type Module interface {
	// Name returns the unique name of this module
	Name() string

	// Collect gathers environment information and returns structured data
	Collect(ctx context.Context, executor CommandExecutor, target Target) (any, error)
}

// CommandExecutor abstracts command execution for modules
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (string, error)
}

package envinfo

import (
	"context"
	"runtime"
)

// RuntimeInfo describes the checker binary.
type RuntimeInfo struct {
	ToolVersion string `json:"tool_version,omitempty"`
	GoVersion   string `json:"go_version"`
	NumCPU      int    `json:"num_cpu"`
}

// RuntimeModule reports the Go runtime the checks ran on.
type RuntimeModule struct{}

// NewRuntimeModule creates a runtime module
func NewRuntimeModule() *RuntimeModule {
	return &RuntimeModule{}
}

// Name returns the module name
func (m *RuntimeModule) Name() string {
	return "runtime"
}

// Collect gathers runtime information
func (m *RuntimeModule) Collect(_ context.Context, _ CommandExecutor, target Target) (any, error) {
	return &RuntimeInfo{
		ToolVersion: target.ToolVersion,
		GoVersion:   runtime.Version(),
		NumCPU:      runtime.NumCPU(),
	}, nil
}

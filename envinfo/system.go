package envinfo

import (
	"context"
	"os"
	"runtime"
	"strings"
)

// SystemInfo represents basic system information
type SystemInfo struct {
	Hostname      string `json:"hostname"`
	KernelVersion string `json:"kernel_version,omitempty"`
	OS            string `json:"os"`
	Architecture  string `json:"architecture"`
}

// SystemModule collects basic system information
type SystemModule struct{}

// NewSystemModule creates a new system information module
func NewSystemModule() *SystemModule {
	return &SystemModule{}
}

// Name returns the module name
func (m *SystemModule) Name() string {
	return "system"
}

// Collect gathers system information. The kernel version is best effort.
func (m *SystemModule) Collect(ctx context.Context, executor CommandExecutor, _ Target) (any, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	info := &SystemInfo{
		Hostname:     hostname,
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
	if kernel, err := executor.Execute(ctx, "uname -r"); err == nil {
		info.KernelVersion = strings.TrimSpace(kernel)
	}
	return info, nil
}

package envinfo

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sort"
)

// TargetInfo describes the backend endpoint as seen from this machine.
type TargetInfo struct {
	BaseURL   string   `json:"base_url"`
	Host      string   `json:"host"`
	Tunnel    string   `json:"tunnel,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
}

// Resolver looks up host addresses.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// TargetModule records where the backend lives.
type TargetModule struct {
	resolver Resolver
}

// NewTargetModule creates a target module using the default resolver.
func NewTargetModule() *TargetModule {
	return &TargetModule{resolver: net.DefaultResolver}
}

// NewTargetModuleWithResolver creates a target module with a custom resolver.
func NewTargetModuleWithResolver(r Resolver) *TargetModule {
	return &TargetModule{resolver: r}
}

// Name returns the module name
func (m *TargetModule) Name() string {
	return "target"
}

// Collect parses the base URL and resolves its host. Resolution is skipped
// when tunnelling since the bastion resolves the name, and a lookup failure
// leaves Addresses empty.
func (m *TargetModule) Collect(ctx context.Context, _ CommandExecutor, target Target) (any, error) {
	u, err := url.Parse(target.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", target.BaseURL, err)
	}

	info := &TargetInfo{
		BaseURL: target.BaseURL,
		Host:    u.Hostname(),
		Tunnel:  target.Tunnel,
	}
	if target.Tunnel == "" && info.Host != "" {
		if addrs, err := m.resolver.LookupHost(ctx, info.Host); err == nil {
			sort.Strings(addrs)
			info.Addresses = addrs
		}
	}
	return info, nil
}

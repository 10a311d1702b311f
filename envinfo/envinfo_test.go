package envinfo

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	outputs map[string]string
}

func (f *fakeExecutor) Execute(_ context.Context, command string) (string, error) {
	out, ok := f.outputs[command]
	if !ok {
		return "", errors.New("command not found")
	}
	return out, nil
}

type fakeResolver struct {
	addrs []string
	err   error
	calls int
}

func (f *fakeResolver) LookupHost(context.Context, string) ([]string, error) {
	f.calls++
	return f.addrs, f.err
}

type failingModule struct{}

func (failingModule) Name() string { return "broken" }
func (failingModule) Collect(context.Context, CommandExecutor, Target) (any, error) {
	return nil, errors.New("boom")
}

func TestSystemModule(t *testing.T) {
	exec := &fakeExecutor{outputs: map[string]string{"uname -r": "6.8.0-45-generic\n"}}

	data, err := NewSystemModule().Collect(context.Background(), exec, Target{})
	require.NoError(t, err)

	info := data.(*SystemInfo)
	assert.NotEmpty(t, info.Hostname)
	assert.Equal(t, "6.8.0-45-generic", info.KernelVersion)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Architecture)

	data, err = NewSystemModule().Collect(context.Background(), &fakeExecutor{}, Target{})
	require.NoError(t, err)
	assert.Empty(t, data.(*SystemInfo).KernelVersion)
}

func TestRuntimeModule(t *testing.T) {
	data, err := NewRuntimeModule().Collect(context.Background(), nil, Target{ToolVersion: "1.2.3"})
	require.NoError(t, err)

	info := data.(*RuntimeInfo)
	assert.Equal(t, "1.2.3", info.ToolVersion)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Positive(t, info.NumCPU)
}

func TestTargetModule(t *testing.T) {
	t.Run("resolves host", func(t *testing.T) {
		resolver := &fakeResolver{addrs: []string{"10.0.0.2", "10.0.0.1"}}
		data, err := NewTargetModuleWithResolver(resolver).Collect(context.Background(), nil,
			Target{BaseURL: "https://api.emailcraft.test:8443/api"})
		require.NoError(t, err)

		info := data.(*TargetInfo)
		assert.Equal(t, "api.emailcraft.test", info.Host)
		assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, info.Addresses)
		assert.Empty(t, info.Tunnel)
	})

	t.Run("tunnel skips resolution", func(t *testing.T) {
		resolver := &fakeResolver{addrs: []string{"10.0.0.1"}}
		data, err := NewTargetModuleWithResolver(resolver).Collect(context.Background(), nil,
			Target{BaseURL: "http://backend.internal/api", Tunnel: "bastion:22"})
		require.NoError(t, err)

		info := data.(*TargetInfo)
		assert.Equal(t, "bastion:22", info.Tunnel)
		assert.Empty(t, info.Addresses)
		assert.Zero(t, resolver.calls)
	})

	t.Run("lookup failure", func(t *testing.T) {
		resolver := &fakeResolver{err: errors.New("no such host")}
		data, err := NewTargetModuleWithResolver(resolver).Collect(context.Background(), nil,
			Target{BaseURL: "http://nowhere.test/api"})
		require.NoError(t, err)
		assert.Empty(t, data.(*TargetInfo).Addresses)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := NewTargetModule().Collect(context.Background(), nil, Target{BaseURL: "http://[::1"})
		assert.Error(t, err)
	})
}

func TestCollector_SkipsFailingModules(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	collector := NewCollector(logger, &fakeExecutor{}, NewRuntimeModule(), failingModule{})
	results := collector.Collect(context.Background(), Target{ToolVersion: "dev"})

	assert.Contains(t, results, "runtime")
	assert.NotContains(t, results, "broken")
	assert.Contains(t, logs.String(), `"module":"broken"`)
	assert.Contains(t, logs.String(), "boom")
}

func TestNewCollector_Defaults(t *testing.T) {
	collector := NewCollector(zerolog.Nop(), nil)

	assert.IsType(t, &LocalExecutor{}, collector.executor)
	var names []string
	for _, m := range collector.modules {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"system", "runtime", "target"}, names)
}

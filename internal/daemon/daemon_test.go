package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/internal/config"
	"github.com/agentgate/agentgate/internal/domain"
)

// stubConfig is an in-memory config.Modifier.
type stubConfig struct {
	providers []config.ProviderEntry
	fallback  []string
	timeouts  config.Timeouts
}

func (c *stubConfig) AddProvider(entry config.ProviderEntry) error {
	c.providers = append(c.providers, entry)
	return nil
}

func (c *stubConfig) RemoveProvider(_ string) error { return nil }

func (c *stubConfig) ListProviders() []config.ProviderEntry { return c.providers }

func (c *stubConfig) FallbackProviders() []string { return c.fallback }

func (c *stubConfig) TimeoutConfig() config.Timeouts { return c.timeouts }

var _ config.Modifier = (*stubConfig)(nil)

func TestNewDaemon_Validations(t *testing.T) {
	t.Parallel()

	cfg := &stubConfig{}

	_, err := NewDaemon(nil, cfg, "localhost:8090")
	require.Error(t, err)
	require.Contains(t, err.Error(), "logger cannot be nil")

	_, err = NewDaemon(hclog.NewNullLogger(), nil, "localhost:8090")
	require.Error(t, err)
	require.Contains(t, err.Error(), "config cannot be nil")

	_, err = NewDaemon(hclog.NewNullLogger(), cfg, "not-an-addr")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid API address")
}

func TestNewDaemon_RegistersConfiguredProviders(t *testing.T) {
	t.Parallel()

	cfg := &stubConfig{
		providers: []config.ProviderEntry{
			{Name: "fs", Command: "uvx", Args: []string{"mcp-server-fs"}},
			{Name: "maps", Command: "npx"},
		},
		fallback: []string{"fs"},
	}

	d, err := NewDaemon(hclog.NewNullLogger(), cfg, "localhost:8090")
	require.NoError(t, err)

	require.Equal(t, []string{"fs", "maps"}, d.registry.Names())

	// Providers start with unknown health until the first probe sweep.
	for _, health := range d.registry.HealthList() {
		require.Equal(t, domain.HealthStatusUnknown, health.Status)
	}

	require.Equal(t, []string{"fs"}, d.apiServer.invokeDefaults.Fallback)
}

func TestNewDaemon_AppliesOptions(t *testing.T) {
	t.Parallel()

	cfg := &stubConfig{}

	d, err := NewDaemon(
		hclog.NewNullLogger(),
		cfg,
		"localhost:8090",
		WithConnectTimeout(2*time.Second),
		WithExecTimeout(20*time.Second),
		WithHealthCheckInterval(time.Minute),
	)
	require.NoError(t, err)

	require.Equal(t, 2*time.Second, d.opts.ConnectTimeout)
	require.Equal(t, 20*time.Second, d.opts.ExecTimeout)
	require.Equal(t, time.Minute, d.opts.HealthCheckInterval)
	require.Equal(t, 2*time.Second, d.apiServer.invokeDefaults.ConnectTimeout)
	require.Equal(t, 20*time.Second, d.apiServer.invokeDefaults.ExecTimeout)
}

func TestDaemon_ProbeAllProvidersRecordsHealth(t *testing.T) {
	t.Parallel()

	cfg := &stubConfig{
		providers: []config.ProviderEntry{
			{Name: "fs", Command: "uvx"},
		},
	}

	d, err := NewDaemon(hclog.NewNullLogger(), cfg, "localhost:8090")
	require.NoError(t, err)

	// Replace the stdio probe so the sweep does not spawn processes.
	d.probe = func(_ context.Context, _ domain.ProviderConfig) error {
		return nil
	}

	d.probeAllProviders(context.Background())

	health, err := d.registry.Health("fs")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStatusOK, health.Status)
}

func TestDaemon_HealthCheckLoopStopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := &stubConfig{
		providers: []config.ProviderEntry{
			{Name: "fs", Command: "uvx"},
		},
	}

	d, err := NewDaemon(hclog.NewNullLogger(), cfg, "localhost:8090")
	require.NoError(t, err)

	probes := make(chan struct{}, 16)
	d.probe = func(_ context.Context, _ domain.ProviderConfig) error {
		probes <- struct{}{}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.healthCheckLoop(ctx, 10*time.Millisecond)
		close(done)
	}()

	// At least the immediate sweep plus one tick.
	for range 2 {
		select {
		case <-probes:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for health probe")
		}
	}

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("health check loop did not stop after cancel")
	}
}

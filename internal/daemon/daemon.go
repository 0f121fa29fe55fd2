package daemon

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/agentgate/agentgate/internal/agent"
	"github.com/agentgate/agentgate/internal/api"
	"github.com/agentgate/agentgate/internal/config"
	"github.com/agentgate/agentgate/internal/invoke"
	"github.com/agentgate/agentgate/internal/provider"
)

const (
	clientName    = "agentgate"
	clientVersion = "1.0.0"
)

// Daemon wires the provider registry, launcher, invoker and HTTP API
// together, probes provider health on an interval, and serves until its
// context is canceled.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger    hclog.Logger
	registry  *provider.Registry
	probe     provider.Probe
	apiServer *APIServer
	opts      Options
}

// NewDaemon builds a daemon from the loaded configuration.
// All providers from the config are registered; health starts unknown until
// the first probe sweep completes.
func NewDaemon(logger hclog.Logger, cfg config.Modifier, apiAddr string, opt ...Option) (*Daemon, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg == nil || reflect.ValueOf(cfg).IsNil() {
		return nil, fmt.Errorf("config cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	logger = logger.Named("daemon")

	registry, err := provider.NewRegistry(logger, provider.WithProbeTimeout(opts.ProbeTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create provider registry: %w", err)
	}
	for _, entry := range cfg.ListProviders() {
		registry.Register(entry.ToProviderConfig())
	}

	launcher, err := provider.NewStdioLauncher(logger, clientName, clientVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider launcher: %w", err)
	}

	dispatcher, err := agent.NewDispatcher(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	invoker, err := invoke.NewInvoker(logger, launcher, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoker: %w", err)
	}

	coordinator, err := invoke.NewCoordinator(logger, invoker)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback coordinator: %w", err)
	}

	deps, err := NewAPIDependencies(logger, registry, registry, coordinator, apiAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon API dependencies: %w", err)
	}

	apiOpts := append([]APIOption{}, opts.APIOptions...)
	apiOpts = append(apiOpts, WithInvokeDefaults(api.InvokeDefaults{
		Fallback:       cfg.FallbackProviders(),
		ConnectTimeout: opts.ConnectTimeout,
		ExecTimeout:    opts.ExecTimeout,
	}))
	apiServer, err := NewAPIServer(deps, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon API server: %w", err)
	}

	return &Daemon{
		logger:    logger,
		registry:  registry,
		probe:     launcher.PingProbe(),
		apiServer: apiServer,
		opts:      opts,
	}, nil
}

// StartAndManage runs the health check loop and the API server until ctx is
// canceled. It returns the API server's error, or ctx.Err() on shutdown.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	d.logger.Info(
		"starting daemon",
		"providers", len(d.registry.Names()),
		"health_interval", d.opts.HealthCheckInterval,
	)

	go d.healthCheckLoop(ctx, d.opts.HealthCheckInterval)

	return d.apiServer.Start(ctx)
}

// healthCheckLoop probes every registered provider once immediately, then on
// each tick, until ctx is canceled.
func (d *Daemon) healthCheckLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.probeAllProviders(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("stopping provider health checks")
			return
		case <-ticker.C:
			d.probeAllProviders(ctx)
		}
	}
}

func (d *Daemon) probeAllProviders(ctx context.Context) {
	for _, name := range d.registry.Names() {
		health, err := d.registry.HealthCheck(ctx, name, d.probe)
		if err != nil {
			d.logger.Error("health check failed", "provider", name, "error", err)
			continue
		}
		d.logger.Debug("health check complete", "provider", name, "status", health.Status)
	}
}

package provider

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/agentgate/agentgate/internal/domain"
	"github.com/agentgate/agentgate/internal/errors"
)

// Probe verifies that a provider described by cfg can serve a trivial request.
// A typical probe starts the provider, pings it, and shuts it down again.
type Probe func(ctx context.Context, cfg domain.ProviderConfig) error

// Registry stores named provider configurations and their latest health records.
// It is safe for concurrent use by multiple goroutines.
// NewRegistry should be used to create instances of Registry.
type Registry struct {
	mu           sync.RWMutex
	logger       hclog.Logger
	configs      map[string]domain.ProviderConfig
	order        []string
	health       map[string]domain.ProviderHealth
	probeTimeout time.Duration
}

// NewRegistry creates an empty Registry with optional configuration applied.
func NewRegistry(logger hclog.Logger, opt ...Option) (*Registry, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid registry options: %w", err)
	}

	return &Registry{
		logger:       logger.Named("registry"),
		configs:      map[string]domain.ProviderConfig{},
		health:       map[string]domain.ProviderHealth{},
		probeTimeout: opts.ProbeTimeout,
	}, nil
}

// Register adds or replaces a configuration under its name, last write wins.
// A freshly registered provider starts with unknown health until a check runs.
func (r *Registry) Register(cfg domain.ProviderConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[cfg.Name]; !exists {
		r.order = append(r.order, cfg.Name)
	}
	r.configs[cfg.Name] = cfg
	r.health[cfg.Name] = domain.ProviderHealth{Name: cfg.Name, Status: domain.HealthStatusUnknown}
}

// Get returns the configuration registered under name.
func (r *Registry) Get(name string) (domain.ProviderConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[name]
	return cfg, ok
}

// List returns all registered configurations in registration order.
func (r *Registry) List() []domain.ProviderConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ProviderConfig, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.configs[name])
	}
	return out
}

// ListHealthy returns configurations whose last recorded health check succeeded,
// in registration order. Health checks are opt-in, so the result is empty until
// at least one provider has been checked successfully.
func (r *Registry) ListHealthy() []domain.ProviderConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ProviderConfig, 0, len(r.order))
	for _, name := range r.order {
		if r.health[name].Status.Healthy() {
			out = append(out, r.configs[name])
		}
	}
	return out
}

// HealthCheck runs the probe against the named provider under the registry's
// probe timeout and records the result. Probe failure is recorded as data, not
// returned as an error; the only error is an unregistered provider name.
func (r *Registry) HealthCheck(ctx context.Context, name string, probe Probe) (domain.ProviderHealth, error) {
	cfg, ok := r.Get(name)
	if !ok {
		return domain.ProviderHealth{}, fmt.Errorf("%w: %s", errors.ErrProviderNotFound, name)
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				errCh <- fmt.Errorf("probe panic: %v", p)
			}
		}()
		errCh <- probe(probeCtx, cfg)
	}()

	var status domain.HealthStatus
	var lastError string
	var latency *time.Duration

	select {
	case <-probeCtx.Done():
		status = domain.HealthStatusTimeout
		lastError = probeCtx.Err().Error()
	case err := <-errCh:
		elapsed := time.Since(start)
		latency = &elapsed
		if err != nil {
			status = domain.HealthStatusUnreachable
			lastError = err.Error()
		} else {
			status = domain.HealthStatusOK
		}
	}

	health := r.record(name, status, lastError, latency)
	r.logger.Debug("health check recorded", "provider", name, "status", status, "error", lastError)

	return health, nil
}

// Health returns the health record for a single registered provider.
func (r *Registry) Health(name string) (domain.ProviderHealth, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if health, ok := r.health[name]; ok {
		return health, nil
	}

	return domain.ProviderHealth{}, fmt.Errorf("%w: %s", errors.ErrHealthNotTracked, name)
}

// HealthList returns a copy of all known provider health records, in registration order.
func (r *Registry) HealthList() []domain.ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ProviderHealth, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.health[name])
	}
	return out
}

// record atomically replaces the health entry for name.
// LastSuccessful is carried forward from the previous record unless the check succeeded.
func (r *Registry) record(
	name string,
	status domain.HealthStatus,
	lastError string,
	latency *time.Duration,
) domain.ProviderHealth {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()

	var lastSuccessful *time.Time
	if status == domain.HealthStatusOK {
		lastSuccessful = &now
	} else {
		lastSuccessful = r.health[name].LastSuccessful
	}

	health := domain.ProviderHealth{
		Name:           name,
		Status:         status,
		LastError:      lastError,
		Latency:        latency,
		LastChecked:    &now,
		LastSuccessful: lastSuccessful,
	}
	r.health[name] = health

	return health
}

// Names returns the registered provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

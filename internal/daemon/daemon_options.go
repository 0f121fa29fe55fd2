package daemon

import (
	"fmt"
	"time"
)

// Options contains optional configuration for the daemon.
// NewOptions should be used to create instances of Options.
type Options struct {
	// APIOptions contains functional options for the API server.
	APIOptions []APIOption

	// ConnectTimeout bounds provider startup for one invocation.
	ConnectTimeout time.Duration

	// ExecTimeout bounds the agent request once providers are up.
	ExecTimeout time.Duration

	// HealthCheckInterval specifies how often providers are probed.
	HealthCheckInterval time.Duration

	// ProbeTimeout specifies how long a single health probe may run.
	ProbeTimeout time.Duration
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
// Starts with default values, then applies options in order with later options overriding earlier ones.
func NewOptions(opts ...Option) (Options, error) {
	options := defaultOptions()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithAPIOptions configures API server options.
// Replaces all previous API configuration including CORS settings.
func WithAPIOptions(apiOpts ...APIOption) Option {
	return func(o *Options) error {
		o.APIOptions = apiOpts
		return nil
	}
}

// WithConnectTimeout configures how long to wait for providers to start for one invocation.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("connect timeout must be positive, got %v", timeout)
		}
		o.ConnectTimeout = timeout
		return nil
	}
}

// WithExecTimeout configures how long to wait for the agent to answer a prompt.
func WithExecTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("exec timeout must be positive, got %v", timeout)
		}
		o.ExecTimeout = timeout
		return nil
	}
}

// WithHealthCheckInterval configures how often providers are probed.
func WithHealthCheckInterval(interval time.Duration) Option {
	return func(o *Options) error {
		if interval <= 0 {
			return fmt.Errorf("health check interval must be positive, got %v", interval)
		}
		o.HealthCheckInterval = interval
		return nil
	}
}

// WithProbeTimeout configures maximum time to wait for health probe responses.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("probe timeout must be positive, got %v", timeout)
		}
		o.ProbeTimeout = timeout
		return nil
	}
}

// DefaultConnectTimeout is the default budget for provider startup.
func DefaultConnectTimeout() time.Duration {
	return 10 * time.Second
}

// DefaultExecTimeout is the default budget for agent execution.
func DefaultExecTimeout() time.Duration {
	return 60 * time.Second
}

// DefaultHealthCheckInterval is the default interval for health checks.
func DefaultHealthCheckInterval() time.Duration {
	return 30 * time.Second
}

// DefaultProbeTimeout is the default timeout for a single health probe.
func DefaultProbeTimeout() time.Duration {
	return 10 * time.Second
}

// defaultOptions returns Options with default values.
func defaultOptions() Options {
	return Options{
		ConnectTimeout:      DefaultConnectTimeout(),
		ExecTimeout:         DefaultExecTimeout(),
		HealthCheckInterval: DefaultHealthCheckInterval(),
		ProbeTimeout:        DefaultProbeTimeout(),
	}
}

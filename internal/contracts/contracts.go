// Package contracts declares the collaborator interfaces shared between the
// registry, the invoker and the daemon. Implementations live in their own
// packages; consumers accept these interfaces and return concrete types.
package contracts

import (
	"context"
	"time"

	"github.com/agentgate/agentgate/internal/domain"
)

// ProviderHandle is a running tool provider process.
// Close must always be called once the handle is no longer needed,
// regardless of how the invocation it served ended.
type ProviderHandle interface {
	// Name returns the provider name the handle was started from.
	Name() string

	// Ping issues a trivial request to verify the provider is responsive.
	Ping(ctx context.Context) error

	// Tools returns the names of tools the provider exposes,
	// filtered to the configured allow-list.
	Tools(ctx context.Context) ([]string, error)

	// CallTool invokes a named tool with the given arguments and returns its text output.
	CallTool(ctx context.Context, tool string, args map[string]any) (string, error)

	// Close terminates the provider process and releases its resources.
	Close() error
}

// ProviderLauncher starts tool provider processes from their configurations.
// Start blocks until the provider has signalled readiness or ctx is done.
type ProviderLauncher interface {
	Start(ctx context.Context, cfg domain.ProviderConfig) (ProviderHandle, error)
}

// Agent accepts a natural-language prompt and a set of started provider
// handles, and produces output text. Its internal protocol is opaque here.
type Agent interface {
	Complete(ctx context.Context, prompt string, providers []ProviderHandle) (string, error)
}

// ProviderStore provides read access to registered provider configurations.
type ProviderStore interface {
	// Get returns the configuration registered under name.
	Get(name string) (domain.ProviderConfig, bool)

	// List returns all registered configurations in registration order.
	List() []domain.ProviderConfig

	// ListHealthy returns configurations whose last recorded health check
	// succeeded, in registration order.
	ListHealthy() []domain.ProviderConfig
}

// HealthMonitor provides access to the health status of tool providers.
type HealthMonitor interface {
	// Health returns the health record for a single registered provider.
	Health(name string) (domain.ProviderHealth, error)

	// HealthList returns a copy of all known provider health records.
	HealthList() []domain.ProviderHealth
}

// Invoker performs exactly one bounded request against an agent configured
// with the given providers. Failures are returned as outcome data, never errors.
type Invoker interface {
	Invoke(
		ctx context.Context,
		providers []domain.ProviderConfig,
		prompt string,
		connectTimeout time.Duration,
		execTimeout time.Duration,
	) domain.InvocationOutcome
}

// FallbackInvoker attempts the primary provider set and, on failure, the
// secondary set exactly once, returning the final outcome verbatim.
type FallbackInvoker interface {
	InvokeWithFallback(
		ctx context.Context,
		primary []domain.ProviderConfig,
		secondary []domain.ProviderConfig,
		prompt string,
		connectTimeout time.Duration,
		execTimeout time.Duration,
	) domain.InvocationOutcome
}

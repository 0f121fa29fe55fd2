package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/agentgate/agentgate/internal/contracts"
)

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "0.0.0.0:8092").
	Addr string

	// Store provides registered provider configurations.
	Store contracts.ProviderStore

	// HealthMonitor provides provider health records.
	HealthMonitor contracts.HealthMonitor

	// Coordinator performs fallback-aware invocations for the invoke endpoint.
	Coordinator contracts.FallbackInvoker

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	store contracts.ProviderStore,
	monitor contracts.HealthMonitor,
	coordinator contracts.FallbackInvoker,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:          addr,
		Store:         store,
		HealthMonitor: monitor,
		Coordinator:   coordinator,
		Logger:        logger,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := IsValidAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if d.Store == nil || reflect.ValueOf(d.Store).IsNil() {
		return fmt.Errorf("provider store cannot be nil")
	}
	if d.HealthMonitor == nil || reflect.ValueOf(d.HealthMonitor).IsNil() {
		return fmt.Errorf("health monitor cannot be nil")
	}
	if d.Coordinator == nil || reflect.ValueOf(d.Coordinator).IsNil() {
		return fmt.Errorf("coordinator cannot be nil")
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}

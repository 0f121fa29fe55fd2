package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentgate/agentgate/internal/contracts"
	"github.com/agentgate/agentgate/internal/domain"
	"github.com/agentgate/agentgate/internal/errors"
)

// InvokeDefaults supplies values for invoke requests that leave fields unset:
// the configured fallback provider set and the daemon's time budgets.
type InvokeDefaults struct {
	// Fallback names the reduced provider set used when the request does not carry one.
	Fallback []string

	// ConnectTimeout bounds provider startup.
	ConnectTimeout time.Duration

	// ExecTimeout bounds agent execution.
	ExecTimeout time.Duration
}

// InvokeRequest is the incoming request for POST /invoke.
type InvokeRequest struct {
	Body struct {
		// Prompt is the natural-language request passed to the agent.
		Prompt string `doc:"Prompt to send to the agent" example:"list_files src" json:"prompt"`

		// Providers names the primary provider set. Empty means all registered providers.
		Providers []string `doc:"Primary provider set (default: all registered)" json:"providers,omitempty"`

		// Fallback names the secondary provider set tried once after a primary failure.
		// Empty means the daemon's configured fallback set.
		Fallback []string `doc:"Fallback provider set (default: configured fallback)" json:"fallback,omitempty"`
	}
}

// Outcome is the API view of an invocation outcome.
// Failed invocations are data, not HTTP errors: the response is always 200
// with success=false and a failure classification.
type Outcome struct {
	ID      string `doc:"Invocation identifier" json:"id"`
	Success bool   `doc:"Whether the invocation produced output" json:"success"`
	Output  string `doc:"Agent output text, present on success" json:"output,omitempty"`
	Failure string `doc:"Failure kind: timeout, provider-error or unknown" json:"failure,omitempty"`
	Message string `doc:"Human-readable failure description" json:"message,omitempty"`
	Elapsed string `doc:"Total wall-clock time for the invocation" json:"elapsed"`
}

// InvokeResponse represents the wrapped API response for an invocation.
type InvokeResponse struct {
	Body Outcome
}

// DomainOutcome wraps domain.InvocationOutcome for conversion to the API type.
type DomainOutcome domain.InvocationOutcome

// ToAPIType converts a wrapped domain type to an API-safe type.
func (d DomainOutcome) ToAPIType() (Outcome, error) {
	return Outcome{
		ID:      d.ID,
		Success: d.Success,
		Output:  d.Output,
		Failure: string(d.Failure),
		Message: d.Message,
		Elapsed: d.Elapsed.String(),
	}, nil
}

// RegisterInvokeRoutes sets up the bounded invocation API endpoint route.
func RegisterInvokeRoutes(
	routerAPI huma.API,
	store contracts.ProviderStore,
	coordinator contracts.FallbackInvoker,
	apiPath string,
	defaults InvokeDefaults,
) {
	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "invoke",
			Method:      http.MethodPost,
			Path:        apiPath,
			Summary:     "Invoke the agent with bounded timeouts and one-level fallback",
			Tags:        []string{"Invoke"},
		},
		func(ctx context.Context, input *InvokeRequest) (*InvokeResponse, error) {
			return handleInvoke(ctx, store, coordinator, defaults, input)
		},
	)
}

func handleInvoke(
	ctx context.Context,
	store contracts.ProviderStore,
	coordinator contracts.FallbackInvoker,
	defaults InvokeDefaults,
	input *InvokeRequest,
) (*InvokeResponse, error) {
	prompt := strings.TrimSpace(input.Body.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt cannot be empty", errors.ErrBadRequest)
	}

	primary, err := resolveProviders(store, input.Body.Providers)
	if err != nil {
		return nil, err
	}
	if len(input.Body.Providers) == 0 {
		primary = store.List()
	}

	fallbackNames := input.Body.Fallback
	if len(fallbackNames) == 0 {
		fallbackNames = defaults.Fallback
	}
	secondary, err := resolveProviders(store, fallbackNames)
	if err != nil {
		return nil, err
	}

	outcome := coordinator.InvokeWithFallback(
		ctx,
		primary,
		secondary,
		prompt,
		defaults.ConnectTimeout,
		defaults.ExecTimeout,
	)

	data, err := DomainOutcome(outcome).ToAPIType()
	if err != nil {
		return nil, err
	}

	resp := &InvokeResponse{}
	resp.Body = data

	return resp, nil
}

// resolveProviders maps provider names to their registered configurations.
// Unknown names are a client error.
func resolveProviders(store contracts.ProviderStore, names []string) ([]domain.ProviderConfig, error) {
	configs := make([]domain.ProviderConfig, 0, len(names))
	for _, name := range names {
		cfg, ok := store.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errors.ErrProviderNotFound, name)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

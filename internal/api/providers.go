package api

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentgate/agentgate/internal/contracts"
	"github.com/agentgate/agentgate/internal/domain"
	"github.com/agentgate/agentgate/internal/errors"
)

// Provider is the API view of a registered tool provider configuration.
// Environment variable values are never exposed, only their keys.
type Provider struct {
	Name    string   `doc:"Unique provider name" json:"name"`
	Command string   `doc:"Executable used to launch the provider" json:"command"`
	Args    []string `doc:"Arguments passed to the command" json:"args,omitempty"`
	EnvKeys []string `doc:"Names of configured environment overrides" json:"envKeys,omitempty"`
	Tools   []string `doc:"Allowed tool names" json:"tools,omitempty"`
}

// ProvidersResponse is the response for GET /providers.
type ProvidersResponse struct {
	Body struct {
		Providers []Provider `doc:"Registered tool providers" json:"providers"`
	}
}

// ProviderRequest represents the incoming request for a single provider.
type ProviderRequest struct {
	Name string `doc:"Name of the provider" example:"fs" path:"name"`
}

// ProviderResponse represents the wrapped API response for a single provider.
type ProviderResponse struct {
	Body Provider
}

// DomainProviderConfig wraps domain.ProviderConfig for conversion to the API type.
type DomainProviderConfig domain.ProviderConfig

// ToAPIType converts a wrapped domain type to an API-safe type.
func (d DomainProviderConfig) ToAPIType() (Provider, error) {
	return Provider{
		Name:    d.Name,
		Command: d.Command,
		Args:    d.Args,
		EnvKeys: slices.Sorted(maps.Keys(d.Env)),
		Tools:   d.Tools,
	}, nil
}

// RegisterProviderRoutes sets up provider listing API endpoint routes.
func RegisterProviderRoutes(routerAPI huma.API, store contracts.ProviderStore, apiPathPrefix string) {
	providerAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Providers"}

	huma.Register(
		providerAPI,
		huma.Operation{
			OperationID: "listProviders",
			Method:      http.MethodGet,
			Path:        "/",
			Summary:     "List registered tool providers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ProvidersResponse, error) {
			return handleListProviders(store)
		},
	)

	huma.Register(
		providerAPI,
		huma.Operation{
			OperationID: "getProvider",
			Method:      http.MethodGet,
			Path:        "/{name}",
			Summary:     "Get a registered tool provider",
			Tags:        tags,
		},
		func(ctx context.Context, input *ProviderRequest) (*ProviderResponse, error) {
			return handleGetProvider(store, input.Name)
		},
	)
}

func handleListProviders(store contracts.ProviderStore) (*ProvidersResponse, error) {
	configs := store.List()

	providers := make([]Provider, 0, len(configs))
	for _, cfg := range configs {
		data, err := DomainProviderConfig(cfg).ToAPIType()
		if err != nil {
			return nil, err
		}
		providers = append(providers, data)
	}

	resp := &ProvidersResponse{}
	resp.Body.Providers = providers

	return resp, nil
}

func handleGetProvider(store contracts.ProviderStore, name string) (*ProviderResponse, error) {
	cfg, ok := store.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrProviderNotFound, name)
	}

	data, err := DomainProviderConfig(cfg).ToAPIType()
	if err != nil {
		return nil, err
	}

	resp := &ProviderResponse{}
	resp.Body = data

	return resp, nil
}

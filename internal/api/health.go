// Package api defines the HTTP API surface for the daemon: request/response
// types kept separate from domain types, and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentgate/agentgate/internal/contracts"
	"github.com/agentgate/agentgate/internal/domain"
)

const (
	HealthStatusOK          HealthStatus = "ok"
	HealthStatusTimeout     HealthStatus = "timeout"
	HealthStatusUnreachable HealthStatus = "unreachable"
	HealthStatusUnknown     HealthStatus = "unknown"
)

// DomainProviderHealth is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainProviderHealth domain.ProviderHealth

// HealthStatus represents the current status of a tool provider when establishing its health.
type HealthStatus string

// ProviderHealth is used to provide information about ongoing health checks performed on tool providers.
type ProviderHealth struct {
	Name           string       `json:"name"`
	Status         HealthStatus `json:"status"`
	LastError      string       `json:"lastError,omitempty"`
	Latency        *string      `json:"latency,omitempty"`
	LastChecked    *time.Time   `json:"lastChecked,omitempty"`
	LastSuccessful *time.Time   `json:"lastSuccessful,omitempty"`
}

// ProvidersHealthResponse is the response for GET /health/providers.
type ProvidersHealthResponse struct {
	Body struct {
		Providers []ProviderHealth `doc:"Tracked tool provider health statuses" json:"providers"`
	}
}

// ProviderHealthRequest represents the incoming request for obtaining ProviderHealth.
type ProviderHealthRequest struct {
	Name string `doc:"Name of the provider to check" example:"fs" path:"name"`
}

// ProviderHealthResponse represents the wrapped API response for a ProviderHealth.
type ProviderHealthResponse struct {
	Body ProviderHealth
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainProviderHealth) ToAPIType() (ProviderHealth, error) {
	status, err := parseHealthStatus(d.Status)
	if err != nil {
		return ProviderHealth{}, err
	}

	var latency *string
	if d.Latency != nil {
		s := d.Latency.String()
		latency = &s
	}
	return ProviderHealth{
		Name:           d.Name,
		Status:         status,
		LastError:      d.LastError,
		Latency:        latency,
		LastChecked:    d.LastChecked,
		LastSuccessful: d.LastSuccessful,
	}, nil
}

// RegisterHealthRoutes sets up health-related API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, monitor contracts.HealthMonitor, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "listProvidersHealth",
			Method:      http.MethodGet,
			Path:        "/providers",
			Summary:     "List the health statuses for all providers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ProvidersHealthResponse, error) {
			return handleHealthProviders(monitor)
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getProviderHealth",
			Method:      http.MethodGet,
			Path:        "/providers/{name}",
			Summary:     "Get the health status of a provider",
			Tags:        tags,
		},
		func(ctx context.Context, input *ProviderHealthRequest) (*ProviderHealthResponse, error) {
			return handleHealthProvider(monitor, input.Name)
		},
	)
}

// handleHealthProviders is the handler for retrieving the current health for all registered providers.
func handleHealthProviders(monitor contracts.HealthMonitor) (*ProvidersHealthResponse, error) {
	providers := monitor.HealthList()

	apiProviders := make([]ProviderHealth, 0, len(providers))
	for _, p := range providers {
		data, err := DomainProviderHealth(p).ToAPIType()
		if err != nil {
			return nil, err
		}
		apiProviders = append(apiProviders, data)
	}

	resp := &ProvidersHealthResponse{}
	resp.Body.Providers = apiProviders

	return resp, nil
}

// handleHealthProvider is the handler for retrieving the current health of the specified provider.
func handleHealthProvider(monitor contracts.HealthMonitor, name string) (*ProviderHealthResponse, error) {
	health, err := monitor.Health(name)
	if err != nil {
		return nil, err
	}

	data, err := DomainProviderHealth(health).ToAPIType()
	if err != nil {
		return nil, err
	}

	response := ProviderHealthResponse{}
	response.Body = data

	return &response, nil
}

func parseHealthStatus(status domain.HealthStatus) (HealthStatus, error) {
	switch status {
	case domain.HealthStatusOK:
		return HealthStatusOK, nil
	case domain.HealthStatusTimeout:
		return HealthStatusTimeout, nil
	case domain.HealthStatusUnreachable:
		return HealthStatusUnreachable, nil
	case domain.HealthStatusUnknown:
		return HealthStatusUnknown, nil
	default:
		return "", fmt.Errorf("unknown health status: %s", status)
	}
}

package domain

import "time"

const (
	HealthStatusOK          HealthStatus = "ok"
	HealthStatusTimeout     HealthStatus = "timeout"
	HealthStatusUnreachable HealthStatus = "unreachable"
	HealthStatusUnknown     HealthStatus = "unknown"
)

// HealthStatus represents the internal state of a tool provider's availability.
type HealthStatus string

// Healthy reports whether the status indicates a usable provider.
func (s HealthStatus) Healthy() bool {
	return s == HealthStatusOK
}

// ProviderHealth tracks the internal health state for a tool provider.
// Records are only written by health checks; readers observe a snapshot.
type ProviderHealth struct {
	Name           string
	Status         HealthStatus
	LastError      string
	Latency        *time.Duration
	LastChecked    *time.Time
	LastSuccessful *time.Time
}

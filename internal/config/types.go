package config

import (
	"fmt"
	"time"

	"github.com/agentgate/agentgate/internal/domain"
)

var (
	_ Provider = (*DefaultLoader)(nil)
	_ Modifier = (*Config)(nil)
)

type Loader interface {
	Load(path string) (Modifier, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

type Modifier interface {
	AddProvider(entry ProviderEntry) error
	RemoveProvider(name string) error
	ListProviders() []ProviderEntry
	FallbackProviders() []string
	TimeoutConfig() Timeouts
}

type DefaultLoader struct{}

// Config represents the .agentgate.toml file structure.
type Config struct {
	Providers      []ProviderEntry `toml:"providers"`
	Fallback       FallbackEntry   `toml:"fallback,omitempty"`
	Timeouts       Timeouts        `toml:"timeouts,omitempty"`
	configFilePath string          `toml:"-"`
}

// ProviderEntry represents the configuration of a single external tool provider.
type ProviderEntry struct {
	// Name is the unique name/ID for the provider, referenced by the user.
	// e.g. 'fs'
	Name string `json:"name" toml:"name" yaml:"name"`

	// Command is the executable used to launch the provider.
	// e.g. 'uvx'
	Command string `json:"command" toml:"command" yaml:"command"`

	// Args are passed to the command in order.
	Args []string `json:"args,omitempty" toml:"args,omitempty" yaml:"args,omitempty"`

	// Env contains environment variable overrides for the provider process.
	Env map[string]string `json:"env,omitempty" toml:"env,omitempty" yaml:"env,omitempty"`

	// Tools lists the names of the tools which should be allowed on this provider.
	// e.g. 'list_files'
	Tools []string `json:"tools,omitempty" toml:"tools,omitempty" yaml:"tools,omitempty"`
}

// FallbackEntry names the reduced provider set used when the full set fails.
// The named providers should be a subset of, or simpler than, the full set;
// this is a caller contract and is not enforced.
type FallbackEntry struct {
	Providers []string `json:"providers,omitempty" toml:"providers,omitempty" yaml:"providers,omitempty"`
}

// Timeouts holds the time budgets applied to provider and agent operations.
type Timeouts struct {
	// Connect bounds provider startup for one invocation (all providers jointly).
	Connect Duration `json:"connect,omitempty" toml:"connect,omitempty" yaml:"connect,omitempty"`

	// Exec bounds the agent request once providers are up.
	Exec Duration `json:"exec,omitempty" toml:"exec,omitempty" yaml:"exec,omitempty"`

	// HealthCheck bounds a single health probe.
	HealthCheck Duration `json:"healthCheck,omitempty" toml:"health_check,omitempty" yaml:"health_check,omitempty"`

	// HealthInterval is the period between daemon health check sweeps.
	HealthInterval Duration `json:"healthInterval,omitempty" toml:"health_interval,omitempty" yaml:"health_interval,omitempty"`

	// Shutdown bounds graceful shutdown of the daemon API server.
	Shutdown Duration `json:"shutdown,omitempty" toml:"shutdown,omitempty" yaml:"shutdown,omitempty"`
}

// Duration wraps time.Duration so TOML and YAML files can use strings like "10s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Or returns the duration, or fallback when unset.
func (d Duration) Or(fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return time.Duration(d)
}

// ToProviderConfig converts a config file entry into the domain representation.
func (e ProviderEntry) ToProviderConfig() domain.ProviderConfig {
	return domain.ProviderConfig{
		Name:    e.Name,
		Command: e.Command,
		Args:    e.Args,
		Env:     e.Env,
		Tools:   e.Tools,
	}
}

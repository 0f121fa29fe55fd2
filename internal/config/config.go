package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/agentgate/agentgate/internal/flags"
	"github.com/agentgate/agentgate/internal/perms"
)

// Init creates the base skeleton configuration file for the agentgate project.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content := `providers = []`

	if err := os.WriteFile(path, []byte(content), perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (d *DefaultLoader) Load(path string) (Modifier, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found, run: 'agentgate init'", ErrConfigLoadFailed)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg *Config
	_, err = toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: failed to decode config from file (%s): %w",
			ErrConfigLoadFailed,
			flags.ConfigFile,
			err,
		)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: config file is empty (%s)", ErrConfigLoadFailed, path)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate existing config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	// Update the path that loaded this file to track it.
	cfg.configFilePath = path

	return cfg, nil
}

// AddProvider attempts to persist a new tool provider to the configuration file (.agentgate.toml).
func (c *Config) AddProvider(entry ProviderEntry) error {
	c.Providers = append(c.Providers, entry)

	if err := c.validate(); err != nil {
		return err
	}

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// RemoveProvider removes a provider entry by name from the configuration file (.agentgate.toml).
func (c *Config) RemoveProvider(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	filtered := make([]ProviderEntry, 0, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name != name {
			filtered = append(filtered, p)
		}
	}

	if len(filtered) == len(c.Providers) {
		return fmt.Errorf("provider '%s' not found in config", name)
	}

	c.Providers = filtered

	if err := c.validate(); err != nil {
		return err
	}

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// ListProviders returns a copy of the currently configured provider entries.
// This provides read-only access to the internal configuration without exposing direct mutation of the underlying slice.
func (c *Config) ListProviders() []ProviderEntry {
	return slices.Clone(c.Providers)
}

// FallbackProviders returns the names of the providers in the reduced fallback set.
func (c *Config) FallbackProviders() []string {
	return slices.Clone(c.Fallback.Providers)
}

// TimeoutConfig returns the configured time budgets.
func (c *Config) TimeoutConfig() Timeouts {
	return c.Timeouts
}

// SaveConfig saves the current configuration to the config file.
func (c *Config) SaveConfig() error {
	return c.saveConfig()
}

func (c *Config) saveConfig() error {
	if c.configFilePath == "" {
		return fmt.Errorf("config file path not present")
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configFilePath, data, perms.RegularFile)
}

// validate orchestrates validation of configuration structure.
func (c *Config) validate() error {
	if err := c.validateProviders(); err != nil {
		return err
	}

	if err := c.validateFallback(); err != nil {
		return err
	}

	return nil
}

// validateProviders ensures all ProviderEntry's in Config have a name and command, with no duplicate names.
func (c *Config) validateProviders() error {
	seen := map[string]struct{}{}

	for _, entry := range c.Providers {
		if strings.TrimSpace(entry.Name) == "" {
			return fmt.Errorf("provider entry has empty name")
		}
		if _, ok := seen[entry.Name]; ok {
			return fmt.Errorf("duplicate provider name '%s'", entry.Name)
		}
		seen[entry.Name] = struct{}{}
		if strings.TrimSpace(entry.Command) == "" {
			return fmt.Errorf("provider entry '%s' has empty command", entry.Name)
		}
	}
	return nil
}

// validateFallback ensures every fallback provider name refers to a configured provider.
func (c *Config) validateFallback() error {
	for _, name := range c.Fallback.Providers {
		if !slices.ContainsFunc(c.Providers, func(p ProviderEntry) bool { return p.Name == name }) {
			return fmt.Errorf("fallback names unknown provider '%s'", name)
		}
	}
	return nil
}

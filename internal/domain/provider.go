package domain

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
)

// ProviderConfig describes how to launch one external tool provider process.
// Configs are immutable once registered; replacing a config means registering
// a new value under the same name.
type ProviderConfig struct {
	// Name is the unique key the provider is registered under, e.g. 'fs'.
	Name string

	// Command is the executable used to start the provider, e.g. 'uvx'.
	Command string

	// Args are passed to the command in order.
	Args []string

	// Env contains environment variable overrides for the provider process.
	Env map[string]string

	// Tools lists the names of the tools which are allowed on this provider.
	Tools []string
}

// Environ returns the full environment for the provider process: the current
// process environment with the config's overrides applied on top.
func (c ProviderConfig) Environ() []string {
	overrides := make([]string, 0, len(c.Env))
	for _, k := range slices.Sorted(maps.Keys(c.Env)) {
		overrides = append(overrides, fmt.Sprintf("%s=%s", k, c.Env[k]))
	}
	return mergeEnvs(os.Environ(), overrides)
}

func mergeEnvs(baseEnvs, overrideEnvs []string) []string {
	envMap := make(map[string]string, len(baseEnvs))

	for _, e := range baseEnvs {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	for _, e := range overrideEnvs {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	result := make([]string, 0, len(envMap))
	for _, k := range slices.Sorted(maps.Keys(envMap)) {
		result = append(result, fmt.Sprintf("%s=%s", k, envMap[k]))
	}
	return result
}

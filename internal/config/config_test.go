package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".agentgate.toml")
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := tempConfigPath(t)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestDefaultLoader_Init(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}
	path := tempConfigPath(t)

	require.NoError(t, loader.Init(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "providers = []", string(data))

	// Loading the skeleton succeeds with zero providers.
	cfg, err := loader.Load(path)
	require.NoError(t, err)
	require.Empty(t, cfg.ListProviders())
}

func TestDefaultLoader_InitRefusesExistingFile(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}
	path := writeConfigFile(t, `providers = []`)

	err := loader.Init(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestDefaultLoader_Load(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
[[providers]]
name = "fs"
command = "uvx"
args = ["mcp-server-fs", "--root", "."]
tools = ["list_files", "read_file"]

[providers.env]
FS_READ_ONLY = "true"

[[providers]]
name = "maps"
command = "npx"

[fallback]
providers = ["fs"]

[timeouts]
connect = "5s"
exec = "30s"
health_check = "2s"
`)

	loader := &DefaultLoader{}
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	providers := cfg.ListProviders()
	require.Len(t, providers, 2)
	require.Equal(t, "fs", providers[0].Name)
	require.Equal(t, "uvx", providers[0].Command)
	require.Equal(t, []string{"mcp-server-fs", "--root", "."}, providers[0].Args)
	require.Equal(t, map[string]string{"FS_READ_ONLY": "true"}, providers[0].Env)
	require.Equal(t, []string{"list_files", "read_file"}, providers[0].Tools)

	require.Equal(t, []string{"fs"}, cfg.FallbackProviders())

	timeouts := cfg.TimeoutConfig()
	require.Equal(t, 5*time.Second, time.Duration(timeouts.Connect))
	require.Equal(t, 30*time.Second, time.Duration(timeouts.Exec))
	require.Equal(t, 2*time.Second, time.Duration(timeouts.HealthCheck))
	require.Equal(t, time.Duration(0), time.Duration(timeouts.HealthInterval))
}

func TestDefaultLoader_LoadValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing file path",
			content: "",
			wantErr: "cannot be found",
		},
		{
			name: "duplicate provider names",
			content: `
[[providers]]
name = "fs"
command = "uvx"

[[providers]]
name = "fs"
command = "npx"
`,
			wantErr: "duplicate provider name",
		},
		{
			name: "empty provider name",
			content: `
[[providers]]
name = ""
command = "uvx"
`,
			wantErr: "empty name",
		},
		{
			name: "empty command",
			content: `
[[providers]]
name = "fs"
command = ""
`,
			wantErr: "empty command",
		},
		{
			name: "fallback names unknown provider",
			content: `
[[providers]]
name = "fs"
command = "uvx"

[fallback]
providers = ["maps"]
`,
			wantErr: "fallback names unknown provider",
		},
		{
			name: "invalid duration",
			content: `
providers = []

[timeouts]
connect = "not-a-duration"
`,
			wantErr: "invalid duration",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			loader := &DefaultLoader{}

			var path string
			if tc.content == "" {
				path = tempConfigPath(t) // never created
			} else {
				path = writeConfigFile(t, tc.content)
			}

			_, err := loader.Load(path)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrConfigLoadFailed)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConfig_AddProviderPersists(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}
	path := tempConfigPath(t)
	require.NoError(t, loader.Init(path))

	cfg, err := loader.Load(path)
	require.NoError(t, err)

	require.NoError(t, cfg.AddProvider(ProviderEntry{
		Name:    "fs",
		Command: "uvx",
		Args:    []string{"mcp-server-fs"},
	}))

	reloaded, err := loader.Load(path)
	require.NoError(t, err)
	providers := reloaded.ListProviders()
	require.Len(t, providers, 1)
	require.Equal(t, "fs", providers[0].Name)
}

func TestConfig_AddProviderRejectsDuplicate(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}
	path := writeConfigFile(t, `
[[providers]]
name = "fs"
command = "uvx"
`)

	cfg, err := loader.Load(path)
	require.NoError(t, err)

	err = cfg.AddProvider(ProviderEntry{Name: "fs", Command: "npx"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate provider name")
}

func TestConfig_RemoveProvider(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}
	path := writeConfigFile(t, `
[[providers]]
name = "fs"
command = "uvx"

[[providers]]
name = "maps"
command = "npx"
`)

	cfg, err := loader.Load(path)
	require.NoError(t, err)

	require.NoError(t, cfg.RemoveProvider("maps"))

	reloaded, err := loader.Load(path)
	require.NoError(t, err)
	providers := reloaded.ListProviders()
	require.Len(t, providers, 1)
	require.Equal(t, "fs", providers[0].Name)
}

func TestConfig_RemoveProviderErrors(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}
	path := writeConfigFile(t, `
[[providers]]
name = "fs"
command = "uvx"
`)

	cfg, err := loader.Load(path)
	require.NoError(t, err)

	require.Error(t, cfg.RemoveProvider(""))
	require.Error(t, cfg.RemoveProvider("missing"))
}

func TestConfig_RemoveProviderRejectsBreakingFallback(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}
	path := writeConfigFile(t, `
[[providers]]
name = "fs"
command = "uvx"

[[providers]]
name = "maps"
command = "npx"

[fallback]
providers = ["fs"]
`)

	cfg, err := loader.Load(path)
	require.NoError(t, err)

	// Removing the provider the fallback set references must fail validation.
	err = cfg.RemoveProvider("fs")
	require.Error(t, err)
	require.Contains(t, err.Error(), "fallback names unknown provider")
}

func TestDuration_Or(t *testing.T) {
	t.Parallel()

	require.Equal(t, 10*time.Second, Duration(0).Or(10*time.Second))
	require.Equal(t, 3*time.Second, Duration(3*time.Second).Or(10*time.Second))
}

func TestProviderEntry_ToProviderConfig(t *testing.T) {
	t.Parallel()

	entry := ProviderEntry{
		Name:    "fs",
		Command: "uvx",
		Args:    []string{"mcp-server-fs"},
		Env:     map[string]string{"A": "1"},
		Tools:   []string{"list_files"},
	}

	cfg := entry.ToProviderConfig()
	require.Equal(t, "fs", cfg.Name)
	require.Equal(t, "uvx", cfg.Command)
	require.Equal(t, []string{"mcp-server-fs"}, cfg.Args)
	require.Equal(t, map[string]string{"A": "1"}, cfg.Env)
	require.Equal(t, []string{"list_files"}, cfg.Tools)
}

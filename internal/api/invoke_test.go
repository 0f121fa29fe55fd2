package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/internal/domain"
	"github.com/agentgate/agentgate/internal/errors"
)

// recordingCoordinator captures the provider sets and budgets it was handed.
type recordingCoordinator struct {
	outcome        domain.InvocationOutcome
	primary        []string
	secondary      []string
	prompt         string
	connectTimeout time.Duration
	execTimeout    time.Duration
}

func (c *recordingCoordinator) InvokeWithFallback(
	_ context.Context,
	primary []domain.ProviderConfig,
	secondary []domain.ProviderConfig,
	prompt string,
	connectTimeout time.Duration,
	execTimeout time.Duration,
) domain.InvocationOutcome {
	for _, p := range primary {
		c.primary = append(c.primary, p.Name)
	}
	for _, p := range secondary {
		c.secondary = append(c.secondary, p.Name)
	}
	c.prompt = prompt
	c.connectTimeout = connectTimeout
	c.execTimeout = execTimeout
	return c.outcome
}

func invokeInput(prompt string, providers, fallback []string) *InvokeRequest {
	input := &InvokeRequest{}
	input.Body.Prompt = prompt
	input.Body.Providers = providers
	input.Body.Fallback = fallback
	return input
}

func TestHandleInvoke_Defaults(t *testing.T) {
	t.Parallel()

	store := &stubStore{
		configs: []domain.ProviderConfig{
			{Name: "fs", Command: "uvx"},
			{Name: "maps", Command: "npx"},
		},
	}
	coordinator := &recordingCoordinator{
		outcome: domain.InvocationOutcome{ID: "inv-1", Success: true, Output: "a.txt", Elapsed: time.Second},
	}
	defaults := InvokeDefaults{
		Fallback:       []string{"fs"},
		ConnectTimeout: 10 * time.Second,
		ExecTimeout:    60 * time.Second,
	}

	resp, err := handleInvoke(context.Background(), store, coordinator, defaults, invokeInput("list_files src", nil, nil))
	require.NoError(t, err)

	// Empty request sets fall back to all registered providers and the configured fallback.
	require.Equal(t, []string{"fs", "maps"}, coordinator.primary)
	require.Equal(t, []string{"fs"}, coordinator.secondary)
	require.Equal(t, "list_files src", coordinator.prompt)
	require.Equal(t, 10*time.Second, coordinator.connectTimeout)
	require.Equal(t, 60*time.Second, coordinator.execTimeout)

	require.True(t, resp.Body.Success)
	require.Equal(t, "inv-1", resp.Body.ID)
	require.Equal(t, "a.txt", resp.Body.Output)
	require.Equal(t, "1s", resp.Body.Elapsed)
}

func TestHandleInvoke_ExplicitProviderSets(t *testing.T) {
	t.Parallel()

	store := &stubStore{
		configs: []domain.ProviderConfig{
			{Name: "fs", Command: "uvx"},
			{Name: "maps", Command: "npx"},
		},
	}
	coordinator := &recordingCoordinator{
		outcome: domain.InvocationOutcome{ID: "inv-2", Success: true},
	}

	_, err := handleInvoke(
		context.Background(),
		store,
		coordinator,
		InvokeDefaults{Fallback: []string{"maps"}, ConnectTimeout: time.Second, ExecTimeout: time.Second},
		invokeInput("list_files", []string{"maps"}, []string{"fs"}),
	)
	require.NoError(t, err)
	require.Equal(t, []string{"maps"}, coordinator.primary)
	require.Equal(t, []string{"fs"}, coordinator.secondary)
}

func TestHandleInvoke_FailureIsDataNotError(t *testing.T) {
	t.Parallel()

	store := &stubStore{
		configs: []domain.ProviderConfig{{Name: "fs", Command: "uvx"}},
	}
	coordinator := &recordingCoordinator{
		outcome: domain.InvocationOutcome{
			ID:      "inv-3",
			Failure: domain.FailureTimeout,
			Message: "context deadline exceeded",
			Elapsed: 5 * time.Second,
		},
	}

	resp, err := handleInvoke(
		context.Background(),
		store,
		coordinator,
		InvokeDefaults{ConnectTimeout: time.Second, ExecTimeout: time.Second},
		invokeInput("list_files", nil, nil),
	)
	require.NoError(t, err)
	require.False(t, resp.Body.Success)
	require.Equal(t, "timeout", resp.Body.Failure)
	require.Equal(t, "context deadline exceeded", resp.Body.Message)
}

func TestHandleInvoke_EmptyPrompt(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	coordinator := &recordingCoordinator{}

	_, err := handleInvoke(context.Background(), store, coordinator, InvokeDefaults{}, invokeInput("   ", nil, nil))
	require.ErrorIs(t, err, errors.ErrBadRequest)
}

func TestHandleInvoke_UnknownProvider(t *testing.T) {
	t.Parallel()

	store := &stubStore{
		configs: []domain.ProviderConfig{{Name: "fs", Command: "uvx"}},
	}
	coordinator := &recordingCoordinator{}

	_, err := handleInvoke(
		context.Background(),
		store,
		coordinator,
		InvokeDefaults{},
		invokeInput("list_files", []string{"nope"}, nil),
	)
	require.ErrorIs(t, err, errors.ErrProviderNotFound)

	_, err = handleInvoke(
		context.Background(),
		store,
		coordinator,
		InvokeDefaults{},
		invokeInput("list_files", nil, []string{"nope"}),
	)
	require.ErrorIs(t, err, errors.ErrProviderNotFound)
}

func TestDomainOutcome_ToAPIType(t *testing.T) {
	t.Parallel()

	outcome := domain.InvocationOutcome{
		ID:      "inv-9",
		Failure: domain.FailureProvider,
		Message: "fs: spawn failed",
		Elapsed: 1500 * time.Millisecond,
	}

	got, err := DomainOutcome(outcome).ToAPIType()
	require.NoError(t, err)
	require.Equal(t, "inv-9", got.ID)
	require.False(t, got.Success)
	require.Equal(t, "provider-error", got.Failure)
	require.Equal(t, "fs: spawn failed", got.Message)
	require.Equal(t, "1.5s", got.Elapsed)
}

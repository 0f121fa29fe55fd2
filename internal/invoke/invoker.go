// Package invoke implements bounded, fallback-aware invocation of an agent
// backed by external tool providers. Provider startup and agent execution
// carry independent time budgets, and provider processes are terminated on
// every exit path.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/agentgate/agentgate/internal/contracts"
	"github.com/agentgate/agentgate/internal/domain"
)

var _ contracts.Invoker = (*Invoker)(nil)

// Invoker performs exactly one bounded request against an agent configured
// with a set of providers. It never returns an error: every failure is
// converted into an InvocationOutcome so callers can branch on failure kind.
// NewInvoker should be used to create instances of Invoker.
type Invoker struct {
	logger   hclog.Logger
	launcher contracts.ProviderLauncher
	agent    contracts.Agent
}

// NewInvoker creates an Invoker from its collaborators.
func NewInvoker(logger hclog.Logger, launcher contracts.ProviderLauncher, agent contracts.Agent) (*Invoker, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if launcher == nil {
		return nil, fmt.Errorf("launcher cannot be nil")
	}
	if agent == nil {
		return nil, fmt.Errorf("agent cannot be nil")
	}

	return &Invoker{
		logger:   logger.Named("invoker"),
		launcher: launcher,
		agent:    agent,
	}, nil
}

// Invoke starts all providers (phase 1, bounded by connectTimeout), issues the
// prompt to the agent (phase 2, bounded by execTimeout) and terminates the
// providers before returning. All started providers are closed on every exit
// path, including timeouts and panics.
func (i *Invoker) Invoke(
	ctx context.Context,
	providers []domain.ProviderConfig,
	prompt string,
	connectTimeout time.Duration,
	execTimeout time.Duration,
) (outcome domain.InvocationOutcome) {
	id := uuid.NewString()
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("invocation panicked", "id", id, "panic", r)
			outcome = domain.InvocationOutcome{
				ID:      id,
				Failure: domain.FailureUnknown,
				Message: fmt.Sprintf("panic: %v", r),
				Elapsed: time.Since(started),
			}
		}
	}()

	i.logger.Debug("starting invocation", "id", id, "providers", len(providers))

	// Phase 1: connect.
	handles, err := i.startAll(ctx, providers, connectTimeout)
	if err != nil {
		closeAll(handles)
		return i.fail(id, started, err)
	}
	defer closeAll(handles)

	// Phase 2: execute.
	execCtx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	output, err := i.agent.Complete(execCtx, prompt, handles)
	if err != nil {
		return i.fail(id, started, err)
	}

	i.logger.Debug("invocation succeeded", "id", id, "elapsed", time.Since(started))

	return domain.InvocationOutcome{
		ID:      id,
		Success: true,
		Output:  output,
		Elapsed: time.Since(started),
	}
}

// startAll launches every provider concurrently and waits for all of them
// jointly before returning (a rendezvous barrier). If any start fails or the
// connect budget expires, the whole phase fails; handles that did start are
// returned so the caller can terminate them.
func (i *Invoker) startAll(
	ctx context.Context,
	providers []domain.ProviderConfig,
	connectTimeout time.Duration,
) ([]contracts.ProviderHandle, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	slots := make([]contracts.ProviderHandle, len(providers))
	g, gctx := errgroup.WithContext(connectCtx)

	for idx, cfg := range providers {
		g.Go(func() error {
			handle, err := i.launcher.Start(gctx, cfg)
			if err != nil {
				return err
			}
			slots[idx] = handle
			return nil
		})
	}

	err := g.Wait()

	handles := make([]contracts.ProviderHandle, 0, len(slots))
	for _, h := range slots {
		if h != nil {
			handles = append(handles, h)
		}
	}

	return handles, err
}

// fail converts an error from either phase into a failure outcome.
// Deadline errors classify as timeout; everything the collaborators surface
// as an error is a provider failure. Unknown is reserved for recovered panics.
func (i *Invoker) fail(id string, started time.Time, err error) domain.InvocationOutcome {
	kind := domain.FailureProvider
	if errors.Is(err, context.DeadlineExceeded) {
		kind = domain.FailureTimeout
	}

	i.logger.Warn("invocation failed", "id", id, "kind", kind, "error", err)

	return domain.InvocationOutcome{
		ID:      id,
		Failure: kind,
		Message: err.Error(),
		Elapsed: time.Since(started),
	}
}

func closeAll(handles []contracts.ProviderHandle) {
	for _, h := range handles {
		_ = h.Close()
	}
}

package invoke

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/agentgate/agentgate/internal/contracts"
	"github.com/agentgate/agentgate/internal/domain"
)

var _ contracts.FallbackInvoker = (*Coordinator)(nil)

// Coordinator improves availability by retrying a failed invocation once with
// a reduced provider set. The secondary set should be a subset of, or simpler
// than, the primary set; that relation is a caller contract and is not
// enforced here. Fallback is bounded to exactly one retry level to avoid
// retry storms.
// NewCoordinator should be used to create instances of Coordinator.
type Coordinator struct {
	logger  hclog.Logger
	invoker contracts.Invoker
}

// NewCoordinator creates a Coordinator wrapping the given invoker.
func NewCoordinator(logger hclog.Logger, invoker contracts.Invoker) (*Coordinator, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if invoker == nil {
		return nil, fmt.Errorf("invoker cannot be nil")
	}

	return &Coordinator{
		logger:  logger.Named("fallback"),
		invoker: invoker,
	}, nil
}

// InvokeWithFallback attempts the primary provider set, and on any failure
// attempts the secondary set exactly once, returning that outcome verbatim.
func (c *Coordinator) InvokeWithFallback(
	ctx context.Context,
	primary []domain.ProviderConfig,
	secondary []domain.ProviderConfig,
	prompt string,
	connectTimeout time.Duration,
	execTimeout time.Duration,
) domain.InvocationOutcome {
	outcome := c.invoker.Invoke(ctx, primary, prompt, connectTimeout, execTimeout)
	if outcome.Success {
		return outcome
	}

	c.logger.Warn(
		"primary provider set failed, retrying with fallback set",
		"id", outcome.ID,
		"kind", outcome.Failure,
		"fallback_providers", len(secondary),
	)

	return c.invoker.Invoke(ctx, secondary, prompt, connectTimeout, execTimeout)
}

// Package agent provides the built-in Agent implementation: a deterministic
// dispatcher that routes a prompt to a named tool on the started providers.
// Hosted-model agents satisfy the same contracts.Agent interface but live
// outside this repository.
package agent

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/agentgate/agentgate/internal/contracts"
	"github.com/agentgate/agentgate/internal/errors"
)

var _ contracts.Agent = (*Dispatcher)(nil)

// Dispatcher interprets the first word of a prompt as a tool name and the
// remainder as the tool's query argument. The first provider exposing the
// tool wins; provider order is the caller's priority order.
type Dispatcher struct {
	logger hclog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(logger hclog.Logger) (*Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Dispatcher{
		logger: logger.Named("agent"),
	}, nil
}

// Complete routes the prompt to a tool on one of the providers and returns the
// tool's text output.
func (d *Dispatcher) Complete(ctx context.Context, prompt string, providers []contracts.ProviderHandle) (string, error) {
	tool, query, err := splitPrompt(prompt)
	if err != nil {
		return "", err
	}

	for _, handle := range providers {
		tools, err := handle.Tools(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: %w", errors.ErrAgentCompletion, err)
		}

		if !slices.Contains(tools, tool) {
			continue
		}

		d.logger.Debug("dispatching tool call", "provider", handle.Name(), "tool", tool)

		args := map[string]any{}
		if query != "" {
			args["query"] = query
		}

		out, err := handle.CallTool(ctx, tool, args)
		if err != nil {
			return "", fmt.Errorf("%w: %w", errors.ErrAgentCompletion, err)
		}
		return out, nil
	}

	return "", fmt.Errorf("%w: %w: no provider exposes tool '%s'", errors.ErrAgentCompletion, errors.ErrToolForbidden, tool)
}

// splitPrompt separates the leading tool name from the remaining query text.
func splitPrompt(prompt string) (tool, query string, err error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", "", fmt.Errorf("%w: prompt cannot be empty", errors.ErrBadRequest)
	}

	parts := strings.SplitN(prompt, " ", 2)
	tool = parts[0]
	if len(parts) == 2 {
		query = strings.TrimSpace(parts[1])
	}
	return tool, query, nil
}

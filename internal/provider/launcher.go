package provider

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/agentgate/agentgate/internal/contracts"
	"github.com/agentgate/agentgate/internal/domain"
	"github.com/agentgate/agentgate/internal/errors"
)

var _ contracts.ProviderLauncher = (*StdioLauncher)(nil)

// StdioLauncher starts tool providers as subprocesses speaking MCP over
// stdin/stdout. The Initialize handshake doubles as the readiness signal:
// Start does not return a handle until the provider has answered it.
type StdioLauncher struct {
	logger        hclog.Logger
	clientName    string
	clientVersion string
}

// NewStdioLauncher creates a launcher that identifies itself to providers
// using the given client name and version.
func NewStdioLauncher(logger hclog.Logger, clientName, clientVersion string) (*StdioLauncher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &StdioLauncher{
		logger:        logger.Named("launcher"),
		clientName:    clientName,
		clientVersion: clientVersion,
	}, nil
}

// Start launches the provider process and performs the MCP Initialize
// handshake. The returned handle owns the subprocess; callers must Close it
// on every path. Cancellation of ctx aborts the handshake and the process is
// terminated before Start returns.
func (l *StdioLauncher) Start(ctx context.Context, cfg domain.ProviderConfig) (contracts.ProviderHandle, error) {
	l.logger.Info(
		"starting tool provider",
		"name", cfg.Name,
		"command", cfg.Command,
		"args", cfg.Args,
	)

	stdioClient, err := client.NewStdioMCPClient(cfg.Command, cfg.Environ(), cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", errors.ErrProviderStart, cfg.Name, err)
	}

	// Drain stderr so the subprocess cannot block on a full pipe.
	if stderr, ok := client.GetStderr(stdioClient); ok {
		go l.drainStderr(ctx, cfg.Name, stderr)
	}

	initResult, err := stdioClient.Initialize(
		ctx,
		mcp.InitializeRequest{
			Params: mcp.InitializeParams{
				ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
				ClientInfo:      mcp.Implementation{Name: l.clientName, Version: l.clientVersion},
			},
		})
	if err != nil {
		_ = stdioClient.Close()
		return nil, fmt.Errorf("%w: '%s': initialize: %w", errors.ErrProviderStart, cfg.Name, err)
	}

	l.logger.Info(
		"tool provider ready",
		"name", cfg.Name,
		"server", fmt.Sprintf("%s@%s", initResult.ServerInfo.Name, initResult.ServerInfo.Version),
	)

	return &stdioHandle{
		name:    cfg.Name,
		allowed: cfg.Tools,
		client:  stdioClient,
	}, nil
}

// PingProbe returns a health probe that starts the provider, issues a trivial
// ping request and terminates it again.
func (l *StdioLauncher) PingProbe() Probe {
	return func(ctx context.Context, cfg domain.ProviderConfig) error {
		handle, err := l.Start(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = handle.Close()
		}()

		return handle.Ping(ctx)
	}
}

func (l *StdioLauncher) drainStderr(ctx context.Context, name string, stderr io.Reader) {
	reader := bufio.NewReader(stderr)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					l.logger.Error("error reading provider stderr", "name", name, "error", err)
				}
				return
			}
			l.logger.Debug("provider stderr", "name", name, "line", line)
		}
	}
}

// stdioHandle wraps a running MCP stdio client as a ProviderHandle.
type stdioHandle struct {
	name    string
	allowed []string
	client  *client.Client
}

var _ contracts.ProviderHandle = (*stdioHandle)(nil)

func (h *stdioHandle) Name() string {
	return h.name
}

func (h *stdioHandle) Ping(ctx context.Context) error {
	return h.client.Ping(ctx)
}

// Tools returns the provider's tool names, restricted to the configured
// allow-list when one is present.
func (h *stdioHandle) Tools(ctx context.Context) ([]string, error) {
	result, err := h.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrToolListFailed, h.name, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: %s: no result", errors.ErrToolListFailed, h.name)
	}

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		if len(h.allowed) > 0 && !slices.Contains(h.allowed, tool.Name) {
			continue
		}
		names = append(names, tool.Name)
	}
	return names, nil
}

func (h *stdioHandle) CallTool(ctx context.Context, tool string, args map[string]any) (string, error) {
	if len(h.allowed) > 0 && !slices.Contains(h.allowed, tool) {
		return "", fmt.Errorf("%w: %s/%s", errors.ErrToolForbidden, h.name, tool)
	}

	result, err := h.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s/%s: %w", errors.ErrToolCallFailed, h.name, tool, err)
	}
	if result == nil {
		return "", fmt.Errorf("%w: %s/%s: result was nil", errors.ErrToolCallFailed, h.name, tool)
	}
	if result.IsError {
		return "", fmt.Errorf("%w: %s/%s: %s", errors.ErrToolCallFailed, h.name, tool, extractMessage(result.Content))
	}

	return extractMessage(result.Content), nil
}

func (h *stdioHandle) Close() error {
	return h.client.Close()
}

// extractMessage attempts to extract a single message from content that is returned from a tool call.
func extractMessage(content []mcp.Content) string {
	for _, c := range content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

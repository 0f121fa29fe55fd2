package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/internal/contracts"
	"github.com/agentgate/agentgate/internal/errors"
)

// fakeHandle is an in-memory ProviderHandle recording tool calls.
type fakeHandle struct {
	name      string
	tools     []string
	toolsErr  error
	output    string
	callErr   error
	callsMade []recordedCall
}

type recordedCall struct {
	tool string
	args map[string]any
}

func (h *fakeHandle) Name() string { return h.name }

func (h *fakeHandle) Ping(_ context.Context) error { return nil }

func (h *fakeHandle) Tools(_ context.Context) ([]string, error) {
	if h.toolsErr != nil {
		return nil, h.toolsErr
	}
	return h.tools, nil
}

func (h *fakeHandle) CallTool(_ context.Context, tool string, args map[string]any) (string, error) {
	h.callsMade = append(h.callsMade, recordedCall{tool: tool, args: args})
	if h.callErr != nil {
		return "", h.callErr
	}
	return h.output, nil
}

func (h *fakeHandle) Close() error { return nil }

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()

	d, err := NewDispatcher(hclog.NewNullLogger())
	require.NoError(t, err)

	return d
}

func TestNewDispatcher_RequiresLogger(t *testing.T) {
	t.Parallel()

	_, err := NewDispatcher(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "logger cannot be nil")
}

func TestDispatcher_RoutesToFirstProviderExposingTool(t *testing.T) {
	t.Parallel()

	first := &fakeHandle{name: "maps", tools: []string{"geocode"}}
	second := &fakeHandle{name: "fs", tools: []string{"list_files"}, output: "a.txt, b.txt"}
	d := newTestDispatcher(t)

	out, err := d.Complete(context.Background(), "list_files src", []contracts.ProviderHandle{first, second})
	require.NoError(t, err)
	require.Equal(t, "a.txt, b.txt", out)

	require.Empty(t, first.callsMade)
	require.Len(t, second.callsMade, 1)
	require.Equal(t, "list_files", second.callsMade[0].tool)
	require.Equal(t, map[string]any{"query": "src"}, second.callsMade[0].args)
}

func TestDispatcher_ProviderOrderIsPriorityOrder(t *testing.T) {
	t.Parallel()

	first := &fakeHandle{name: "fs-a", tools: []string{"list_files"}, output: "from a"}
	second := &fakeHandle{name: "fs-b", tools: []string{"list_files"}, output: "from b"}
	d := newTestDispatcher(t)

	out, err := d.Complete(context.Background(), "list_files", []contracts.ProviderHandle{first, second})
	require.NoError(t, err)
	require.Equal(t, "from a", out)
	require.Empty(t, second.callsMade)
}

func TestDispatcher_PromptWithoutQueryOmitsArgument(t *testing.T) {
	t.Parallel()

	handle := &fakeHandle{name: "fs", tools: []string{"list_files"}, output: "ok"}
	d := newTestDispatcher(t)

	_, err := d.Complete(context.Background(), "list_files", []contracts.ProviderHandle{handle})
	require.NoError(t, err)
	require.Len(t, handle.callsMade, 1)
	require.Empty(t, handle.callsMade[0].args)
}

func TestDispatcher_EmptyPrompt(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)

	_, err := d.Complete(context.Background(), "  ", nil)
	require.ErrorIs(t, err, errors.ErrBadRequest)
}

func TestDispatcher_NoProviderExposesTool(t *testing.T) {
	t.Parallel()

	handle := &fakeHandle{name: "maps", tools: []string{"geocode"}}
	d := newTestDispatcher(t)

	_, err := d.Complete(context.Background(), "list_files src", []contracts.ProviderHandle{handle})
	require.ErrorIs(t, err, errors.ErrAgentCompletion)
	require.ErrorIs(t, err, errors.ErrToolForbidden)
	require.Contains(t, err.Error(), "list_files")
}

func TestDispatcher_ToolListFailure(t *testing.T) {
	t.Parallel()

	handle := &fakeHandle{name: "fs", toolsErr: fmt.Errorf("%w: fs: broken pipe", errors.ErrToolListFailed)}
	d := newTestDispatcher(t)

	_, err := d.Complete(context.Background(), "list_files src", []contracts.ProviderHandle{handle})
	require.ErrorIs(t, err, errors.ErrAgentCompletion)
	require.ErrorIs(t, err, errors.ErrToolListFailed)
}

func TestDispatcher_ToolCallFailure(t *testing.T) {
	t.Parallel()

	handle := &fakeHandle{
		name:    "fs",
		tools:   []string{"list_files"},
		callErr: fmt.Errorf("%w: fs/list_files: permission denied", errors.ErrToolCallFailed),
	}
	d := newTestDispatcher(t)

	_, err := d.Complete(context.Background(), "list_files /etc", []contracts.ProviderHandle{handle})
	require.ErrorIs(t, err, errors.ErrAgentCompletion)
	require.ErrorIs(t, err, errors.ErrToolCallFailed)
}

func TestSplitPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		prompt    string
		wantTool  string
		wantQuery string
		wantErr   bool
	}{
		{
			name:      "tool and query",
			prompt:    "list_files src/main",
			wantTool:  "list_files",
			wantQuery: "src/main",
		},
		{
			name:     "tool only",
			prompt:   "list_files",
			wantTool: "list_files",
		},
		{
			name:      "extra whitespace",
			prompt:    "  list_files   src  ",
			wantTool:  "list_files",
			wantQuery: "src",
		},
		{
			name:    "empty prompt",
			prompt:  "   ",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tool, query, err := splitPrompt(tc.prompt)
			if tc.wantErr {
				require.ErrorIs(t, err, errors.ErrBadRequest)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantTool, tool)
			require.Equal(t, tc.wantQuery, query)
		})
	}
}

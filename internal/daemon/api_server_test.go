package daemon

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/internal/errors"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "bad request",
			err:        fmt.Errorf("%w: prompt cannot be empty", errors.ErrBadRequest),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "provider not found",
			err:        fmt.Errorf("%w: fs", errors.ErrProviderNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "health not tracked",
			err:        fmt.Errorf("%w: fs", errors.ErrHealthNotTracked),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "tool forbidden",
			err:        fmt.Errorf("%w: fs/delete_all", errors.ErrToolForbidden),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "provider start failed",
			err:        fmt.Errorf("%w: 'fs': spawn failed", errors.ErrProviderStart),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "tool list failed",
			err:        fmt.Errorf("%w: fs", errors.ErrToolListFailed),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "tool call failed",
			err:        fmt.Errorf("%w: fs/list_files", errors.ErrToolCallFailed),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "agent completion failed",
			err:        fmt.Errorf("%w: no provider exposes tool", errors.ErrAgentCompletion),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unmapped error",
			err:        stdErrors.New("something else entirely"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			statusErr := mapError(hclog.NewNullLogger(), tc.err)
			require.Equal(t, tc.wantStatus, statusErr.GetStatus())
		})
	}
}

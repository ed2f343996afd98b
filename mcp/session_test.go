package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAcceptsPreferredVersionAndEmitsInitialized(t *testing.T) {
	var notifiedMethod string
	submit := func(ctx context.Context, method string, params any) (*Response, error) {
		result := initializeResult{
			ProtocolVersion: PreferredProtocolVersion,
			ServerInfo:      ServerInfo{Name: "test-server", Version: "1.0.0"},
			Capabilities:    Capabilities{Tools: &ToolsCapability{}},
		}
		b, _ := json.Marshal(result)
		return &Response{Result: b}, nil
	}
	notify := func(ctx context.Context, method string, params any) error {
		notifiedMethod = method
		return nil
	}

	session, err := initialize(context.Background(), submit, notify, ClientInfo{Name: "chuk-mcp"}, DefaultClientCapabilities())
	require.NoError(t, err)
	assert.Equal(t, PreferredProtocolVersion, session.ProtocolVersion)
	assert.Equal(t, "test-server", session.ServerInfo.Name)
	assert.True(t, session.HasToolsCapability())
	assert.Equal(t, "notifications/initialized", notifiedMethod)
}

func TestInitializeAcceptsOlderSupportedVersion(t *testing.T) {
	submit := func(ctx context.Context, method string, params any) (*Response, error) {
		result := initializeResult{ProtocolVersion: "2024-11-05"}
		b, _ := json.Marshal(result)
		return &Response{Result: b}, nil
	}
	notify := func(ctx context.Context, method string, params any) error { return nil }

	session, err := initialize(context.Background(), submit, notify, ClientInfo{}, Capabilities{})
	require.NoError(t, err)
	assert.Equal(t, "2024-11-05", session.ProtocolVersion)
}

func TestInitializeRejectsUnsupportedVersion(t *testing.T) {
	submit := func(ctx context.Context, method string, params any) (*Response, error) {
		result := initializeResult{ProtocolVersion: "1999-01-01"}
		b, _ := json.Marshal(result)
		return &Response{Result: b}, nil
	}
	notify := func(ctx context.Context, method string, params any) error {
		t.Fatal("notifications/initialized must not be sent on a version mismatch")
		return nil
	}

	_, err := initialize(context.Background(), submit, notify, ClientInfo{}, Capabilities{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindVersionMismatch))

	var mcpErr *Error
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, "1999-01-01", mcpErr.Chosen)
	assert.Equal(t, PreferredProtocolVersion, mcpErr.Requested)
}

func TestInitializePropagatesSubmitError(t *testing.T) {
	submit := func(ctx context.Context, method string, params any) (*Response, error) {
		return nil, newError(KindRetryable, "401 unauthorized", nil)
	}
	notify := func(ctx context.Context, method string, params any) error { return nil }

	_, err := initialize(context.Background(), submit, notify, ClientInfo{}, Capabilities{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindRetryable))
}

func TestInitializeRejectsMissingResult(t *testing.T) {
	submit := func(ctx context.Context, method string, params any) (*Response, error) {
		return &Response{}, nil
	}
	notify := func(ctx context.Context, method string, params any) error { return nil }

	_, err := initialize(context.Background(), submit, notify, ClientInfo{}, Capabilities{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNonRetryable))
}

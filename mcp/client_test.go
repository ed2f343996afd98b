package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveOnce runs a background goroutine that answers exactly one request
// on ft with the given result, matching the ID the client actually sent.
func serveOnce(t *testing.T, ft *fakeTransport, resultJSON string) {
	t.Helper()
	before := ft.sentCount()
	go func() {
		require.Eventually(t, func() bool { return ft.sentCount() > before }, time.Second, time.Millisecond)
		id := sentRequestID(t, ft)
		ft.push(wireResponse(id, json.RawMessage(resultJSON), nil))
	}()
}

func openTestClient(t *testing.T, caps Capabilities) (*Client, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	client := NewClient(ft, WithDiagnosticSink(noopDiagnosticSink))

	go func() {
		require.Eventually(t, func() bool { return ft.sentCount() >= 1 }, time.Second, time.Millisecond)
		id := sentRequestID(t, ft)
		result := initializeResult{
			ProtocolVersion: PreferredProtocolVersion,
			ServerInfo:      ServerInfo{Name: "fake-server", Version: "0.0.1"},
			Capabilities:    caps,
		}
		b, _ := json.Marshal(result)
		ft.push(wireResponse(id, b, nil))
	}()

	session, err := client.Open(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)

	t.Cleanup(func() { _ = client.Close() })
	return client, ft
}

func TestClientOpenNegotiatesSession(t *testing.T) {
	client, _ := openTestClient(t, Capabilities{Tools: &ToolsCapability{}})
	assert.Equal(t, PreferredProtocolVersion, client.Session().ProtocolVersion)
	assert.Equal(t, "fake-server", client.Session().ServerInfo.Name)
}

func TestClientPingRoundTrips(t *testing.T) {
	client, ft := openTestClient(t, Capabilities{})
	serveOnce(t, ft, `{}`)
	err := client.Ping(context.Background())
	assert.NoError(t, err)
}

func TestClientListToolsRequiresCapability(t *testing.T) {
	client, _ := openTestClient(t, Capabilities{}) // no tools capability declared
	_, err := client.ListTools(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindCapabilityMissing))
}

func TestClientListToolsSucceedsWhenCapabilityPresent(t *testing.T) {
	client, ft := openTestClient(t, Capabilities{Tools: &ToolsCapability{}})
	serveOnce(t, ft, `{"tools":[{"name":"echo"}]}`)

	result, err := client.ListTools(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "echo", result.Tools[0].Name)
}

func TestClientCloseIsIdempotent(t *testing.T) {
	client, _ := openTestClient(t, Capabilities{})
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}

func TestClientOpenTwiceFails(t *testing.T) {
	client, _ := openTestClient(t, Capabilities{})
	_, err := client.Open(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNonRetryable))
}

package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

// echoServer accepts one WebSocket connection and echoes every text
// message it receives, just enough to exercise Transport end to end
// without a real MCP server on the other end.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}
			if err := conn.Write(r.Context(), websocket.MessageText, data); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + srv.URL[len("http"):]
}

func TestNewAllocatesNothingBeforeOpen(t *testing.T) {
	tr := New("ws://unused")
	assert.Nil(t, tr.outbound)
	assert.Nil(t, tr.lines)
	assert.Nil(t, tr.closed)
	assert.Equal(t, stateUnopened, tr.state)
}

func TestTransportEchoesFrames(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	tr := New(wsURL(srv))
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	frame := []byte(`{"jsonrpc":"2.0","id":"1","method":"ping"}`)
	require.NoError(t, tr.WriteFrame(ctx, frame))

	got, err := tr.ReadFrame(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(frame), string(got))
}

func TestTransportOpenTwiceFails(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	tr := New(wsURL(srv))
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	err := tr.Open(context.Background())
	require.Error(t, err)
}

func TestTransportCloseIsIdempotent(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	tr := New(wsURL(srv))
	require.NoError(t, tr.Open(context.Background()))
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
}

func TestTransportReadFailsAfterServerCloses(t *testing.T) {
	srv := echoServer(t)
	tr := New(wsURL(srv))
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	srv.Close() // server tears the connection down from underneath us

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := tr.ReadFrame(ctx)
	require.Error(t, err)
}

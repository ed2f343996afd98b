// Package ws is a second implementation of the mcp.Transport contract,
// carrying one JSON-RPC frame per WebSocket text message instead of
// newline-delimited stdio bytes. It exists to prove the duplex-stream
// contract (including the deferred-open invariant) is transport-agnostic.
package ws

import (
	"context"
	"fmt"
	"io"
	"sync"

	"nhooyr.io/websocket"
)

// Option configures a Transport before Open.
type Option func(*Transport)

// WithSubprotocols sets the WebSocket subprotocols offered during the
// handshake.
func WithSubprotocols(protocols ...string) Option {
	return func(t *Transport) { t.subprotocols = protocols }
}

type outboundFrame struct {
	data []byte
	done chan error
}

// Transport speaks MCP framing over a WebSocket connection. Construction
// captures only the URL and dial options; no socket is dialed and no
// goroutine starts until Open, mirroring stdio's deferred-open invariant.
type Transport struct {
	url          string
	subprotocols []string

	mu    sync.Mutex
	state int32 // mirrors mcp.State's values (stateUnopened, stateOpen, stateClosed below) without importing mcp

	conn *websocket.Conn

	outbound chan outboundFrame
	lines    chan lineResult
	closed   chan struct{}
}

type lineResult struct {
	data []byte
	err  error
}

const (
	stateUnopened int32 = iota
	stateOpen
	stateClosed
)

// New captures the server URL to dial. Nothing concurrent is allocated here.
func New(url string, opts ...Option) *Transport {
	t := &Transport{url: url, state: stateUnopened}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) Open(ctx context.Context) error {
	t.mu.Lock()
	if t.state != stateUnopened {
		t.mu.Unlock()
		return fmt.Errorf("ws transport already opened")
	}
	t.state = stateOpen
	t.outbound = make(chan outboundFrame, 64)
	t.lines = make(chan lineResult, 100)
	t.closed = make(chan struct{})
	t.mu.Unlock()

	dialOpts := &websocket.DialOptions{Subprotocols: t.subprotocols}
	conn, _, err := websocket.Dial(ctx, t.url, dialOpts)
	if err != nil {
		return fmt.Errorf("dial websocket: %w", err)
	}
	conn.SetReadLimit(32 << 20)

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	go t.readerLoop()
	go t.writerLoop()

	return nil
}

func (t *Transport) readerLoop() {
	defer close(t.lines)
	for {
		_, data, err := t.conn.Read(context.Background())
		if err != nil {
			select {
			case t.lines <- lineResult{err: err}:
			case <-t.closed:
			}
			return
		}
		select {
		case t.lines <- lineResult{data: data}:
		case <-t.closed:
			return
		}
	}
}

func (t *Transport) writerLoop() {
	for {
		select {
		case out, ok := <-t.outbound:
			if !ok {
				return
			}
			err := t.conn.Write(context.Background(), websocket.MessageText, out.data)
			if out.done != nil {
				out.done <- err
			}
		case <-t.closed:
			return
		}
	}
}

// WriteFrame sends one frame as a single WebSocket text message — no
// line-delimiting needed, since WebSocket already frames messages.
func (t *Transport) WriteFrame(ctx context.Context, frame []byte) error {
	t.mu.Lock()
	state := t.state
	t.mu.Unlock()
	if state != stateOpen {
		return fmt.Errorf("write on unopened or closed ws transport")
	}

	done := make(chan error, 1)
	select {
	case t.outbound <- outboundFrame{data: frame, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	case <-t.closed:
		return io.ErrClosedPipe
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-t.closed:
		return io.ErrClosedPipe
	}
}

func (t *Transport) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case lr, ok := <-t.lines:
		if !ok {
			return nil, io.EOF
		}
		if lr.err != nil {
			return nil, lr.err
		}
		return lr.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.closed:
		return nil, io.EOF
	}
}

func (t *Transport) Close() error {
	t.mu.Lock()
	if t.state == stateClosed {
		t.mu.Unlock()
		return nil
	}
	t.state = stateClosed
	conn := t.conn
	t.mu.Unlock()

	if t.closed != nil {
		close(t.closed)
	}
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client closing")
	}
	return nil
}

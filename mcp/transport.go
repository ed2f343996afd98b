package mcp

import "context"

// State is the lifecycle of a Transport or Client: Unopened until Open
// succeeds, Open while usable, Closed once torn down. Every state
// transition is one-way.
type State int32

const (
	StateUnopened State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unopened"
	}
}

// Transport is a duplex byte-oriented stream carrying one JSON-RPC frame
// per WriteFrame/ReadFrame call. Implementations MUST NOT allocate any
// channel, goroutine, or other runtime concurrency primitive before Open
// is called — construction is parameter capture only. This is what lets a
// Transport be built inside another concurrent scope (a constructor, a
// test table row) without deadlocking anything.
type Transport interface {
	// Open spawns/dials the underlying stream and starts its internal
	// goroutines. Calling Open twice is an error; Close is safe to call
	// before Open (see Close).
	Open(ctx context.Context) error

	// WriteFrame sends one already-encoded frame. It does not append
	// framing; implementations add whatever their wire needs (a trailing
	// newline for line-delimited stdio, nothing extra for one-frame-per-
	// message transports like WebSocket).
	WriteFrame(ctx context.Context, frame []byte) error

	// ReadFrame blocks until the next inbound frame is available, ctx is
	// done, or the stream ends (io.EOF).
	ReadFrame(ctx context.Context) ([]byte, error)

	// Close tears the stream down. It is idempotent and safe to call from
	// a defer on every exit path, including before Open ever succeeded.
	Close() error
}

// DiagnosticEvent is a single observability record: a malformed frame
// skipped, a late response discarded, a notification queue overflow, a
// subprocess stderr line. None of these terminate anything by themselves.
type DiagnosticEvent struct {
	Level   string // "debug", "info", "warn", "error"
	Message string
}

// DiagnosticSink receives DiagnosticEvents. Every "reported via a
// diagnostic sink" or "logged and dropped" path in this package funnels
// through exactly one of these.
type DiagnosticSink func(event DiagnosticEvent)

func noopDiagnosticSink(DiagnosticEvent) {}

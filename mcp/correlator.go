package mcp

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

type callOutcome struct {
	resp *Response
	err  *Error
}

type pendingCall struct {
	method    string
	sink      chan callOutcome
	cancelled int32
}

// Correlator is the request correlator. It owns the in-flight map
// exclusively: nothing outside this file reads or writes it. Every pending
// call receives exactly one outcome, ever — either a matched response, a
// cancellation, or a shutdown failure — and the reader goroutine never
// holds the map's lock while firing a sink.
type Correlator struct {
	transport  Transport
	dispatcher *Dispatcher
	diagnostic DiagnosticSink

	mu      sync.Mutex
	pending map[string]*pendingCall

	closing    chan struct{}
	closeOnce  sync.Once
	readerDone chan struct{}

	errMu  sync.Mutex
	connErr error
}

func newCorrelator(transport Transport, dispatcher *Dispatcher, diagnostic DiagnosticSink) *Correlator {
	return &Correlator{
		transport:  transport,
		dispatcher: dispatcher,
		diagnostic: diagnostic,
		pending:    make(map[string]*pendingCall),
		closing:    make(chan struct{}),
		readerDone: make(chan struct{}),
	}
}

func (c *Correlator) start() {
	go c.readLoop()
}

func (c *Correlator) err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.connErr
}

func (c *Correlator) setErr(err error) {
	c.errMu.Lock()
	if c.connErr == nil {
		c.connErr = err
	}
	c.errMu.Unlock()
}

// submit sends method/params as a Request and blocks for the matching
// Response, respecting ctx cancellation/deadline and transport shutdown.
// It has signature (context.Context, string, any) (*Response, error) so it
// can be passed directly to the retry engine and to the initialize
// handshake alike.
func (c *Correlator) submit(ctx context.Context, method string, params any) (*Response, error) {
	select {
	case <-c.closing:
		return nil, newError(KindTransportClosed, "transport already closed", c.err()).withMethod(method)
	default:
	}

	id := newRequestID()
	req := &Request{ID: id, Method: method, Params: mustParams(params)}

	sink := make(chan callOutcome, 1)
	pc := &pendingCall{method: method, sink: sink}
	key := id.String()

	c.mu.Lock()
	c.pending[key] = pc
	c.mu.Unlock()

	cleanup := func() {
		c.mu.Lock()
		delete(c.pending, key)
		c.mu.Unlock()
	}

	data, err := encodeFrame(req)
	if err != nil {
		cleanup()
		return nil, newError(KindNonRetryable, "encode request frame", err).withMethod(method)
	}

	if err := c.transport.WriteFrame(ctx, data); err != nil {
		cleanup()
		return nil, classifyTransportError(err).withMethod(method)
	}

	select {
	case <-ctx.Done():
		atomic.StoreInt32(&pc.cancelled, 1)
		cleanup()
		kind := KindCancelled
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = KindTimeout
		} else {
			c.notifyCancelled(id)
		}
		return nil, newError(kind, "request ended before a response arrived", ctx.Err()).withMethod(method)
	case out := <-sink:
		if out.err != nil {
			return nil, out.err.withMethod(method)
		}
		return out.resp, nil
	case <-c.closing:
		cleanup()
		return nil, newError(KindTransportClosed, "transport closed while request in flight", c.err()).withMethod(method)
	}
}

// notify sends a one-way Notification frame; no response is awaited.
func (c *Correlator) notify(ctx context.Context, method string, params any) error {
	n := &Notification{Method: method, Params: mustParams(params)}
	data, err := encodeFrame(n)
	if err != nil {
		return newError(KindNonRetryable, "encode notification frame", err).withMethod(method)
	}
	if err := c.transport.WriteFrame(ctx, data); err != nil {
		return classifyTransportError(err).withMethod(method)
	}
	return nil
}

// notifyCancelled emits a best-effort notifications/cancelled for a
// request this side gave up on locally. Failure to send it is not
// reported anywhere beyond the diagnostic sink — the original caller
// already has its Cancelled error.
func (c *Correlator) notifyCancelled(id ID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		params := map[string]any{"requestId": id}
		if err := c.notify(ctx, "notifications/cancelled", params); err != nil {
			c.diagnostic(DiagnosticEvent{Level: "debug", Message: "best-effort cancellation notice failed: " + err.Error()})
		}
	}()
}

func (c *Correlator) readLoop() {
	defer close(c.readerDone)
	defer c.shutdown()

	for {
		raw, err := c.transport.ReadFrame(context.Background())
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.setErr(newError(KindTransportClosed, "transport reached EOF", err))
			} else {
				c.setErr(newError(KindTransportClosed, "transport read failed", err))
			}
			return
		}

		msg, derr := decodeFrame(raw)
		if derr != nil {
			c.diagnostic(DiagnosticEvent{Level: "warn", Message: "malformed frame skipped: " + derr.Error()})
			continue
		}

		switch m := msg.(type) {
		case *Response:
			c.routeResponse(m)
		case *Notification:
			c.dispatcher.dispatch(m)
		case *Request:
			// This client does not serve inbound server-initiated requests
			// in its public surface; reject politely rather than hang the
			// server waiting on a response that will never come.
			c.rejectServerRequest(m)
		}
	}
}

func (c *Correlator) routeResponse(resp *Response) {
	key := resp.ID.String()

	c.mu.Lock()
	pc, ok := c.pending[key]
	if ok {
		delete(c.pending, key)
	}
	c.mu.Unlock()

	if !ok {
		c.diagnostic(DiagnosticEvent{Level: "debug", Message: "discarding response for unknown or already-resolved id " + key})
		return
	}
	if atomic.LoadInt32(&pc.cancelled) == 1 {
		c.diagnostic(DiagnosticEvent{Level: "debug", Message: "discarding late response for cancelled id " + key})
		return
	}

	if resp.Error != nil {
		kind := classifyJSONRPCError(resp.Error)
		pc.sink <- callOutcome{err: newError(kind, resp.Error.Message, nil).withMethod(pc.method)}
	} else {
		pc.sink <- callOutcome{resp: resp}
	}
	close(pc.sink)
}

func (c *Correlator) rejectServerRequest(req *Request) {
	resp := &Response{
		ID:    req.ID,
		Error: &WireError{Code: -32601, Message: "method not found: " + req.Method},
	}
	data, err := encodeFrame(resp)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = c.transport.WriteFrame(ctx, data)
}

// shutdown fails every still-pending call with TransportClosed and marks
// the closing channel so blocked submit/notify calls unblock promptly.
func (c *Correlator) shutdown() {
	c.closeOnce.Do(func() {
		close(c.closing)
	})

	c.mu.Lock()
	pendings := c.pending
	c.pending = make(map[string]*pendingCall)
	c.mu.Unlock()

	failure := newError(KindTransportClosed, "transport closed", c.err())
	for _, pc := range pendings {
		select {
		case pc.sink <- callOutcome{err: failure}:
		default:
		}
		close(pc.sink)
	}
}

func (c *Correlator) waitClosed() {
	<-c.readerDone
}

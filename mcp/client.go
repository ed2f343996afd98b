package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// moduleVersion is this client's self-reported version in ClientInfo.
const moduleVersion = "0.1.0"

// ClientOption configures a Client before Open.
type ClientOption func(*Client)

// WithDiagnosticSink overrides where malformed-frame/overflow/stderr
// diagnostics go. The default logs through log/slog, colorized with
// fatih/color when stdout is a terminal (detected with go-isatty),
// never a bespoke logging abstraction.
func WithDiagnosticSink(sink DiagnosticSink) ClientOption {
	return func(c *Client) { c.diagnostic = sink }
}

// WithRetryPolicy overrides the default retry/backoff/circuit-breaker policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.retryPolicy = p }
}

// WithClientInfo overrides the name/version this client reports during initialize.
func WithClientInfo(info ClientInfo) ClientOption {
	return func(c *Client) { c.clientInfo = info }
}

// WithClientCapabilities overrides the capability set this client advertises.
func WithClientCapabilities(caps Capabilities) ClientOption {
	return func(c *Client) { c.clientCaps = caps }
}

// Client is the top-level MCP client: it wires the Stdio (or any other)
// Transport through the Request Correlator, Notification Dispatcher, and
// Retry/Timeout Engine, and drives the Initialize handshake on Open.
type Client struct {
	transport   Transport
	diagnostic  DiagnosticSink
	retryPolicy RetryPolicy
	clientInfo  ClientInfo
	clientCaps  Capabilities

	correlator *Correlator
	dispatcher *Dispatcher
	retry      *RetryEngine

	mu      sync.Mutex
	state   State
	session *SessionContext
}

// NewClient builds a Client around transport. No I/O happens until Open.
func NewClient(transport Transport, opts ...ClientOption) *Client {
	c := &Client{
		transport:   transport,
		diagnostic:  defaultDiagnosticSink,
		retryPolicy: DefaultRetryPolicy(),
		clientInfo:  ClientInfo{Name: "chuk-mcp", Version: moduleVersion},
		clientCaps:  DefaultClientCapabilities(),
		state:       StateUnopened,
	}
	for _, opt := range opts {
		opt(c)
	}
	if st, ok := c.transport.(*StdioTransport); ok {
		st.WithDiagnosticSink(c.diagnostic)
	}
	c.dispatcher = newDispatcher(c.diagnostic)
	c.correlator = newCorrelator(c.transport, c.dispatcher, c.diagnostic)
	c.retry = newRetryEngine(c.retryPolicy, c.correlator.submit)
	return c
}

var colorOnce sync.Once
var colorCapable bool

func defaultDiagnosticSink(event DiagnosticEvent) {
	colorOnce.Do(func() {
		colorCapable = isatty.IsTerminal(os.Stdout.Fd())
	})

	msg := event.Message
	if colorCapable {
		switch event.Level {
		case "warn":
			msg = color.YellowString(msg)
		case "error":
			msg = color.RedString(msg)
		case "debug":
			msg = color.CyanString(msg)
		}
	}

	switch event.Level {
	case "error":
		slog.Error(msg)
	case "warn":
		slog.Warn(msg)
	case "debug":
		slog.Debug(msg)
	default:
		slog.Info(msg)
	}
}

// Open opens the underlying transport and runs the initialize handshake.
// On any failure it tears the transport back down before returning, so a
// caller never has to guess whether cleanup is its responsibility.
func (c *Client) Open(ctx context.Context) (*SessionContext, error) {
	c.mu.Lock()
	if c.state != StateUnopened {
		c.mu.Unlock()
		return nil, newError(KindNonRetryable, "client already opened", nil)
	}
	c.state = StateOpen
	c.mu.Unlock()

	if err := c.transport.Open(ctx); err != nil {
		_ = c.transport.Close()
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		return nil, newError(KindRetryable, "failed to open transport", err)
	}

	c.correlator.start()

	session, err := initialize(ctx, c.correlator.submit, c.correlator.notify, c.clientInfo, c.clientCaps)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	return session, nil
}

// Session returns the negotiated session, or nil before Open succeeds.
func (c *Client) Session() *SessionContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Close tears the client down. It is idempotent and safe to call from a
// defer on every exit path, including when Open never succeeded.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	c.mu.Unlock()

	c.correlator.shutdown()
	c.dispatcher.close()
	return c.transport.Close()
}

// Subscribe returns a bounded channel of the notifications received for method.
func (c *Client) Subscribe(method string) <-chan *Notification {
	return c.dispatcher.Subscribe(method, defaultNotificationQueueDepth)
}

// OnNotification registers a handler for method's notifications.
func (c *Client) OnNotification(method string, handler NotificationHandler) {
	c.dispatcher.OnNotification(method, handler)
}

func (c *Client) requireCapability(has func(*SessionContext) bool, name string) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return newError(KindNonRetryable, "client not opened", nil)
	}
	if !has(session) {
		return newError(KindCapabilityMissing, fmt.Sprintf("server did not declare the %q capability", name), nil)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	resp, err := c.retry.Do(ctx, method, params)
	if err != nil {
		return err
	}
	if result != nil && resp != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return newError(KindParseError, "decode "+method+" result", err).withMethod(method)
		}
	}
	return nil
}

// Heartbeat calls Ping on an interval until ctx is done, reporting each
// outcome on the returned channel: a context for cancellation and a
// bounded channel for results rather than a callback. The channel is
// closed once the supervising goroutine exits.
func (c *Client) Heartbeat(ctx context.Context, interval time.Duration) <-chan error {
	out := make(chan error, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, interval)
				err := c.Ping(pingCtx)
				cancel()
				select {
				case out <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

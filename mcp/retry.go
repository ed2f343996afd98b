package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// RetryPolicy configures the retry/timeout engine.
type RetryPolicy struct {
	// Deadline bounds the whole call, including every retry attempt.
	Deadline time.Duration
	// MaxAttempts is the number of retries permitted after the first
	// attempt (so up to MaxAttempts+1 total submissions).
	MaxAttempts int
	// BackoffInterval paces retries at a constant rate rather than an
	// exponential one, so a caller's deadline budget stays predictable.
	BackoffInterval time.Duration
	// BreakerThreshold is the number of consecutive Retryable failures
	// that trips the circuit breaker open.
	BreakerThreshold uint32
	// BreakerCooldown is how long the breaker stays open before allowing
	// a single probe request through (half-open).
	BreakerCooldown time.Duration
}

// DefaultRetryPolicy returns the policy a Client uses unless overridden.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Deadline:         10 * time.Second,
		MaxAttempts:      3,
		BackoffInterval:  150 * time.Millisecond,
		BreakerThreshold: 5,
		BreakerCooldown:  5 * time.Second,
	}
}

type submitFunc func(ctx context.Context, method string, params any) (*Response, error)

// RetryEngine wraps a submitFunc with a bounded retry budget, constant-rate
// backoff pacing, and a circuit breaker protecting the transport from a
// structurally broken child process. The breaker is additive to the
// per-request retry budget, not a replacement for it: the breaker protects
// the transport, the retry loop protects the request.
type RetryEngine struct {
	policy  RetryPolicy
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	submit  submitFunc
}

func newRetryEngine(policy RetryPolicy, submit submitFunc) *RetryEngine {
	limiter := rate.NewLimiter(rate.Every(policy.BackoffInterval), 1)
	settings := gobreaker.Settings{
		Name:        "mcp-transport",
		MaxRequests: 1,
		Timeout:     policy.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= policy.BreakerThreshold
		},
		// Only Retryable failures count toward tripping the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsKind(err, KindRetryable)
		},
	}
	return &RetryEngine{
		policy:  policy,
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker(settings),
		submit:  submit,
	}
}

// Do submits method/params, retrying Retryable failures up to
// policy.MaxAttempts times with constant-rate backoff, bounded overall by
// policy.Deadline. Cancellation always pre-empts a pending retry; deadline
// expiry is always Non-retryable regardless of remaining retry budget.
func (e *RetryEngine) Do(ctx context.Context, method string, params any) (*Response, error) {
	deadlineCtx, cancel := context.WithTimeout(ctx, e.policy.Deadline)
	defer cancel()

	attempts := 0
	for {
		attempts++

		result, execErr := e.breaker.Execute(func() (interface{}, error) {
			return e.submit(deadlineCtx, method, params)
		})

		if execErr == nil {
			return result.(*Response), nil
		}

		if errors.Is(execErr, gobreaker.ErrOpenState) || errors.Is(execErr, gobreaker.ErrTooManyRequests) {
			return nil, newError(KindTransportClosed, "circuit breaker open: transport unhealthy", execErr).withMethod(method)
		}

		var mcpErr *Error
		if !errors.As(execErr, &mcpErr) {
			mcpErr = newError(KindUnknown, execErr.Error(), execErr)
		}

		switch mcpErr.Kind {
		case KindCancelled:
			return nil, mcpErr
		case KindTimeout:
			return nil, mcpErr
		case KindRetryable:
			if attempts > e.policy.MaxAttempts {
				return nil, newError(KindTimeout, "retry budget exhausted", mcpErr).withMethod(method)
			}
			if werr := e.limiter.Wait(deadlineCtx); werr != nil {
				if errors.Is(deadlineCtx.Err(), context.DeadlineExceeded) {
					return nil, newError(KindTimeout, "deadline exceeded during retry backoff", werr).withMethod(method)
				}
				return nil, newError(KindCancelled, "cancelled during retry backoff", werr).withMethod(method)
			}
			continue
		default:
			return nil, mcpErr
		}
	}
}

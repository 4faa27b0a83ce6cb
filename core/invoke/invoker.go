package invoke

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/aws/smithy-go"
)

// Default retry parameters for rate-limited external services
const (
	DefaultMaxRetries        = 5
	DefaultInitialBackoff    = 1 * time.Second
	DefaultBackoffMultiplier = 3.0
	DefaultBackoffCap        = 30 * time.Second
	DefaultJitterFraction    = 0.3
)

// ErrConfiguration marks errors caused by missing static configuration.
// Retrying cannot fix those, so the invoker fails them immediately.
var ErrConfiguration = errors.New("configuration error")

// retryableCodes are the service error codes treated as throttling
var retryableCodes = map[string]bool{
	"ThrottlingException":      true,
	"TooManyRequestsException": true,
	"ServiceUnavailable":       true,
}

// Policy holds the retry/backoff parameters for one external call
type Policy struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	BackoffCap        time.Duration
	JitterFraction    float64
}

// DefaultPolicy returns the default retry policy
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
		BackoffCap:        DefaultBackoffCap,
		JitterFraction:    DefaultJitterFraction,
	}
}

// BackoffFor computes the non-jittered backoff for a zero-based retry index:
// min(initial * multiplier^index, cap). Pure, so tests can verify the curve
// without real time passing.
func (p Policy) BackoffFor(index int) time.Duration {
	backoff := float64(p.InitialBackoff) * math.Pow(p.BackoffMultiplier, float64(index))
	if capped := float64(p.BackoffCap); backoff > capped {
		backoff = capped
	}
	return time.Duration(backoff)
}

// Invoker wraps calls to a rate-limited external service with bounded
// exponential backoff and jitter. It holds no per-call state; attempt
// tracking lives on the stack of Do for exactly one invocation.
type Invoker struct {
	policy Policy
	sleep  func(context.Context, time.Duration) error
	jitter func() float64
}

// Option customizes an Invoker
type Option func(*Invoker)

// WithSleeper overrides how backoff sleeps are performed (useful for tests)
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(inv *Invoker) {
		if sleep != nil {
			inv.sleep = sleep
		}
	}
}

// WithJitterSource overrides the uniform [0,1) source used for jitter
func WithJitterSource(jitter func() float64) Option {
	return func(inv *Invoker) {
		if jitter != nil {
			inv.jitter = jitter
		}
	}
}

// New creates an invoker with the given policy
func New(policy Policy, opts ...Option) *Invoker {
	inv := &Invoker{
		policy: policy,
		sleep:  sleepContext,
		jitter: rand.Float64,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Do runs fn, retrying on throttling errors until it succeeds or the retry
// budget is exhausted. Terminal errors, configuration errors included,
// propagate immediately without consuming a retry. A context cancelled
// mid-backoff aborts the invocation.
func (inv *Invoker) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	retries := 0
	for {
		log.Printf("%s: attempt %d/%d", op, retries+1, inv.policy.MaxRetries+1)

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrConfiguration) {
			log.Printf("%s: configuration error, not retrying: %v", op, err)
			return err
		}
		if !Retryable(err) {
			return err
		}

		retries++
		if retries > inv.policy.MaxRetries {
			log.Printf("%s: max retries (%d) exceeded, giving up", op, inv.policy.MaxRetries)
			return fmt.Errorf("%s: max retries (%d) exceeded: %w", op, inv.policy.MaxRetries, err)
		}

		backoff := inv.policy.BackoffFor(retries - 1)
		wait := backoff + time.Duration(inv.jitter()*inv.policy.JitterFraction*float64(backoff))
		log.Printf("%s: throttled, retrying in %.2fs (attempt %d/%d)", op, wait.Seconds(), retries, inv.policy.MaxRetries)

		if err := inv.sleep(ctx, wait); err != nil {
			return fmt.Errorf("%s: aborted during backoff: %w", op, err)
		}
	}
}

// Retryable reports whether an error is a throttling-class rejection worth
// retrying. All other errors are terminal.
func Retryable(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && retryableCodes[apiErr.ErrorCode()] {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "throttl") || strings.Contains(msg, "too many tokens")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

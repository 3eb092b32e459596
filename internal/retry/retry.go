// Package retry wraps an operation in a bounded exponential-backoff retry
// policy. It is the only place transient generation failures are recovered.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// Defaults match the generation service's tolerance: three attempts, one
// second before the first retry, doubling after each failure.
const (
	DefaultAttempts     = 3
	DefaultInitialDelay = time.Second
	DefaultMultiplier   = 2.0
	DefaultMaxDelay     = time.Minute
)

// Policy is the attempt budget and delay schedule.
type Policy struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration

	notify func(err error, next time.Duration)
}

// DefaultPolicy returns the package defaults.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:     DefaultAttempts,
		InitialDelay: DefaultInitialDelay,
		Multiplier:   DefaultMultiplier,
		MaxDelay:     DefaultMaxDelay,
	}
}

// Option adjusts a Policy.
type Option func(*Policy)

// WithAttempts sets the total number of invocations, including the first.
func WithAttempts(n int) Option {
	return func(p *Policy) { p.Attempts = n }
}

// WithInitialDelay sets the wait before the first retry.
func WithInitialDelay(d time.Duration) Option {
	return func(p *Policy) { p.InitialDelay = d }
}

// WithMultiplier sets the factor applied to the delay after every retry.
func WithMultiplier(m float64) Option {
	return func(p *Policy) { p.Multiplier = m }
}

// WithPolicy replaces the whole policy; zero fields fall back to defaults.
func WithPolicy(policy Policy) Option {
	return func(p *Policy) {
		notify := p.notify
		*p = policy
		p.notify = notify
	}
}

// WithNotify registers fn to run before each backoff wait.
func WithNotify(fn func(err error, next time.Duration)) Option {
	return func(p *Policy) { p.notify = fn }
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.Attempts <= 0 {
		p.Attempts = d.Attempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = d.InitialDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = d.Multiplier
	}
	if p.MaxDelay < p.InitialDelay {
		p.MaxDelay = d.MaxDelay
		if p.MaxDelay < p.InitialDelay {
			p.MaxDelay = p.InitialDelay
		}
	}
	return p
}

// Do invokes op until it succeeds or the attempt budget is spent, sleeping
// between attempts with exponentially growing delays. On exhaustion it
// returns the error from the final attempt. Cancelling ctx stops waiting
// and returns the context's cause.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts ...Option) (T, error) {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}
	p = p.normalized()

	eb := &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          p.Multiplier,
		MaxInterval:         p.MaxDelay,
	}

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		return op(ctx)
	},
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(uint(p.Attempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", p.Attempts).
				Dur("retry_in", next).
				Msg("Call failed, retrying")
			if p.notify != nil {
				p.notify(err, next)
			}
		}),
	)
}

package api

import (
	"context"
	"slices"
	"time"

	"github.com/sethvargo/go-retry"
)

const DefaultMaxRetries = 3

// RetryState counts the retries already spent by one logical call.
type RetryState struct {
	Attempts int
	Allowed  int
}

func (s RetryState) Next() RetryState {
	s.Attempts++
	return s
}

type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// NoRetry lists kinds that are not retried on top of the built-in ones.
	NoRetry []Kind
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   2 * time.Second,
	}
}

func (p RetryPolicy) NewState() RetryState {
	n := p.MaxRetries
	if n < 0 {
		n = 0
	}
	return RetryState{Allowed: n}
}

// ShouldRetry depends only on its arguments. A call therefore makes at most
// Allowed+1 attempts.
func (p RetryPolicy) ShouldRetry(k Kind, s RetryState) bool {
	if s.Attempts >= s.Allowed {
		return false
	}
	switch k {
	case KindDecodeFailed, KindMalformedTarget:
		return false
	}
	return !slices.Contains(p.NoRetry, k)
}

// Without returns a copy of p that also refuses to retry kinds.
func (p RetryPolicy) Without(kinds ...Kind) RetryPolicy {
	p.NoRetry = append(slices.Clone(p.NoRetry), kinds...)
	return p
}

func (p RetryPolicy) backoff() retry.Backoff {
	if p.BaseDelay <= 0 {
		return nil
	}
	b := retry.NewExponential(p.BaseDelay)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	return b
}

// wait sleeps for the next backoff step or until ctx is done.
func wait(ctx context.Context, b retry.Backoff) error {
	if b == nil {
		return ctx.Err()
	}
	d, stop := b.Next()
	if stop || d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

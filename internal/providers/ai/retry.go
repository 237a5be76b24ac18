package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

// RetryOptions tunes the resilience decorator wrapped around a provider.
type RetryOptions struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	CallsPerMinute  int
	Logger          zerolog.Logger
}

// retryingProvider wraps a Provider with fixed-attempt exponential
// backoff and a per-minute throttle. Configuration and validation errors
// are never retried.
type retryingProvider struct {
	inner    Provider
	attempts uint64
	interval time.Duration
	limiter  *minuteLimiter
	logger   zerolog.Logger
}

// WithRetry decorates p so that transient inference failures are retried
// with exponential backoff, throttled to CallsPerMinute when positive.
func WithRetry(p Provider, opts RetryOptions) Provider {
	attempts := opts.MaxAttempts
	if attempts == 0 {
		attempts = 3
	}
	interval := opts.InitialInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	var limiter *minuteLimiter
	if opts.CallsPerMinute > 0 {
		limiter = newMinuteLimiter(opts.CallsPerMinute)
	}
	return &retryingProvider{
		inner:    p,
		attempts: attempts,
		interval: interval,
		limiter:  limiter,
		logger:   opts.Logger.With().Str("provider", p.Name()).Logger(),
	}
}

func (r *retryingProvider) Name() string                { return r.inner.Name() }
func (r *retryingProvider) ValidateModel(m string) bool { return r.inner.ValidateModel(m) }

func (r *retryingProvider) ModelInfo(m string) (ModelInfo, bool) {
	return r.inner.ModelInfo(m)
}

func (r *retryingProvider) RunInference(ctx context.Context, model string, params Params) (string, error) {
	if r.limiter != nil {
		if err := r.limiter.wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limit wait: %v", domain.ErrUpstreamAI, err)
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.interval

	var result string
	attempt := 0
	operation := func() error {
		attempt++
		out, err := r.inner.RunInference(ctx, model, params)
		if err != nil {
			if errors.Is(err, domain.ErrConfiguration) || errors.Is(err, domain.ErrValidation) {
				return backoff.Permanent(err)
			}
			r.logger.Warn().Err(err).Str("model", model).Int("attempt", attempt).Msg("inference attempt failed")
			return err
		}
		result = out
		return nil
	}
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, r.attempts-1), ctx))
	if err != nil {
		return "", err
	}
	return result, nil
}

// minuteLimiter is a small token bucket refilled once per minute window,
// matching the per-IP limiter in the HTTP middleware.
type minuteLimiter struct {
	mu    sync.Mutex
	limit int
	count int
	until time.Time
}

func newMinuteLimiter(limit int) *minuteLimiter {
	return &minuteLimiter{limit: limit}
}

func (l *minuteLimiter) wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()
		if now.After(l.until) {
			l.until = now.Add(time.Minute)
			l.count = 0
		}
		if l.count < l.limit {
			l.count++
			l.mu.Unlock()
			return nil
		}
		sleep := time.Until(l.until)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

var _ Provider = (*retryingProvider)(nil)

package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// ErrProviderUnavailable marks a chat call that could not be completed,
// either because the provider kept failing or the per-call deadline passed.
var ErrProviderUnavailable = errors.New("llm provider unavailable")

type RetryConfig struct {
	MaxAttempts int
	// Timeout bounds each attempt; zero means no per-call deadline.
	Timeout   time.Duration
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Sleep     func(time.Duration)
}

// ChatWithRetry calls p.Chat until it succeeds, the attempts run out, or ctx
// is done. Exhausted attempts are reported as ErrProviderUnavailable.
func ChatWithRetry(ctx context.Context, cfg RetryConfig, p Provider, messages []Message, opts ...Option) (*Response, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 250 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 4 * time.Second
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}

	var lastErr error
	for i := 0; i < cfg.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := chatOnce(ctx, cfg.Timeout, p, messages, opts...)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		// the caller gave up; retrying would not help
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("LLM call failed", "attempt", i+1, "maxAttempts", cfg.MaxAttempts, "error", err)
		if i < cfg.MaxAttempts-1 {
			cfg.Sleep(backoffDelay(cfg.BaseDelay, cfg.MaxDelay, i))
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, lastErr)
}

func chatOnce(ctx context.Context, timeout time.Duration, p Provider, messages []Message, opts ...Option) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return p.Chat(ctx, messages, opts...)
}

func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > max {
		return max
	}
	return d
}

package gemma

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/munes-ai/munes/internal/reliability"
)

const defaultCallTimeout = 10 * time.Second

// Resilient wraps a Service with a bounded per-call timeout, at most one
// retry, and a circuit breaker. A degraded backend therefore fails fast and
// callers drop to their template paths instead of blocking the turn loop.
type Resilient struct {
	inner   Service
	timeout time.Duration
	retries int
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewResilient(inner Service, timeout time.Duration, retries int, logger *zap.Logger) *Resilient {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	if retries < 0 {
		retries = 0
	}
	if retries > 1 {
		retries = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemma",
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("generation service breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Resilient{
		inner:   inner,
		timeout: timeout,
		retries: retries,
		breaker: breaker,
		logger:  logger,
	}
}

func (r *Resilient) GenerateText(ctx context.Context, prompt, system string) (string, error) {
	return r.call(ctx, "generate_text", func(callCtx context.Context) (string, error) {
		return r.inner.GenerateText(callCtx, prompt, system)
	})
}

func (r *Resilient) GenerateMultimodal(ctx context.Context, text, imagePath, audioPath string) (string, error) {
	return r.call(ctx, "generate_multimodal", func(callCtx context.Context) (string, error) {
		return r.inner.GenerateMultimodal(callCtx, text, imagePath, audioPath)
	})
}

func (r *Resilient) call(ctx context.Context, op string, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		out, err := r.breaker.Execute(func() (any, error) {
			callCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			return fn(callCtx)
		})
		if err == nil {
			return out.(string), nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) {
			break
		}
		// An open breaker means the backend is known-degraded; a retry
		// would hit the same wall.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}
		// HTTP error replies are only worth retrying when transient.
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && svcErr.Status != 0 && !reliability.IsRetryableHTTPStatus(svcErr.Status) {
			break
		}
		r.logger.Debug("generation call failed", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
		if attempt < r.retries {
			select {
			case <-ctx.Done():
				return "", &ServiceError{Op: op, Err: ctx.Err()}
			case <-time.After(reliability.ExponentialBackoff(attempt, 100*time.Millisecond, time.Second)):
			}
		}
	}

	var svcErr *ServiceError
	if errors.As(lastErr, &svcErr) {
		return "", lastErr
	}
	return "", &ServiceError{Op: op, Err: lastErr}
}

package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	pkgerrors "ideaforge-backend/pkg/errors"
)

// BreakerConfig holds circuit breaker tuning for a provider
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used for AI providers
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// BreakerProvider wraps a Provider with a circuit breaker so a failing
// backend is cut off quickly instead of absorbing every request's full
// timeout. An open breaker surfaces as ProviderUnavailable, which keeps
// the failure retryable for the caller.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewBreakerProvider wraps the provider with a circuit breaker
func NewBreakerProvider(inner Provider, cfg BreakerConfig, logger *zap.Logger) *BreakerProvider {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &BreakerProvider{
		inner:  inner,
		logger: logger,
	}

	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Provider circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Only availability failures count against the breaker.
			// An unusable response still proves the backend is up.
			return err == nil || !pkgerrors.IsProviderUnavailable(err)
		},
	})

	return p
}

// Name returns the wrapped provider's registry name
func (p *BreakerProvider) Name() string {
	return p.inner.Name()
}

// IsAvailable reports the wrapped provider's availability
func (p *BreakerProvider) IsAvailable() bool {
	return p.inner.IsAvailable()
}

// Complete executes the request through the circuit breaker
func (p *BreakerProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.inner.Complete(ctx, prompt, options)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", pkgerrors.NewProviderUnavailableError(p.inner.Name(), err)
		}
		return "", err
	}
	return result.(string), nil
}

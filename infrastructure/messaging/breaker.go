package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"provenance-backend/application/ports"
	"provenance-backend/domain/events"
	pkgerrors "provenance-backend/pkg/errors"
)

// BreakerConfig holds configuration for the publisher circuit breaker
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used in production
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      5,
	}
}

// BreakerPublisher stops calling a failing publisher for a while so that
// request latency does not follow an unavailable event bus.
type BreakerPublisher struct {
	next ports.EventPublisher
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerPublisher wraps next with a circuit breaker
func NewBreakerPublisher(next ports.EventPublisher, cfg BreakerConfig, logger *zap.Logger) *BreakerPublisher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
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
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &BreakerPublisher{next: next, cb: cb}
}

var _ ports.EventPublisher = (*BreakerPublisher)(nil)

func (p *BreakerPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.execute(func() error { return p.next.Publish(ctx, event) })
}

func (p *BreakerPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	return p.execute(func() error { return p.next.PublishBatch(ctx, evts) })
}

// State reports the breaker state.
func (p *BreakerPublisher) State() gobreaker.State {
	return p.cb.State()
}

func (p *BreakerPublisher) execute(fn func() error) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.NewUnavailableError("event bus").WithCause(err)
	}
	return err
}

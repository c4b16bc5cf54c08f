package webhook

import (
	"errors"
	"fmt"
	"time"

	"github.com/burgerboard/api/internal/logger"
	"github.com/burgerboard/api/internal/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// breaker wraps gobreaker with metrics for one print destination.
type breaker struct {
	*gobreaker.CircuitBreaker
	name string
}

func newBreaker(name string) *breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,                // probes allowed while half-open
		Interval:    time.Minute,      // window for failure counts while closed
		Timeout:     30 * time.Second, // open -> half-open
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			// Trip if 60% or more requests fail and at least 3 requests have been made
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(cbName).Set(stateValue(to))
			logger.L().Warn("circuit breaker state changed",
				zap.String("circuit", cbName),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return &breaker{CircuitBreaker: cb, name: name}
}

// run executes fn through the breaker, counting failures.
func (b *breaker) run(fn func() error) error {
	_, err := b.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err != nil {
		metrics.CircuitBreakerFailures.WithLabelValues(b.name).Inc()
		return describe(b.name, err)
	}
	return nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

func describe(name string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) {
		return fmt.Errorf("%s printer unavailable (circuit open)", name)
	}
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s printer recovering, too many requests", name)
	}
	return err
}

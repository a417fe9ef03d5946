package tourapi

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"mytrip/internal/adapters/observability"
)

// newBreaker opens after 5 consecutive failures and half-opens again after 30s.
// Cancelled callers do not count against the provider.
func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	observability.SetBreakerState(name, int(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("breaker state change")
			observability.SetBreakerState(name, int(to))
		},
	})
}

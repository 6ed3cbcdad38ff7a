package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker in front of the upstream
type BreakerConfig struct {
	// Name identifies the breaker in logs
	Name string

	// ConsecutiveFailures trips the breaker. Default: 5
	ConsecutiveFailures uint32

	// OpenTimeout is how long the breaker stays open before a trial request.
	// Default: 60 seconds
	OpenTimeout time.Duration

	// MaxRequests is the number of trial requests allowed while half-open.
	// Default: 1
	MaxRequests uint32
}

// DefaultBreakerConfig returns the breaker settings used by the CLI
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "nutc-parking",
		ConsecutiveFailures: 5,
		OpenTimeout:         60 * time.Second,
		MaxRequests:         1,
	}
}

func (s *Scraper) newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker[page] {
	def := DefaultBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = def.ConsecutiveFailures
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}

	return gobreaker.NewCircuitBreaker[page](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// a caller giving up is not an upstream failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// BreakerState reports the circuit breaker state, or "disabled"
func (s *Scraper) BreakerState() string {
	if s.breaker == nil {
		return "disabled"
	}
	return s.breaker.State().String()
}

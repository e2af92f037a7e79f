// Package circuitbreaker provides a thin, generic wrapper over
// sony/gobreaker/v2 with sensible defaults for venue connect/auth attempts.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config configures a CircuitBreaker.
type Config struct {
	Name          string
	MaxRequests   uint32
	Interval      time.Duration
	Timeout       time.Duration
	FailureRatio  float64
	MinRequests   uint32
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultConfig returns a Config that trips once at least 3 requests have
// been counted and 60% or more of them failed, and waits 30s in the open
// state before allowing a single trial request.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Timeout:      30 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  3,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker[T], translating Config into
// gobreaker's ReadyToTrip predicate.
type CircuitBreaker[T any] struct {
	inner *gobreaker.CircuitBreaker[T]
}

// New constructs a CircuitBreaker from cfg.
func New[T any](cfg Config) *CircuitBreaker[T] {
	minRequests := cfg.MinRequests
	if minRequests == 0 {
		minRequests = 3
	}
	failureRatio := cfg.FailureRatio
	if failureRatio == 0 {
		failureRatio = 0.6
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= failureRatio
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}

	return &CircuitBreaker[T]{inner: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn through the breaker, short-circuiting with
// gobreaker.ErrOpenState while the breaker is open.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	return c.inner.Execute(fn)
}

// State returns the breaker's current state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.inner.State()
}

package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Breaker wraps gobreaker for callers that only care about the error.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

// New builds a breaker that opens after five consecutive failures and
// probes again after thirty seconds.
func New(name string) *Breaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

// Do runs fn through the breaker. While the breaker is open fn is not
// called and gobreaker.ErrOpenState is returned.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

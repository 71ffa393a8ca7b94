package kafka

import (
	"context"

	"storefront/pkg/circuitbreaker"
)

// publisher matches the application-layer Publisher interface.
type publisher interface {
	PublishOrder(ctx context.Context, payload []byte) error
}

// BreakingPublisher trips open when the broker keeps failing, so a dead
// Kafka cannot slow every checkout down with full publish timeouts.
type BreakingPublisher struct {
	next    publisher
	breaker *circuitbreaker.Breaker
}

func WithBreaker(next publisher) *BreakingPublisher {
	return &BreakingPublisher{
		next:    next,
		breaker: circuitbreaker.New("order-events"),
	}
}

func (p *BreakingPublisher) PublishOrder(ctx context.Context, payload []byte) error {
	return p.breaker.Do(func() error {
		return p.next.PublishOrder(ctx, payload)
	})
}

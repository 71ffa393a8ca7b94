package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"storefront/internal/config"
	"storefront/pkg/logger"
)

// OrderProducer publishes order events to Kafka.
type OrderProducer struct {
	client *kgo.Client
	topic  string
	log    logger.Logger
}

func NewOrderProducer(cfg config.KafkaConfig, log logger.Logger) (*OrderProducer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.OrderTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.DisableIdempotentWrite(),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	log.Info("kafka producer ready",
		logger.Any("brokers", cfg.Brokers),
		logger.String("topic", cfg.OrderTopic),
	)

	return &OrderProducer{
		client: client,
		topic:  cfg.OrderTopic,
		log:    log,
	}, nil
}

func (p *OrderProducer) PublishOrder(ctx context.Context, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload is empty")
	}

	rec := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(uuid.NewString()),
		Value:     payload,
		Timestamp: time.Now().UTC(),
	}

	// ProduceSync returns per-record results; a single record means the
	// first error is the only one.
	results := p.client.ProduceSync(ctx, rec)
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("publish to kafka topic %s: %w", p.topic, err)
	}
	return nil
}

func (p *OrderProducer) Close() {
	p.log.Info("closing kafka producer", logger.String("topic", p.topic))
	p.client.Close()
}

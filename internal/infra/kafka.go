package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher writes comanda events to a Kafka topic through a circuit breaker.
type Publisher struct {
	writer  *kafka.Writer
	breaker *Breaker
}

// NewPublisher returns nil when no brokers are configured; a nil *Publisher
// is not usable and callers must check for it.
func NewPublisher(brokers []string, topic string, cb *Breaker) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, breaker: cb}
}

// Publish sends one message keyed by key so a comanda's events stay ordered
// within a partition. tipo travels as a header.
func (p *Publisher) Publish(ctx context.Context, key, tipo string, value []byte) error {
	return p.breaker.Do(ctx, func(ctx context.Context) error {
		err := p.writer.WriteMessages(ctx, kafka.Message{
			Key:     []byte(key),
			Value:   value,
			Headers: []kafka.Header{{Key: "tipo", Value: []byte(tipo)}},
			Time:    time.Now(),
		})
		if err != nil {
			return fmt.Errorf("kafka publish %s: %w", tipo, err)
		}
		return nil
	})
}

// Breaker exposes the breaker state for /health.
func (p *Publisher) Breaker() *Breaker { return p.breaker }

func (p *Publisher) Close() error { return p.writer.Close() }

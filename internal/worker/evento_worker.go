package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"comandas/internal/dto"
)

// EventoPublisher is the Kafka side of the pipeline (infra.Publisher).
type EventoPublisher interface {
	Publish(ctx context.Context, key, tipo string, value []byte) error
}

// NewEventoWorker returns the handler that publishes queued comanda events.
// The comanda id is the message key so a comanda's events stay in order.
func NewEventoWorker(pub EventoPublisher) HandlerFunc {
	return func(ctx context.Context, job Job) error {
		var ev dto.EventoComanda
		if err := json.Unmarshal(job.Payload, &ev); err != nil {
			return fmt.Errorf("evento_worker: payload invalido: %w", err)
		}
		if ev.Comanda.ID == "" {
			return fmt.Errorf("evento_worker: evento %s sin comanda", ev.Tipo)
		}
		return pub.Publish(ctx, ev.Comanda.ID, ev.Tipo, job.Payload)
	}
}

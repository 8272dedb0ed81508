package service

import (
	"context"

	"comandas/internal/dto"
)

// Notificador receives comanda events after they are committed. It must not
// block the request: implementations queue or drop.
type Notificador interface {
	Notificar(ctx context.Context, ev dto.EventoComanda)
}

// Notificadores fans an event out to every non-nil member.
type Notificadores []Notificador

func (ns Notificadores) Notificar(ctx context.Context, ev dto.EventoComanda) {
	for _, n := range ns {
		if n != nil {
			n.Notificar(ctx, ev)
		}
	}
}

type nopNotificador struct{}

func (nopNotificador) Notificar(context.Context, dto.EventoComanda) {}

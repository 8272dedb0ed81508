package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoComanda is the closed set of comanda states.
type EstadoComanda string

const (
	EstadoPendiente EstadoComanda = "pendiente"
	EstadoPagado    EstadoComanda = "pagado"
	EstadoCancelado EstadoComanda = "cancelado"
)

// transiciones lists every legal move. Anything absent is rejected,
// including staying in the same state.
var transiciones = map[EstadoComanda][]EstadoComanda{
	EstadoPendiente: {EstadoPagado, EstadoCancelado},
	EstadoPagado:    {},
	EstadoCancelado: {},
}

func ParseEstado(s string) (EstadoComanda, error) {
	e := EstadoComanda(s)
	if _, ok := transiciones[e]; !ok {
		return "", fmt.Errorf("estado desconocido %q", s)
	}
	return e, nil
}

func (e EstadoComanda) PuedeTransicionarA(destino EstadoComanda) bool {
	for _, d := range transiciones[e] {
		if d == destino {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves e.
func (e EstadoComanda) Terminal() bool { return len(transiciones[e]) == 0 }

// MetodoPago: "efectivo" | "transferencia" | "invitacion"
type MetodoPago string

const (
	MetodoEfectivo      MetodoPago = "efectivo"
	MetodoTransferencia MetodoPago = "transferencia"
	MetodoInvitacion    MetodoPago = "invitacion"
)

func ParseMetodoPago(s string) (MetodoPago, error) {
	switch m := MetodoPago(s); m {
	case MetodoEfectivo, MetodoTransferencia, MetodoInvitacion:
		return m, nil
	}
	return "", fmt.Errorf("metodo de pago desconocido %q", s)
}

// Comanda is an order header. Total equals the sum of item subtotals at
// creation; after that only Estado, MetodoPago and Nota change.
type Comanda struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	EventoID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	NombreCliente string          `gorm:"not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado        EstadoComanda   `gorm:"type:varchar(20);not null;default:'pendiente'"`
	MetodoPago    *MetodoPago     `gorm:"type:varchar(20)"`
	Nota          *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Usuario Usuario       `gorm:"foreignKey:UsuarioID"`
	Items   []ComandaItem `gorm:"foreignKey:ComandaID"`
}

// ComandaItem is an immutable line of a Comanda. Linea keeps cart order.
type ComandaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComandaID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Linea          int             `gorm:"not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto Producto `gorm:"foreignKey:ProductoID"`
}

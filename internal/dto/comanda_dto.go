package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearComandaRequest struct {
	UsuarioID     string               `json:"usuario_id"     validate:"required,uuid"`
	EventoID      string               `json:"evento_id"      validate:"required,uuid"`
	NombreCliente string               `json:"nombre_cliente" validate:"required,min=1,max=120"`
	Total         *decimal.Decimal     `json:"total"          validate:"required,min=0"`
	Productos     []ItemComandaRequest `json:"productos"      validate:"required,min=1,dive"`
}

type ItemComandaRequest struct {
	ProductoID string           `json:"id"       validate:"required,uuid"`
	Cantidad   int              `json:"cantidad" validate:"required,min=1,max=1000"`
	Precio     *decimal.Decimal `json:"precio"   validate:"required,min=0"`
}

type ActualizarEstadoRequest struct {
	ComandaID  string  `json:"comanda_id"  validate:"required,uuid"`
	Estado     string  `json:"estado"      validate:"required,oneof=pendiente pagado cancelado"`
	MetodoPago *string `json:"metodo_pago" validate:"omitempty,oneof=efectivo transferencia invitacion"`
	Nota       *string `json:"nota"        validate:"omitempty,max=500"`
}

type ComandaFilter struct {
	EventoID string `form:"evento_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CrearComandaResponse struct {
	Success   bool   `json:"success"`
	ComandaID string `json:"comanda_id"`
}

type ItemComandaResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre"`
	ProductoIcono  string          `json:"producto_icono"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type ComandaResponse struct {
	ID            string                `json:"id"`
	UsuarioID     string                `json:"usuario_id"`
	UsuarioNombre string                `json:"usuario_nombre"`
	EventoID      string                `json:"evento_id"`
	NombreCliente string                `json:"nombre_cliente"`
	Total         decimal.Decimal       `json:"total"`
	Estado        string                `json:"estado"`
	MetodoPago    *string               `json:"metodo_pago"`
	Nota          *string               `json:"nota"`
	Items         []ItemComandaResponse `json:"items"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type ComandaEnvelope struct {
	Success bool            `json:"success"`
	Comanda ComandaResponse `json:"comanda"`
}

type ComandaListResponse struct {
	Success  bool              `json:"success"`
	Comandas []ComandaResponse `json:"comandas"`
}

// ─── Events ──────────────────────────────────────────────────────────────────

const (
	EventoComandaCreada      = "comanda.creada"
	EventoComandaActualizada = "comanda.actualizada"
)

// EventoComanda is pushed to the live board and published to Kafka.
type EventoComanda struct {
	Tipo       string          `json:"tipo"`
	Comanda    ComandaResponse `json:"comanda"`
	OcurridoEn time.Time       `json:"ocurrido_en"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearEventoRequest struct {
	Nombre        string          `json:"nombre"         validate:"required,min=2,max=120"`
	Descripcion   *string         `json:"descripcion"    validate:"omitempty,max=500"`
	FechaInicio   time.Time       `json:"fecha_inicio"   validate:"required"`
	FechaFin      time.Time       `json:"fecha_fin"      validate:"required,gtfield=FechaInicio"`
	Capacidad     int             `json:"capacidad"      validate:"min=0"`
	PrecioEntrada decimal.Decimal `json:"precio_entrada" validate:"min=0"`
	Ubicacion     *string         `json:"ubicacion"      validate:"omitempty,max=200"`
	Activo        *bool           `json:"activo"`
}

// ActualizarEventoRequest is a partial update. Date ordering is checked
// against the merged record by the service.
type ActualizarEventoRequest struct {
	Nombre        *string          `json:"nombre"         validate:"omitempty,min=2,max=120"`
	Descripcion   *string          `json:"descripcion"    validate:"omitempty,max=500"`
	FechaInicio   *time.Time       `json:"fecha_inicio"`
	FechaFin      *time.Time       `json:"fecha_fin"`
	Capacidad     *int             `json:"capacidad"      validate:"omitempty,min=0"`
	PrecioEntrada *decimal.Decimal `json:"precio_entrada" validate:"omitempty,min=0"`
	Ubicacion     *string          `json:"ubicacion"      validate:"omitempty,max=200"`
	Activo        *bool            `json:"activo"`
}

type FijarEventoActivoRequest struct {
	EventoID string `json:"evento_id" validate:"required,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EventoResponse struct {
	ID            string          `json:"id"`
	Nombre        string          `json:"nombre"`
	Descripcion   *string         `json:"descripcion"`
	FechaInicio   time.Time       `json:"fecha_inicio"`
	FechaFin      time.Time       `json:"fecha_fin"`
	Capacidad     int             `json:"capacidad"`
	PrecioEntrada decimal.Decimal `json:"precio_entrada"`
	Ubicacion     *string         `json:"ubicacion"`
	Activo        bool            `json:"activo"`
}

type EventoEnvelope struct {
	Success bool           `json:"success"`
	Evento  EventoResponse `json:"evento"`
}

type EventoListResponse struct {
	Success bool             `json:"success"`
	Eventos []EventoResponse `json:"eventos"`
}

// EventoActivoResponse carries a nil Evento when no evento is active.
type EventoActivoResponse struct {
	Success bool            `json:"success"`
	Evento  *EventoResponse `json:"evento"`
}

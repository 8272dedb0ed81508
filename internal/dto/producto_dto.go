package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre string          `json:"nombre" validate:"required,min=2,max=80"`
	Precio decimal.Decimal `json:"precio" validate:"required,gt=0,lte=1000000"`
	Icono  string          `json:"icono"  validate:"max=16"`
	Activo *bool           `json:"activo"`
}

type ActualizarProductoRequest struct {
	Nombre *string          `json:"nombre" validate:"omitempty,min=2,max=80"`
	Precio *decimal.Decimal `json:"precio" validate:"omitempty,gt=0,lte=1000000"`
	Icono  *string          `json:"icono"  validate:"omitempty,max=16"`
	Activo *bool            `json:"activo"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductoFilter struct {
	// Activo: "" = activos (default), "false" = inactivos, "all" = todos
	Activo string `form:"activo" validate:"omitempty,oneof=true false all"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID        string          `json:"id"`
	Nombre    string          `json:"nombre"`
	Precio    decimal.Decimal `json:"precio"`
	Icono     string          `json:"icono"`
	Activo    bool            `json:"activo"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProductoEnvelope struct {
	Success  bool             `json:"success"`
	Producto ProductoResponse `json:"producto"`
}

type ProductoListResponse struct {
	Success   bool               `json:"success"`
	Productos []ProductoResponse `json:"productos"`
}

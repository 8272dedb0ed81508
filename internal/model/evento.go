package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Evento is a scheduled venue session. Two eventos with the same name
// (case-insensitive) cannot overlap in time: exclusion constraint
// eventos_nombre_rango_excl.
type Evento struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre        string    `gorm:"not null"`
	Descripcion   *string
	FechaInicio   time.Time       `gorm:"not null"`
	FechaFin      time.Time       `gorm:"not null"`
	Capacidad     int             `gorm:"not null;default:0"`
	PrecioEntrada decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Ubicacion     *string
	Activo        bool `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a sellable catalog item. Nombre is unique case-insensitively
// (index uni_productos_nombre_lower, created by the migrations).
type Producto struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string          `gorm:"not null"`
	Precio    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Icono     string          `gorm:"type:varchar(16);not null;default:''"`
	Activo    bool            `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

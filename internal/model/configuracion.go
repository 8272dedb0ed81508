package model

import "time"

// Configuracion is a key/value settings row.
type Configuracion struct {
	Clave     string `gorm:"primaryKey"`
	Valor     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (Configuracion) TableName() string { return "configuracion" }

// ClaveEventoActivo holds the id of the evento new comandas are taken against.
const ClaveEventoActivo = "evento_activo_id"

package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario is a venue operator. Comandas record which usuario took them.
// Rol: "admin" | "staff"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(20);not null;default:'staff'"`
	Activo       bool      `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	RolAdmin = "admin"
	RolStaff = "staff"
)

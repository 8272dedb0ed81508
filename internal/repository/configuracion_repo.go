package repository

import (
	"context"

	"comandas/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfiguracionRepository is the raw key/value store. Callers go through
// service.ConfiguracionService, which owns the typed keys.
type ConfiguracionRepository interface {
	Get(ctx context.Context, clave string) (string, error)
	Set(ctx context.Context, clave, valor string) error
	Delete(ctx context.Context, clave string) error
}

type configuracionRepo struct{ db *gorm.DB }

func NewConfiguracionRepository(db *gorm.DB) ConfiguracionRepository {
	return &configuracionRepo{db: db}
}

func (r *configuracionRepo) Get(ctx context.Context, clave string) (string, error) {
	var c model.Configuracion
	if err := r.db.WithContext(ctx).Where("clave = ?", clave).First(&c).Error; err != nil {
		return "", traducirError(err)
	}
	return c.Valor, nil
}

func (r *configuracionRepo) Set(ctx context.Context, clave, valor string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "clave"}},
		DoUpdates: clause.AssignmentColumns([]string{"valor", "updated_at"}),
	}).Create(&model.Configuracion{Clave: clave, Valor: valor}).Error
	return traducirError(err)
}

func (r *configuracionRepo) Delete(ctx context.Context, clave string) error {
	err := r.db.WithContext(ctx).Where("clave = ?", clave).Delete(&model.Configuracion{}).Error
	return traducirError(err)
}

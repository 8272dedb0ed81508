package repository

import (
	"context"

	"comandas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventoRepository interface {
	Create(ctx context.Context, e *model.Evento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Evento, error)
	List(ctx context.Context) ([]model.Evento, error)
	Update(ctx context.Context, e *model.Evento) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type eventoRepo struct{ db *gorm.DB }

func NewEventoRepository(db *gorm.DB) EventoRepository { return &eventoRepo{db: db} }

func (r *eventoRepo) Create(ctx context.Context, e *model.Evento) error {
	return traducirError(r.db.WithContext(ctx).Create(e).Error)
}

func (r *eventoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Evento, error) {
	var e model.Evento
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, traducirError(err)
	}
	return &e, nil
}

func (r *eventoRepo) List(ctx context.Context) ([]model.Evento, error) {
	var eventos []model.Evento
	err := r.db.WithContext(ctx).Order("fecha_inicio DESC").Find(&eventos).Error
	return eventos, traducirError(err)
}

func (r *eventoRepo) Update(ctx context.Context, e *model.Evento) error {
	res := r.db.WithContext(ctx).Model(e).
		Select("nombre", "descripcion", "fecha_inicio", "fecha_fin", "capacidad",
			"precio_entrada", "ubicacion", "activo", "updated_at").
		Updates(e)
	if res.Error != nil {
		return traducirError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoEncontrado
	}
	return nil
}

// Delete fails with ErrEnUso while comandas reference the evento.
func (r *eventoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Evento{})
	if res.Error != nil {
		return traducirError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoEncontrado
	}
	return nil
}

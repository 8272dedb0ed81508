package repository

import (
	"context"
	"time"

	"comandas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ComandaRepository interface {
	// Create inserts the header. Pass the transaction tx so CreateItems joins it.
	Create(ctx context.Context, tx *gorm.DB, c *model.Comanda) error
	CreateItems(ctx context.Context, tx *gorm.DB, items []model.ComandaItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comanda, error)
	// UpdateEstado applies the change only while the row is still in estado
	// desde; otherwise it returns ErrConflictoEstado.
	UpdateEstado(ctx context.Context, id uuid.UUID, desde model.EstadoComanda, cambio CambioEstado) error
	// ListAbiertas returns pendiente and pagado comandas, newest first.
	ListAbiertas(ctx context.Context, eventoID *uuid.UUID) ([]model.Comanda, error)
	// ListDesde returns comandas of any estado created at or after desde, items loaded.
	ListDesde(ctx context.Context, desde time.Time, eventoID *uuid.UUID) ([]model.Comanda, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

// CambioEstado is the mutable part of a comanda. A nil Nota keeps the stored one.
type CambioEstado struct {
	Estado     model.EstadoComanda
	MetodoPago *model.MetodoPago
	Nota       *string
}

type comandaRepo struct{ db *gorm.DB }

func NewComandaRepository(db *gorm.DB) ComandaRepository { return &comandaRepo{db: db} }

func (r *comandaRepo) DB() *gorm.DB { return r.db }

func (r *comandaRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *comandaRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Comanda) error {
	return traducirError(r.conn(tx).WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (r *comandaRepo) CreateItems(ctx context.Context, tx *gorm.DB, items []model.ComandaItem) error {
	if len(items) == 0 {
		return nil
	}
	return traducirError(r.conn(tx).WithContext(ctx).Omit(clause.Associations).Create(&items).Error)
}

func (r *comandaRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Usuario").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("linea ASC") }).
		Preload("Items.Producto")
}

func (r *comandaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Comanda, error) {
	var c model.Comanda
	if err := r.preloaded(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, traducirError(err)
	}
	return &c, nil
}

func (r *comandaRepo) UpdateEstado(ctx context.Context, id uuid.UUID, desde model.EstadoComanda, cambio CambioEstado) error {
	cols := map[string]any{
		"estado":     string(cambio.Estado),
		"updated_at": time.Now(),
	}
	if cambio.MetodoPago != nil {
		cols["metodo_pago"] = string(*cambio.MetodoPago)
	} else {
		cols["metodo_pago"] = gorm.Expr("NULL")
	}
	if cambio.Nota != nil {
		cols["nota"] = *cambio.Nota
	}

	res := r.db.WithContext(ctx).Model(&model.Comanda{}).
		Where("id = ? AND estado = ?", id, string(desde)).
		Updates(cols)
	if res.Error != nil {
		return traducirError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflictoEstado
	}
	return nil
}

func (r *comandaRepo) ListAbiertas(ctx context.Context, eventoID *uuid.UUID) ([]model.Comanda, error) {
	var comandas []model.Comanda
	q := r.preloaded(ctx).
		Where("estado IN ?", []string{string(model.EstadoPendiente), string(model.EstadoPagado)})
	if eventoID != nil {
		q = q.Where("evento_id = ?", *eventoID)
	}
	err := q.Order("created_at DESC").Order("id DESC").Find(&comandas).Error
	return comandas, traducirError(err)
}

func (r *comandaRepo) ListDesde(ctx context.Context, desde time.Time, eventoID *uuid.UUID) ([]model.Comanda, error) {
	var comandas []model.Comanda
	q := r.db.WithContext(ctx).Preload("Items").Where("created_at >= ?", desde)
	if eventoID != nil {
		q = q.Where("evento_id = ?", *eventoID)
	}
	err := q.Find(&comandas).Error
	return comandas, traducirError(err)
}

package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"comandas/internal/apierror"
	"comandas/internal/dto"
	"comandas/internal/model"
	"comandas/internal/repository"

	"github.com/google/uuid"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	nombre, err := nombreProducto(req.Nombre)
	if err != nil {
		return nil, err
	}
	p := &model.Producto{
		Nombre: nombre,
		Precio: req.Precio,
		Icono:  strings.TrimSpace(req.Icono),
		Activo: req.Activo == nil || *req.Activo,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, errorProducto("crear producto", err)
	}
	resp := productoResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errorProducto("buscar producto", err)
	}
	resp := productoResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	productos, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistencia("listar productos", err)
	}
	out := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		out[i] = productoResponse(&productos[i])
	}
	return &dto.ProductoListResponse{Success: true, Productos: out}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errorProducto("buscar producto", err)
	}
	if req.Nombre != nil {
		nombre, err := nombreProducto(*req.Nombre)
		if err != nil {
			return nil, err
		}
		p.Nombre = nombre
	}
	if req.Precio != nil {
		p.Precio = *req.Precio
	}
	if req.Icono != nil {
		p.Icono = strings.TrimSpace(*req.Icono)
	}
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, errorProducto("actualizar producto", err)
	}
	resp := productoResponse(p)
	return &resp, nil
}

func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return errorProducto("eliminar producto", err)
	}
	return nil
}

// nombreProducto trims and re-checks the length the validator saw untrimmed.
func nombreProducto(raw string) (string, error) {
	nombre := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(nombre); n < 2 || n > 80 {
		return "", apierror.NewValidation(map[string]string{"nombre": "entre 2 y 80 caracteres"})
	}
	return nombre, nil
}

func errorProducto(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNoEncontrado):
		return ErrProductoNoEncontrado
	case errors.Is(err, repository.ErrDuplicado):
		return ErrProductoDuplicado
	case errors.Is(err, repository.ErrEnUso):
		return ErrProductoEnUso
	case errors.Is(err, repository.ErrRestriccion):
		return apierror.Validation("Datos de producto fuera de rango")
	}
	return persistencia(op, err)
}

func productoResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:        p.ID.String(),
		Nombre:    p.Nombre,
		Precio:    p.Precio,
		Icono:     p.Icono,
		Activo:    p.Activo,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

package service

import (
	"context"
	"errors"
	"strings"

	"comandas/internal/apierror"
	"comandas/internal/dto"
	"comandas/internal/model"
	"comandas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type EventoService interface {
	Crear(ctx context.Context, req dto.CrearEventoRequest) (*dto.EventoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.EventoResponse, error)
	Listar(ctx context.Context) (*dto.EventoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEventoRequest) (*dto.EventoResponse, error)
	// Eliminar deletes the evento and clears the active pointer if it pointed at it.
	Eliminar(ctx context.Context, id uuid.UUID) error

	ObtenerActivo(ctx context.Context) (*dto.EventoActivoResponse, error)
	FijarActivo(ctx context.Context, id uuid.UUID) (*dto.EventoActivoResponse, error)
}

type eventoService struct {
	repo   repository.EventoRepository
	config ConfiguracionService
}

func NewEventoService(repo repository.EventoRepository, config ConfiguracionService) EventoService {
	return &eventoService{repo: repo, config: config}
}

func (s *eventoService) Crear(ctx context.Context, req dto.CrearEventoRequest) (*dto.EventoResponse, error) {
	e := &model.Evento{
		Nombre:        strings.TrimSpace(req.Nombre),
		Descripcion:   req.Descripcion,
		FechaInicio:   req.FechaInicio,
		FechaFin:      req.FechaFin,
		Capacidad:     req.Capacidad,
		PrecioEntrada: req.PrecioEntrada,
		Ubicacion:     req.Ubicacion,
		Activo:        req.Activo == nil || *req.Activo,
	}
	if err := validarEvento(e); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, errorEvento("crear evento", err)
	}
	resp := eventoResponse(e)
	return &resp, nil
}

func (s *eventoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.EventoResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errorEvento("buscar evento", err)
	}
	resp := eventoResponse(e)
	return &resp, nil
}

func (s *eventoService) Listar(ctx context.Context) (*dto.EventoListResponse, error) {
	eventos, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistencia("listar eventos", err)
	}
	out := make([]dto.EventoResponse, len(eventos))
	for i := range eventos {
		out[i] = eventoResponse(&eventos[i])
	}
	return &dto.EventoListResponse{Success: true, Eventos: out}, nil
}

func (s *eventoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEventoRequest) (*dto.EventoResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errorEvento("buscar evento", err)
	}
	if req.Nombre != nil {
		e.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		e.Descripcion = req.Descripcion
	}
	if req.FechaInicio != nil {
		e.FechaInicio = *req.FechaInicio
	}
	if req.FechaFin != nil {
		e.FechaFin = *req.FechaFin
	}
	if req.Capacidad != nil {
		e.Capacidad = *req.Capacidad
	}
	if req.PrecioEntrada != nil {
		e.PrecioEntrada = *req.PrecioEntrada
	}
	if req.Ubicacion != nil {
		e.Ubicacion = req.Ubicacion
	}
	if req.Activo != nil {
		e.Activo = *req.Activo
	}
	if err := validarEvento(e); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, errorEvento("actualizar evento", err)
	}
	resp := eventoResponse(e)
	return &resp, nil
}

func (s *eventoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return errorEvento("eliminar evento", err)
	}
	activo, err := s.config.EventoActivo(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("no se pudo verificar el evento activo tras eliminar")
		return nil
	}
	if activo != nil && *activo == id {
		// ObtenerActivo treats a pointer to a missing evento as none
		if err := s.config.LimpiarEventoActivo(ctx); err != nil {
			log.Warn().Err(err).Str("evento_id", id.String()).Msg("no se pudo limpiar el evento activo eliminado")
		}
	}
	return nil
}

func (s *eventoService) ObtenerActivo(ctx context.Context) (*dto.EventoActivoResponse, error) {
	id, err := s.config.EventoActivo(ctx)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return &dto.EventoActivoResponse{Success: true}, nil
	}
	e, err := s.repo.FindByID(ctx, *id)
	if errors.Is(err, repository.ErrNoEncontrado) {
		// pointer outlived its evento
		return &dto.EventoActivoResponse{Success: true}, nil
	}
	if err != nil {
		return nil, persistencia("buscar evento activo", err)
	}
	resp := eventoResponse(e)
	return &dto.EventoActivoResponse{Success: true, Evento: &resp}, nil
}

func (s *eventoService) FijarActivo(ctx context.Context, id uuid.UUID) (*dto.EventoActivoResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errorEvento("buscar evento", err)
	}
	if err := s.config.FijarEventoActivo(ctx, id); err != nil {
		return nil, err
	}
	resp := eventoResponse(e)
	return &dto.EventoActivoResponse{Success: true, Evento: &resp}, nil
}

func validarEvento(e *model.Evento) error {
	if n := len([]rune(e.Nombre)); n < 2 || n > 120 {
		return apierror.NewValidation(map[string]string{"nombre": "entre 2 y 120 caracteres"})
	}
	if !e.FechaInicio.Before(e.FechaFin) {
		return ErrFechasInvalidas
	}
	if e.Capacidad < 0 || e.PrecioEntrada.IsNegative() {
		return apierror.Validation("capacidad y precio_entrada no pueden ser negativos")
	}
	return nil
}

func errorEvento(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNoEncontrado):
		return ErrEventoNoEncontrado
	case errors.Is(err, repository.ErrDuplicado):
		return ErrEventoSolapado
	case errors.Is(err, repository.ErrEnUso):
		return ErrEventoEnUso
	case errors.Is(err, repository.ErrRestriccion):
		return ErrFechasInvalidas
	}
	return persistencia(op, err)
}

func eventoResponse(e *model.Evento) dto.EventoResponse {
	return dto.EventoResponse{
		ID:            e.ID.String(),
		Nombre:        e.Nombre,
		Descripcion:   e.Descripcion,
		FechaInicio:   e.FechaInicio,
		FechaFin:      e.FechaFin,
		Capacidad:     e.Capacidad,
		PrecioEntrada: e.PrecioEntrada,
		Ubicacion:     e.Ubicacion,
		Activo:        e.Activo,
	}
}

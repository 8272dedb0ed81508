package service

import (
	"context"
	"errors"
	"time"

	"comandas/internal/model"
	"comandas/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	cacheEventoActivoKey = "config:" + model.ClaveEventoActivo
	cacheEventoActivoTTL = 5 * time.Minute
	cacheSinValor        = "none"
)

// ConfiguracionService is the typed accessor over the configuracion table.
// The active evento pointer is cached in redis (cache-aside) when available.
type ConfiguracionService interface {
	// EventoActivo returns nil when no evento is active.
	EventoActivo(ctx context.Context) (*uuid.UUID, error)
	FijarEventoActivo(ctx context.Context, id uuid.UUID) error
	LimpiarEventoActivo(ctx context.Context) error
}

type configuracionService struct {
	repo repository.ConfiguracionRepository
	rdb  *redis.Client
}

func NewConfiguracionService(repo repository.ConfiguracionRepository, rdb *redis.Client) ConfiguracionService {
	return &configuracionService{repo: repo, rdb: rdb}
}

func (s *configuracionService) EventoActivo(ctx context.Context) (*uuid.UUID, error) {
	if s.rdb != nil {
		val, err := s.rdb.Get(ctx, cacheEventoActivoKey).Result()
		switch {
		case err == nil:
			if val == cacheSinValor {
				return nil, nil
			}
			if id, perr := uuid.Parse(val); perr == nil {
				return &id, nil
			}
			log.Warn().Str("valor", val).Msg("evento activo en cache invalido (continuando con DB)")
		case errors.Is(err, redis.Nil):
		default:
			log.Warn().Err(err).Msg("redis no disponible (continuando con DB)")
		}
	}

	val, err := s.repo.Get(ctx, model.ClaveEventoActivo)
	if errors.Is(err, repository.ErrNoEncontrado) || (err == nil && val == "") {
		s.cachear(ctx, cacheSinValor)
		return nil, nil
	}
	if err != nil {
		return nil, persistencia("leer evento activo", err)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		log.Error().Str("valor", val).Msg("evento_activo_id mal formado en configuracion")
		return nil, nil
	}
	s.cachear(ctx, id.String())
	return &id, nil
}

func (s *configuracionService) FijarEventoActivo(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Set(ctx, model.ClaveEventoActivo, id.String()); err != nil {
		return persistencia("fijar evento activo", err)
	}
	s.invalidar(ctx)
	return nil
}

func (s *configuracionService) LimpiarEventoActivo(ctx context.Context) error {
	if err := s.repo.Delete(ctx, model.ClaveEventoActivo); err != nil {
		return persistencia("limpiar evento activo", err)
	}
	s.invalidar(ctx)
	return nil
}

func (s *configuracionService) cachear(ctx context.Context, val string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheEventoActivoKey, val, cacheEventoActivoTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("no se pudo cachear evento activo")
	}
}

func (s *configuracionService) invalidar(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheEventoActivoKey).Err(); err != nil {
		log.Warn().Err(err).Msg("no se pudo invalidar evento activo en cache")
	}
}

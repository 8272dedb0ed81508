package service

import (
	"context"
	"time"

	"comandas/internal/dto"
	"comandas/internal/repository"
	"comandas/internal/stats"
)

type StatsService interface {
	Resumen(ctx context.Context, filter dto.StatsFilter) (*dto.StatsResponse, error)
}

type statsService struct {
	repo repository.ComandaRepository
	loc  *time.Location
	now  func() time.Time
}

// NewStatsService computes day/week/month windows in loc.
func NewStatsService(repo repository.ComandaRepository, loc *time.Location) StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &statsService{repo: repo, loc: loc, now: time.Now}
}

func (s *statsService) Resumen(ctx context.Context, filter dto.StatsFilter) (*dto.StatsResponse, error) {
	eventoID, err := parseFiltroEvento(filter.EventoID)
	if err != nil {
		return nil, err
	}
	ahora := s.now().In(s.loc)
	desde := stats.CalcularLimites(ahora).Desde()

	comandas, err := s.repo.ListDesde(ctx, desde, eventoID)
	if err != nil {
		return nil, persistencia("cargar comandas para stats", err)
	}
	return &dto.StatsResponse{
		Success: true,
		Stats:   stats.Calcular(stats.DesdeModelo(comandas), ahora),
	}, nil
}

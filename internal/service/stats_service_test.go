package service

import (
	"context"
	"testing"
	"time"

	"comandas/internal/apierror"
	"comandas/internal/dto"
	"comandas/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsResumen_VentanaYFiltro(t *testing.T) {
	repo := newStubComandaRepo()
	ahora := time.Date(2026, 10, 2, 15, 0, 0, 0, time.UTC)
	svc := NewStatsService(repo, time.UTC).(*statsService)
	svc.now = func() time.Time { return ahora }

	evento := uuid.New()
	otro := uuid.New()
	efectivo := model.MetodoEfectivo
	for _, c := range []*model.Comanda{
		{EventoID: evento, CreatedAt: ahora.Add(-time.Hour), Total: decimal.NewFromInt(100), Estado: model.EstadoPagado, MetodoPago: &efectivo},
		{EventoID: evento, CreatedAt: ahora.Add(-2 * time.Hour), Total: decimal.NewFromInt(50), Estado: model.EstadoCancelado},
		{EventoID: otro, CreatedAt: ahora.Add(-time.Hour), Total: decimal.NewFromInt(999), Estado: model.EstadoPagado, MetodoPago: &efectivo},
	} {
		require.NoError(t, repo.Create(context.Background(), nil, c))
	}

	resp, err := svc.Resumen(context.Background(), dto.StatsFilter{EventoID: evento.String()})
	require.NoError(t, err)

	// week of 2026-10-02 starts on Monday 2026-09-28, before the month start
	assert.Equal(t, time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC), repo.desdeCalled)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Stats.ComandasTotales)
	assert.Equal(t, "100", resp.Stats.VentasHoy.String())
	assert.Equal(t, "50", resp.Stats.TasaCancelacion.String())
}

func TestStatsResumen_FiltroInvalido(t *testing.T) {
	svc := NewStatsService(newStubComandaRepo(), nil)

	_, err := svc.Resumen(context.Background(), dto.StatsFilter{EventoID: "no-uuid"})

	assert.Equal(t, apierror.KindValidation, kindOf(t, err))
}

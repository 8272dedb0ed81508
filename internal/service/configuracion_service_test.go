package service

import (
	"context"
	"testing"

	"comandas/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfiguracionFixture(t *testing.T) (*miniredis.Miniredis, *stubConfiguracionRepo, ConfiguracionService) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	repo := newStubConfiguracionRepo()
	return mr, repo, NewConfiguracionService(repo, rdb)
}

func TestEventoActivo_CacheEvitaLecturas(t *testing.T) {
	_, repo, svc := newConfiguracionFixture(t)
	id := uuid.New()
	repo.valores[model.ClaveEventoActivo] = id.String()
	ctx := context.Background()

	primero, err := svc.EventoActivo(ctx)
	require.NoError(t, err)
	segundo, err := svc.EventoActivo(ctx)
	require.NoError(t, err)

	require.NotNil(t, primero)
	require.NotNil(t, segundo)
	assert.Equal(t, id, *segundo)
	assert.Equal(t, 1, repo.lecturas)
}

func TestEventoActivo_CacheaAusencia(t *testing.T) {
	mr, repo, svc := newConfiguracionFixture(t)
	ctx := context.Background()

	for range 3 {
		id, err := svc.EventoActivo(ctx)
		require.NoError(t, err)
		assert.Nil(t, id)
	}

	assert.Equal(t, 1, repo.lecturas)
	v, err := mr.Get(cacheEventoActivoKey)
	require.NoError(t, err)
	assert.Equal(t, cacheSinValor, v)
	assert.Positive(t, mr.TTL(cacheEventoActivoKey))
}

func TestFijarEventoActivo_InvalidaCache(t *testing.T) {
	mr, repo, svc := newConfiguracionFixture(t)
	ctx := context.Background()

	_, err := svc.EventoActivo(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(cacheEventoActivoKey))

	id := uuid.New()
	require.NoError(t, svc.FijarEventoActivo(ctx, id))
	assert.False(t, mr.Exists(cacheEventoActivoKey))

	got, err := svc.EventoActivo(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
	assert.Equal(t, 2, repo.lecturas)

	require.NoError(t, svc.LimpiarEventoActivo(ctx))
	got, err = svc.EventoActivo(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEventoActivo_RedisCaidoUsaDB(t *testing.T) {
	mr, repo, svc := newConfiguracionFixture(t)
	id := uuid.New()
	repo.valores[model.ClaveEventoActivo] = id.String()
	mr.Close()

	got, err := svc.EventoActivo(context.Background())

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
}

func TestEventoActivo_SinRedis(t *testing.T) {
	repo := newStubConfiguracionRepo()
	svc := NewConfiguracionService(repo, nil)

	got, err := svc.EventoActivo(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)

	_, _ = svc.EventoActivo(context.Background())
	assert.Equal(t, 2, repo.lecturas)
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"comandas/internal/dto"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu      sync.Mutex
	err     error
	claves  []string
	tipos   []string
	valores [][]byte
}

func (f *fakePublisher) Publish(_ context.Context, key, tipo string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.claves = append(f.claves, key)
	f.tipos = append(f.tipos, tipo)
	f.valores = append(f.valores, value)
	return nil
}

func (f *fakePublisher) publicados() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.claves)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func eventoDePrueba() dto.EventoComanda {
	return dto.EventoComanda{
		Tipo:       dto.EventoComandaCreada,
		Comanda:    dto.ComandaResponse{ID: uuid.NewString(), Estado: "pendiente"},
		OcurridoEn: time.Now().UTC(),
	}
}

func popJob(t *testing.T, rdb *redis.Client) string {
	t.Helper()
	raw, err := rdb.RPop(context.Background(), QueueEventos).Result()
	require.NoError(t, err)
	return raw
}

func TestDispatcher_EncolaEvento(t *testing.T) {
	_, rdb := newRedis(t)
	ev := eventoDePrueba()

	NewDispatcher(rdb).Notificar(context.Background(), ev)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(popJob(t, rdb)), &job))
	assert.Equal(t, JobEventoComanda, job.Type)
	assert.Equal(t, QueueEventos, job.Queue)
	assert.NotEmpty(t, job.ID)

	var got dto.EventoComanda
	require.NoError(t, json.Unmarshal(job.Payload, &got))
	assert.Equal(t, ev.Comanda.ID, got.Comanda.ID)
}

func TestDispatcher_RedisCaidoNoFalla(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()

	assert.NotPanics(t, func() {
		NewDispatcher(rdb).Notificar(context.Background(), eventoDePrueba())
	})
}

func TestPool_PublicaEnKafka(t *testing.T) {
	_, rdb := newRedis(t)
	pub := &fakePublisher{}
	pool := NewPool(rdb, QueueEventos, 2)
	pool.Handle(JobEventoComanda, NewEventoWorker(pub))

	ev := eventoDePrueba()
	NewDispatcher(rdb).Notificar(context.Background(), ev)
	pool.process(context.Background(), popJob(t, rdb))

	require.Equal(t, 1, pub.publicados())
	assert.Equal(t, ev.Comanda.ID, pub.claves[0])
	assert.Equal(t, dto.EventoComandaCreada, pub.tipos[0])
}

func TestPool_FalloProgramaReintento(t *testing.T) {
	_, rdb := newRedis(t)
	pub := &fakePublisher{err: errors.New("broker caido")}
	pool := NewPool(rdb, QueueEventos, 1)
	ahora := time.Date(2026, 10, 3, 23, 0, 0, 0, time.UTC)
	pool.now = func() time.Time { return ahora }
	pool.Handle(JobEventoComanda, NewEventoWorker(pub))
	ctx := context.Background()

	NewDispatcher(rdb).Notificar(ctx, eventoDePrueba())
	pool.process(ctx, popJob(t, rdb))

	zs, err := rdb.ZRangeWithScores(ctx, QueueReintentos, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, zs, 1)
	assert.Equal(t, float64(ahora.Add(2*time.Second).UnixMilli()), zs[0].Score)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(zs[0].Member.(string)), &job))
	assert.Equal(t, 1, job.Attempts)
	assert.Equal(t, "broker caido", job.LastError)

	// not due yet
	n, err := requeueDue(ctx, rdb, ahora.Add(time.Second))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = requeueDue(ctx, rdb, ahora.Add(3*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.EqualValues(t, 1, rdb.LLen(ctx, QueueEventos).Val())
	assert.Zero(t, rdb.ZCard(ctx, QueueReintentos).Val())
}

func TestPool_AgotaIntentosVaADLQ(t *testing.T) {
	_, rdb := newRedis(t)
	pool := NewPool(rdb, QueueEventos, 1)
	pool.Handle(JobEventoComanda, NewEventoWorker(&fakePublisher{err: errors.New("x")}))
	ctx := context.Background()

	payload, err := json.Marshal(eventoDePrueba())
	require.NoError(t, err)
	raw, err := json.Marshal(Job{ID: "j1", Type: JobEventoComanda, Queue: QueueEventos, Payload: payload, Attempts: MaxIntentos - 1})
	require.NoError(t, err)

	pool.process(ctx, string(raw))

	n, err := DLQLength(ctx, rdb, QueueEventos)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Zero(t, rdb.ZCard(ctx, QueueReintentos).Val())

	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(rdb.LIndex(ctx, DLQPrefix+QueueEventos, 0).Val()), &entry))
	assert.Equal(t, "j1", entry.JobID)
	assert.Equal(t, MaxIntentos, entry.Attempts)
}

func TestPool_JobsInvalidosVanADLQ(t *testing.T) {
	_, rdb := newRedis(t)
	pool := NewPool(rdb, QueueEventos, 1)
	ctx := context.Background()

	pool.process(ctx, "{no es json")
	pool.process(ctx, `{"id":"x","type":"desconocido"}`)

	n, err := DLQLength(ctx, rdb, QueueEventos)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// LPUSH: the undecodable message is the older entry
	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(rdb.LIndex(ctx, DLQPrefix+QueueEventos, 1).Val()), &entry))
	assert.Equal(t, "{no es json", entry.Raw)
	assert.Empty(t, entry.Payload)
	assert.Contains(t, entry.Reason, "json invalido")

	require.NoError(t, json.Unmarshal([]byte(rdb.LIndex(ctx, DLQPrefix+QueueEventos, 0).Val()), &entry))
	assert.Equal(t, "x", entry.JobID)
	assert.Contains(t, entry.Reason, "desconocido")
}

func TestSendToDLQ_PayloadInvalidoSeGuardaComoTexto(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()

	SendToDLQ(ctx, rdb, QueueEventos, Job{ID: "j9", Type: JobEventoComanda, Payload: json.RawMessage("not json")}, "x")

	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(rdb.LIndex(ctx, DLQPrefix+QueueEventos, 0).Val()), &entry))
	assert.Equal(t, "j9", entry.JobID)
	assert.Equal(t, "not json", entry.Raw)
}

func TestPool_StartConsumeCola(t *testing.T) {
	_, rdb := newRedis(t)
	pub := &fakePublisher{}
	pool := NewPool(rdb, QueueEventos, 2)
	pool.Handle(JobEventoComanda, NewEventoWorker(pub))
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	d := NewDispatcher(rdb)
	for range 3 {
		d.Notificar(context.Background(), eventoDePrueba())
	}

	assert.Eventually(t, func() bool { return pub.publicados() == 3 }, 3*time.Second, 10*time.Millisecond)
	cancel()
	pool.Wait()
}

func TestComputeRetryBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, computeRetryBackoff(1))
	assert.Equal(t, 4*time.Second, computeRetryBackoff(2))
	assert.Equal(t, 16*time.Second, computeRetryBackoff(4))
	assert.Equal(t, maxRetryBackoff, computeRetryBackoff(20))
}

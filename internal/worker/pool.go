package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"comandas/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEventos = "jobs:eventos_comanda"

	JobEventoComanda = "evento_comanda"

	// MaxIntentos is how many times a job runs before it goes to the DLQ.
	MaxIntentos = 5

	jobTimeout = 10 * time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Queue     string          `json:"queue"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
}

// ── Dispatcher ────────────────────────────────────────────────────────────────

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// Notificar queues a comanda event for the Kafka publisher. Enqueue failures
// are logged and swallowed: they must never fail the request that caused them.
func (d *Dispatcher) Notificar(ctx context.Context, ev dto.EventoComanda) {
	if err := d.Enqueue(ctx, QueueEventos, JobEventoComanda, ev); err != nil {
		log.Error().Err(err).
			Str("tipo", ev.Tipo).
			Str("comanda_id", ev.Comanda.ID).
			Msg("dispatcher: no se pudo encolar evento")
	}
}

// Enqueue pushes a job of jobType onto queue.
func (d *Dispatcher) Enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{ID: uuid.NewString(), Type: jobType, Queue: queue, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// ── Pool ──────────────────────────────────────────────────────────────────────

// HandlerFunc processes one job. A returned error schedules a retry.
type HandlerFunc func(ctx context.Context, job Job) error

// Pool is a bounded set of goroutines consuming one queue.
type Pool struct {
	rdb      *redis.Client
	queue    string
	workers  int
	handlers map[string]HandlerFunc
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client, queue string, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		rdb:      rdb,
		queue:    queue,
		workers:  workers,
		handlers: make(map[string]HandlerFunc),
		now:      time.Now,
	}
}

// Handle registers h for jobs of jobType. Call before Start.
func (p *Pool) Handle(jobType string, h HandlerFunc) { p.handlers[jobType] = h }

// Start launches the workers. Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Str("queue", p.queue).Msgf("worker pool started with %d workers", p.workers)
}

// Wait blocks until every worker has returned after ctx was cancelled.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		// Blocking pop: waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queue).Result()
		if ctx.Err() != nil {
			log.Info().Msgf("worker %d shutting down", id)
			return
		}
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP fallo")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[1])
	}
}

func (p *Pool) process(ctx context.Context, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", p.queue).Err(err).Msg("failed to unmarshal job")
		sendRawToDLQ(ctx, p.rdb, p.queue, raw, "json invalido: "+err.Error())
		return
	}
	if job.Queue == "" {
		job.Queue = p.queue
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, p.queue, job, fmt.Sprintf("tipo de job desconocido %q", job.Type))
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	err := h(jobCtx, job)
	cancel()
	if err == nil {
		log.Debug().Str("type", job.Type).Str("job_id", job.ID).Msg("job processed")
		return
	}

	// bookkeeping must survive shutdown
	bg := context.WithoutCancel(ctx)
	job.Attempts++
	job.LastError = err.Error()
	if job.Attempts >= MaxIntentos {
		SendToDLQ(bg, p.rdb, p.queue, job, err.Error())
		return
	}
	espera := computeRetryBackoff(job.Attempts)
	if serr := scheduleRetry(bg, p.rdb, job, p.now().Add(espera)); serr != nil {
		log.Error().Err(serr).Str("job_id", job.ID).Msg("worker: no se pudo programar reintento")
		SendToDLQ(bg, p.rdb, p.queue, job, err.Error())
		return
	}
	log.Warn().
		Err(err).
		Str("type", job.Type).
		Str("job_id", job.ID).
		Int("attempts", job.Attempts).
		Dur("retry_in", espera).
		Msg("job failed, retry scheduled")
}

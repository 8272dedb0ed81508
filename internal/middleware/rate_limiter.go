package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"comandas/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Route classes. Each has its own budget per client IP.
const (
	ClaseLectura   = "lectura"
	ClaseEscritura = "escritura"
	ClaseLogin     = "login"
)

var errDemasiadas = apierror.New(apierror.KindRateLimited, "Demasiadas solicitudes. Intente nuevamente en un momento.")

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimitStore counts hits in a sliding window.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// RateLimiter applies limit hits per window for one route class.
func RateLimiter(store RateLimitStore, clase string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitar(c, store, clase, limit, window)
	}
}

// RateLimitByMethod charges GET/HEAD to the lectura budget and everything
// else to escritura.
func RateLimitByMethod(store RateLimitStore, lectura, escritura int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			limitar(c, store, ClaseLectura, lectura, window)
		default:
			limitar(c, store, ClaseEscritura, escritura, window)
		}
	}
}

func limitar(c *gin.Context, store RateLimitStore, clase string, limit int, window time.Duration) {
	if limit <= 0 {
		c.Next()
		return
	}
	key := "ratelimit:" + clase + ":" + c.ClientIP()
	d, err := store.Allow(c.Request.Context(), key, limit, window)
	if err != nil {
		// fail open: a limiter outage must not take the POS down
		log.Warn().Err(err).Str("clase", clase).Msg("rate limiter no disponible")
		c.Next()
		return
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if !d.Allowed {
		secs := int(math.Ceil(d.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		abort(c, errDemasiadas)
		return
	}
	c.Next()
}

// NewRateLimitStore returns the redis-backed store, or the per-process one
// when rdb is nil. The redis store degrades to the in-memory one on errors.
func NewRateLimitStore(ctx context.Context, rdb *redis.Client) RateLimitStore {
	mem := NewMemoryStore(ctx)
	if rdb == nil {
		return mem
	}
	return &redisStore{rdb: rdb, fallback: mem}
}

// ── Redis store ───────────────────────────────────────────────────────────────

// redisStore keeps one sorted set per key, scored by hit time in microseconds,
// so the limit holds across every instance sharing the redis.
type redisStore struct {
	rdb      *redis.Client
	fallback RateLimitStore
	now      func() time.Time
}

func (s *redisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	d, err := s.allow(ctx, key, limit, window)
	if err != nil {
		log.Warn().Err(err).Msg("redis rate limiter fallo (usando contador local)")
		return s.fallback.Allow(ctx, key, limit, window)
	}
	return d, nil
}

const maxReintentosTx = 3

func (s *redisStore) allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	for range maxReintentosTx {
		d, err := s.intentar(ctx, key, limit, window)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return d, err
	}
	return Decision{}, redis.TxFailedErr
}

// intentar counts the live hits under WATCH and records the new one only
// when it fits. A rejected request writes nothing, so retrying while blocked
// never pushes the window forward.
func (s *redisStore) intentar(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := time.Now()
	if s.now != nil {
		now = s.now()
	}
	desde := strconv.FormatInt(now.Add(-window).UnixMicro(), 10)

	var d Decision
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.ZCount(ctx, key, "("+desde, "+inf").Result()
		if err != nil {
			return err
		}
		if int(n) >= limit {
			d = Decision{Allowed: false, RetryAfter: window}
			oldest, err := tx.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
				Min: "(" + desde, Max: "+inf", Count: 1,
			}).Result()
			if err == nil && len(oldest) == 1 {
				d.RetryAfter = time.UnixMicro(int64(oldest[0].Score)).Add(window).Sub(now)
			}
			return nil
		}

		member := fmt.Sprintf("%d-%s", now.UnixMicro(), uuid.NewString())
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.ZRemRangeByScore(ctx, key, "-inf", desde)
			p.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: member})
			p.PExpire(ctx, key, window)
			return nil
		})
		if err != nil {
			return err
		}
		d = Decision{Allowed: true, Remaining: limit - int(n) - 1}
		return nil
	}, key)
	return d, err
}

// ── In-memory store ───────────────────────────────────────────────────────────

// memoryStore is the per-process sliding window.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*ventana
	now     func() time.Time
}

type ventana struct {
	hits []time.Time
}

const purgeInterval = 5 * time.Minute

// NewMemoryStore starts the purge goroutine; it stops when ctx is done.
func NewMemoryStore(ctx context.Context) RateLimitStore {
	s := newMemoryStore()
	go s.purgar(ctx)
	return s
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]*ventana), now: time.Now}
}

func (s *memoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[key]
	if !ok {
		v = &ventana{}
		s.entries[key] = v
	}
	v.recortar(now.Add(-window))

	if len(v.hits) >= limit {
		return Decision{Allowed: false, RetryAfter: v.hits[0].Add(window).Sub(now)}, nil
	}
	v.hits = append(v.hits, now)
	return Decision{Allowed: true, Remaining: limit - len(v.hits)}, nil
}

// recortar drops hits at or before corte.
func (v *ventana) recortar(corte time.Time) {
	i := 0
	for i < len(v.hits) && !v.hits[i].After(corte) {
		i++
	}
	v.hits = v.hits[i:]
}

// purgar periodically removes keys with no hit in the last purgeInterval so
// IPs that never return do not accumulate.
func (s *memoryStore) purgar(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.purgarAntesDe(s.now().Add(-purgeInterval)); n > 0 {
				log.Debug().Int("entries_purged", n).Msg("rate limiter map purged")
			}
		}
	}
}

func (s *memoryStore) purgarAntesDe(corte time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for key, v := range s.entries {
		if len(v.hits) == 0 || !v.hits[len(v.hits)-1].After(corte) {
			delete(s.entries, key)
			purged++
		}
	}
	return purged
}

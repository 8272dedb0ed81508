package worker

// Failed jobs wait in a sorted set scored by their next attempt time. A
// background goroutine moves due jobs back onto their queue.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReintentos = "jobs:reintentos"

	retryTickInterval = 5 * time.Second
	retryBatchSize    = 50
	maxRetryBackoff   = 5 * time.Minute
)

// computeRetryBackoff is 2s, 4s, 8s ... capped at maxRetryBackoff.
func computeRetryBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	if attempts > 8 {
		return maxRetryBackoff
	}
	d := time.Duration(1<<uint(attempts)) * time.Second
	if d > maxRetryBackoff {
		return maxRetryBackoff
	}
	return d
}

func scheduleRetry(ctx context.Context, rdb *redis.Client, job Job, at time.Time) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.ZAdd(ctx, QueueReintentos, redis.Z{Score: float64(at.UnixMilli()), Member: data}).Err()
}

// StartRetryCron launches a background goroutine that ticks every
// retryTickInterval and requeues due jobs. It respects the context for
// graceful shutdown.
func StartRetryCron(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				if n, err := requeueDue(ctx, rdb, time.Now()); err != nil {
					log.Error().Err(err).Msg("retry_cron: failed to requeue jobs")
				} else if n > 0 {
					log.Info().Int("count", n).Msg("retry_cron: jobs requeued")
				}
			}
		}
	}()
}

// requeueDue moves jobs whose retry time is at or before now back to their
// queue. ZREM decides ownership so several instances never double-push.
func requeueDue(ctx context.Context, rdb *redis.Client, now time.Time) (int, error) {
	miembros, err := rdb.ZRangeByScore(ctx, QueueReintentos, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, m := range miembros {
		removed, err := rdb.ZRem(ctx, QueueReintentos, m).Result()
		if err != nil {
			return moved, err
		}
		if removed == 0 {
			continue
		}
		var job Job
		queue := QueueEventos
		if err := json.Unmarshal([]byte(m), &job); err == nil && job.Queue != "" {
			queue = job.Queue
		}
		if err := rdb.LPush(ctx, queue, m).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

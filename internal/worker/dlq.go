package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQPrefix namespaces the dead-letter list of each queue: dlq:<queue>.
const DLQPrefix = "dlq:"

// DLQEntry is what lands in the dead-letter list. Payload holds the job
// payload when the job decoded; Raw holds the undecodable message otherwise.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobID         string          `json:"job_id,omitempty"`
	JobType       string          `json:"job_type,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Raw           string          `json:"raw,omitempty"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ dead-letters a decoded job that can no longer be retried.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobID:         job.ID,
		JobType:       job.Type,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      job.Attempts,
	}
	if json.Valid(job.Payload) {
		entry.Payload = job.Payload
	} else if len(job.Payload) > 0 {
		entry.Raw = string(job.Payload)
	}
	pushDLQ(ctx, rdb, entry)
}

// sendRawToDLQ dead-letters a queue message that is not a Job at all.
func sendRawToDLQ(ctx context.Context, rdb *redis.Client, queue, raw, reason string) {
	pushDLQ(ctx, rdb, DLQEntry{
		OriginalQueue: queue,
		Raw:           raw,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
	})
}

func pushDLQ(ctx context.Context, rdb *redis.Client, entry DLQEntry) {
	key := DLQPrefix + entry.OriginalQueue
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("dlq", key).Msg("dlq: no se pudo serializar la entrada")
		return
	}
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq", key).Str("job_id", entry.JobID).Msg("dlq: LPUSH fallo")
		return
	}
	log.Warn().
		Str("dlq", key).
		Str("job_type", entry.JobType).
		Str("job_id", entry.JobID).
		Str("reason", entry.Reason).
		Int("attempts", entry.Attempts).
		Msg("dlq: job descartado")
}

// DLQLength reports how many entries wait in the dead-letter list of queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

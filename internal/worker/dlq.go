package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Jobs that run out of attempts are parked under dlq:<queue> until someone
// replays or discards them by hand.
const DLQPrefix = "dlq:"

// DeadJob is a parked job. Raw holds the undecodable message when the job
// envelope itself was malformed.
type DeadJob struct {
	Queue    string    `json:"queue"`
	Job      Job       `json:"job"`
	Raw      string    `json:"raw,omitempty"`
	Reason   string    `json:"reason"`
	ParkedAt time.Time `json:"parked_at"`
}

func (p *Pool) park(ctx context.Context, dead DeadJob) {
	dead.ParkedAt = time.Now().UTC()
	data, err := json.Marshal(dead)
	if err != nil {
		log.Error().Err(err).Str("queue", dead.Queue).Msg("dlq: marshal dead job")
		return
	}
	key := DLQPrefix + dead.Queue
	if err := p.rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push dead job")
		return
	}
	log.Warn().
		Str("queue", dead.Queue).
		Str("job_type", dead.Job.Type).
		Int("attempts", dead.Job.Attempts).
		Str("reason", dead.Reason).
		Msg("dlq: job parked")
}

// DeadJobs returns up to limit parked jobs for queue, newest first.
func DeadJobs(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]DeadJob, error) {
	raws, err := rdb.LRange(ctx, DLQPrefix+queue, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("dlq: read %s: %w", queue, err)
	}
	out := make([]DeadJob, 0, len(raws))
	for _, raw := range raws {
		var dead DeadJob
		if err := json.Unmarshal([]byte(raw), &dead); err != nil {
			return nil, fmt.Errorf("dlq: decode %s entry: %w", queue, err)
		}
		out = append(out, dead)
	}
	return out, nil
}

// DLQLength reports how many jobs are parked for queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

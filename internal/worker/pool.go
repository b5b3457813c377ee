package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAudit = "jobs:audit"
	QueueEmail = "jobs:email"

	JobAudit = "audit"
	JobEmail = "email"

	// MaxJobAttempts is how often a job runs before it goes to the DLQ.
	MaxJobAttempts = 3
)

var queueForJob = map[string]string{
	JobAudit: QueueAudit,
	JobEmail: QueueEmail,
}

// ErrNoQueue is returned by the dispatcher when Redis is not configured.
var ErrNoQueue = errors.New("job queue unavailable")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAudit pushes an audit entry for asynchronous persistence.
func (d *Dispatcher) EnqueueAudit(ctx context.Context, entry model.AuditLog) error {
	return d.enqueue(ctx, JobAudit, entry)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return ErrNoQueue
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, job Job) error {
	queue, ok := queueForJob[job.Type]
	if !ok {
		return fmt.Errorf("unknown job type %q", job.Type)
	}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool runs a fixed number of goroutines consuming every registered queue.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	wg       sync.WaitGroup
}

// NewPool registers one handler per job type.
func NewPool(rdb *redis.Client, handlers map[string]Handler) *Pool {
	return &Pool{rdb: rdb, handlers: handlers}
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, so idle workers
// cost nothing. They exit when ctx is cancelled.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	queues := make([]string, 0, len(p.handlers))
	for jobType := range p.handlers {
		if q, ok := queueForJob[jobType]; ok {
			queues = append(queues, q)
		}
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i, queues)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int, queues []string) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		p.park(ctx, DeadJob{Queue: queue, Raw: raw, Reason: "malformed job: " + err.Error()})
		return
	}
	handler, ok := p.handlers[job.Type]
	if !ok {
		p.park(ctx, DeadJob{Queue: queue, Job: job, Reason: "no handler registered"})
		return
	}

	err := handler(ctx, job.Payload)
	if err == nil {
		return
	}
	job.Attempts++
	if job.Attempts >= MaxJobAttempts {
		p.park(ctx, DeadJob{Queue: queue, Job: job, Reason: fmt.Sprintf("max attempts (%d) exceeded: %v", MaxJobAttempts, err)})
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeueing")
	if pushErr := push(ctx, p.rdb, job); pushErr != nil {
		p.park(ctx, DeadJob{Queue: queue, Job: job, Reason: "requeue failed: " + pushErr.Error()})
	}
}

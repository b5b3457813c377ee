package service

import (
	"context"
	"errors"
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"
	"github.com/Zeek-James/pem-zee/internal/repository"
	"github.com/Zeek-James/pem-zee/internal/worker"

	"github.com/rs/zerolog/log"
)

const auditWriteTimeout = 3 * time.Second

// AuditQueue hands entries to the background worker pool.
type AuditQueue interface {
	EnqueueAudit(ctx context.Context, entry model.AuditLog) error
}

// AuditService records who changed what. Recording never fails the caller:
// errors are logged and dropped.
type AuditService interface {
	Record(ctx context.Context, entry model.AuditLog)
}

type auditService struct {
	repo  repository.AuditRepository
	queue AuditQueue
}

// NewAuditService queues entries when queue is non-nil and falls back to a
// direct insert otherwise or when queueing fails. A queue running without
// Redis counts as no queue and falls back silently.
func NewAuditService(repo repository.AuditRepository, queue AuditQueue) AuditService {
	return &auditService{repo: repo, queue: queue}
}

func (s *auditService) Record(ctx context.Context, entry model.AuditLog) {
	// The request may already be finished; keep its values but not its deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if s.queue != nil {
		err := s.queue.EnqueueAudit(ctx, entry)
		switch {
		case err == nil:
			return
		case !errors.Is(err, worker.ErrNoQueue):
			log.Warn().Err(err).Str("resource", entry.Resource).Msg("audit: enqueue failed, writing directly")
		}
	}
	if s.repo == nil {
		return
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		log.Error().Err(err).
			Str("resource", entry.Resource).
			Str("action", entry.Action).
			Msg("audit: failed to record entry")
	}
}

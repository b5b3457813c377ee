package worker

import (
	"context"
	"encoding/json"

	"github.com/Zeek-James/pem-zee/internal/model"
	"github.com/Zeek-James/pem-zee/internal/repository"

	"github.com/rs/zerolog/log"
)

// AuditWorker persists audit entries queued by the request middleware.
type AuditWorker struct {
	repo repository.AuditRepository
}

func NewAuditWorker(repo repository.AuditRepository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

func (w *AuditWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var entry model.AuditLog
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Error().Err(err).Msg("audit_worker: invalid payload")
		return nil
	}
	entry.ID = 0
	return w.repo.Create(ctx, &entry)
}

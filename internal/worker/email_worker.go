package worker

// email_worker.go
// Processes email jobs from QueueEmail through the SMTP circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Zeek-James/pem-zee/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
}

// Sender delivers one email. *infra.Mailer satisfies it.
type Sender interface {
	Send(to []string, subject, body string, attachments ...string) error
}

type EmailWorker struct {
	sender Sender
	relay  *infra.RelayBreaker
}

func NewEmailWorker(sender Sender, relay *infra.RelayBreaker) *EmailWorker {
	return &EmailWorker{sender: sender, relay: relay}
}

// Process sends the message. Invalid payloads are dropped without retry.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if len(payload.To) == 0 {
		log.Warn().Msg("email_worker: no recipients, skipping")
		return nil
	}

	err := w.relay.Do(func() error {
		return w.sender.Send(payload.To, payload.Subject, payload.Body, payload.Attachments...)
	})
	if err != nil {
		return fmt.Errorf("email_worker: send %q: %w", payload.Subject, err)
	}
	log.Info().Strs("to", payload.To).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}

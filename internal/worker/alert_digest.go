package worker

// alert_digest.go
// Scheduled job that mails the current alert list. A Redis lock keeps several
// server replicas from sending the same digest.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zeek-James/pem-zee/internal/dto"

	"github.com/bsm/redislock"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	alertDigestLockKey = "lock:alert-digest"
	alertDigestLockTTL = 2 * time.Minute
)

// AlertSource computes the alert list.
type AlertSource interface {
	Alerts(ctx context.Context) (*dto.AlertsResponse, error)
}

// EmailQueue accepts outgoing mail. *Dispatcher satisfies it.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type AlertDigest struct {
	alerts     AlertSource
	queue      EmailQueue
	locker     *redislock.Client
	recipients []string
	clock      func() time.Time
}

// NewAlertDigest builds the job; locker may be nil for single-instance runs.
func NewAlertDigest(alerts AlertSource, queue EmailQueue, locker *redislock.Client, recipients []string) *AlertDigest {
	return &AlertDigest{alerts: alerts, queue: queue, locker: locker, recipients: recipients, clock: time.Now}
}

// Schedule registers Run under a cron expression and starts the scheduler.
// Call Stop on the returned cron to shut it down.
func (d *AlertDigest) Schedule(ctx context.Context, schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := d.Run(ctx); err != nil {
			log.Error().Err(err).Msg("alert_digest: run failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("alert_digest: invalid schedule %q: %w", schedule, err)
	}
	c.Start()
	log.Info().Str("schedule", schedule).Strs("to", d.recipients).Msg("alert_digest: scheduled")
	return c, nil
}

// Run builds the digest and queues it for delivery. Nothing is sent when
// there are no alerts or another instance holds the lock.
func (d *AlertDigest) Run(ctx context.Context) error {
	if len(d.recipients) == 0 {
		return nil
	}
	if d.locker != nil {
		lock, err := d.locker.Obtain(ctx, alertDigestLockKey, alertDigestLockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			log.Debug().Msg("alert_digest: another instance is running, skipping")
			return nil
		}
		if err != nil {
			return fmt.Errorf("obtain lock: %w", err)
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				log.Warn().Err(err).Msg("alert_digest: release lock")
			}
		}()
	}

	resp, err := d.alerts.Alerts(ctx)
	if err != nil {
		return fmt.Errorf("compute alerts: %w", err)
	}
	if len(resp.Alerts) == 0 {
		return nil
	}
	subject, body := FormatDigest(resp.Alerts, d.clock())
	return d.queue.EnqueueEmail(ctx, EmailJobPayload{To: d.recipients, Subject: subject, Body: body})
}

// FormatDigest renders alerts as a plain-text email grouped by severity label.
func FormatDigest(alerts []dto.AlertResponse, at time.Time) (string, string) {
	subject := fmt.Sprintf("Palm oil ledger: %d alert(s) on %s", len(alerts), at.Format("2006-01-02"))

	var b strings.Builder
	fmt.Fprintf(&b, "%d alert(s) as of %s\n\n", len(alerts), at.Format("2006-01-02 15:04"))
	for _, a := range alerts {
		fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(a.Severity), a.Message)
	}
	return subject, b.String()
}

// ParseRecipients splits a comma separated address list.
func ParseRecipients(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	container, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestPool_DeliversAndDeadLetters(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var audits, emailAttempts atomic.Int32
	pool := NewPool(rdb, map[string]Handler{
		JobAudit: func(_ context.Context, raw json.RawMessage) error {
			var e model.AuditLog
			if err := json.Unmarshal(raw, &e); err != nil {
				return err
			}
			audits.Add(1)
			return nil
		},
		JobEmail: func(context.Context, json.RawMessage) error {
			emailAttempts.Add(1)
			return errors.New("relay unavailable")
		},
	})
	pool.Start(ctx, 2)

	d := NewDispatcher(rdb)
	require.NoError(t, d.EnqueueAudit(ctx, model.AuditLog{Action: "create", Resource: "sales"}))
	require.NoError(t, d.EnqueueEmail(ctx, EmailJobPayload{To: []string{"ops@example.com"}, Subject: "s"}))

	require.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueEmail)
		return err == nil && n == 1
	}, 20*time.Second, 100*time.Millisecond)

	assert.Equal(t, int32(1), audits.Load())
	assert.Equal(t, int32(MaxJobAttempts), emailAttempts.Load())

	dead, err := DeadJobs(ctx, rdb, QueueEmail, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, JobEmail, dead[0].Job.Type)
	assert.Equal(t, MaxJobAttempts, dead[0].Job.Attempts)
	assert.Contains(t, dead[0].Reason, "relay unavailable")

	var payload EmailJobPayload
	require.NoError(t, json.Unmarshal(dead[0].Job.Payload, &payload))
	assert.Equal(t, "s", payload.Subject)

	cancel()
	pool.Wait()
}

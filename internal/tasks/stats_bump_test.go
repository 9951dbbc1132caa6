package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almasmith/mercer-library/internal/realtime"
)

type fakeBumper struct {
	calls chan uint
	err   error
}

func (b *fakeBumper) Bump(_ context.Context, userID uint) (uint64, error) {
	if b.calls != nil {
		b.calls <- userID
	}
	if b.err != nil {
		return 0, b.err
	}
	return 1, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(_ uint, name string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, name)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func TestStatsBumpTaskConfig(t *testing.T) {
	cfg := StatsBumpTask{UserID: 1}.Config()

	assert.Equal(t, "stats_bump_retry", cfg.Name)
	assert.Positive(t, cfg.MaxAttempts)
	assert.Positive(t, cfg.Backoff)
	assert.NotNil(t, cfg.Retention)
}

func TestStatsBumpProcessor(t *testing.T) {
	t.Run("bumps and notifies", func(t *testing.T) {
		bumper := &fakeBumper{calls: make(chan uint, 1)}
		notifier := &recordingNotifier{}

		err := StatsBumpProcessor(bumper, notifier)(context.Background(), StatsBumpTask{UserID: 3})
		require.NoError(t, err)
		assert.Equal(t, uint(3), <-bumper.calls)
		assert.Equal(t, []string{realtime.EventStatsUpdated}, notifier.events)
	})

	t.Run("failure is returned for retry without notifying", func(t *testing.T) {
		notifier := &recordingNotifier{}
		err := StatsBumpProcessor(&fakeBumper{err: errors.New("database is locked")}, notifier)(context.Background(), StatsBumpTask{UserID: 3})

		assert.ErrorContains(t, err, "database is locked")
		assert.Zero(t, notifier.count())
	})

	t.Run("rejects tasks without a user", func(t *testing.T) {
		err := StatsBumpProcessor(&fakeBumper{}, nil)(context.Background(), StatsBumpTask{})
		assert.Error(t, err)
	})

	t.Run("nil bumper", func(t *testing.T) {
		err := StatsBumpProcessor(nil, nil)(context.Background(), StatsBumpTask{UserID: 1})
		assert.Error(t, err)
	})
}

type fakeCleaner struct {
	retention    time.Duration
	deleted      int64
	err          error
	housekeeping []string
}

func (c *fakeCleaner) DeleteOldEvents(_ context.Context, retention time.Duration) (int64, error) {
	c.retention = retention
	return c.deleted, c.err
}

func (c *fakeCleaner) LogHousekeeping(_ context.Context, action, description string, _ error) {
	c.housekeeping = append(c.housekeeping, action+": "+description)
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	t.Run("uses the task retention", func(t *testing.T) {
		cleaner := &fakeCleaner{deleted: 4}
		err := CleanupAuditEventsProcessor(cleaner)(context.Background(), CleanupAuditEventsTask{RetentionDays: 7})

		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, cleaner.retention)
		assert.Equal(t, []string{"cleanup_audit_events: Deleted 4 audit events older than 7 days"}, cleaner.housekeeping)
	})

	t.Run("defaults to thirty days", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		require.NoError(t, CleanupAuditEventsProcessor(cleaner)(context.Background(), CleanupAuditEventsTask{}))
		assert.Equal(t, 30*24*time.Hour, cleaner.retention)
	})

	t.Run("failure is recorded and returned", func(t *testing.T) {
		cleaner := &fakeCleaner{err: errors.New("disk full")}
		err := CleanupAuditEventsProcessor(cleaner)(context.Background(), CleanupAuditEventsTask{RetentionDays: 1})

		assert.ErrorContains(t, err, "disk full")
		assert.Len(t, cleaner.housekeeping, 1)
	})

	t.Run("config", func(t *testing.T) {
		cfg := CleanupAuditEventsTask{}.Config()
		assert.Equal(t, "cleanup_audit_events", cfg.Name)
		assert.Equal(t, 3, cfg.MaxAttempts)
	})
}

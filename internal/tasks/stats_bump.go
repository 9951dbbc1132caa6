package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/mikestefanello/backlite"

	"github.com/almasmith/mercer-library/internal/logging"
	"github.com/almasmith/mercer-library/internal/realtime"
)

const StatsBumpQueue = "stats_bump_retry"

// StatsBumper increments a user's stats version.
type StatsBumper interface {
	Bump(ctx context.Context, userID uint) (uint64, error)
}

// StatsBumpTask retries a stats version bump that failed after its
// mutation had already committed.
type StatsBumpTask struct {
	UserID uint `json:"user_id"`
}

var (
	statsBumpMu     sync.RWMutex
	statsBumpPolicy = DefaultConfig()
)

// setStatsBumpPolicy applies the retry settings to the stats bump queue.
// It must run before the queue is registered.
func setStatsBumpPolicy(cfg Config) {
	statsBumpMu.Lock()
	defer statsBumpMu.Unlock()
	statsBumpPolicy = cfg
}

// Config returns the queue configuration for stats bump retries.
func (t StatsBumpTask) Config() backlite.QueueConfig {
	statsBumpMu.RLock()
	policy := statsBumpPolicy
	statsBumpMu.RUnlock()

	return backlite.QueueConfig{
		Name:        StatsBumpQueue,
		MaxAttempts: policy.MaxRetries,
		Backoff:     policy.RetryDelay,
		Timeout:     policy.TaskTimeout,
		Retention: &backlite.Retention{
			Duration:   policy.RetentionDuration,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// StatsBumpProcessor bumps the version and, once it moved, tells the
// user's connections that their stats changed.
func StatsBumpProcessor(bumper StatsBumper, notifier realtime.Notifier) backlite.QueueProcessor[StatsBumpTask] {
	return func(ctx context.Context, task StatsBumpTask) error {
		if bumper == nil {
			return fmt.Errorf("stats bumper not configured")
		}
		if task.UserID == 0 {
			return fmt.Errorf("stats bump task without user")
		}

		version, err := bumper.Bump(ctx, task.UserID)
		if err != nil {
			return fmt.Errorf("stats bump for user %d: %w", task.UserID, err)
		}

		if notifier != nil {
			notifier.Notify(task.UserID, realtime.EventStatsUpdated, realtime.StatsChanged{})
		}
		logging.Logger.WithField("user_id", task.UserID).
			WithField("version", version).
			Info("Stats version bump retried")
		return nil
	}
}

// NewStatsBumpQueue creates a backlite queue for stats bump retries.
func NewStatsBumpQueue(bumper StatsBumper, notifier realtime.Notifier) backlite.Queue {
	return backlite.NewQueue(StatsBumpProcessor(bumper, notifier))
}

// Package scheduler runs periodic housekeeping on a cron schedule. Jobs are
// not executed inline: each tick enqueues a background task so retries and
// timeouts are handled by the task queue.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/almasmith/mercer-library/internal/logging"
)

// DefaultAuditCleanupSchedule runs the audit purge daily at 03:00.
const DefaultAuditCleanupSchedule = "0 3 * * *"

// AuditCleanupEnqueuer schedules an audit event purge.
type AuditCleanupEnqueuer interface {
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) (string, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule reports whether schedule is a valid five-field cron
// expression or descriptor such as "@daily".
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// HousekeepingScheduler enqueues audit cleanup on a cron schedule.
type HousekeepingScheduler struct {
	enqueuer      AuditCleanupEnqueuer
	schedule      string
	retentionDays int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewHousekeepingScheduler(enqueuer AuditCleanupEnqueuer, schedule string, retentionDays int) *HousekeepingScheduler {
	if schedule == "" {
		schedule = DefaultAuditCleanupSchedule
	}
	return &HousekeepingScheduler{
		enqueuer:      enqueuer,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(parser)),
	}
}

// Start registers the job and starts the cron runner. Cancelling ctx stops
// the scheduler.
func (s *HousekeepingScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.enqueue)
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	logging.Logger.WithField("schedule", s.schedule).
		WithField("next_run", s.cron.Entry(entryID).Schedule.Next(time.Now())).
		Info("Housekeeping scheduler started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *HousekeepingScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	logging.Logger.Info("Housekeeping scheduler stopped")
}

// RunNow enqueues a cleanup outside the schedule.
func (s *HousekeepingScheduler) RunNow() {
	s.enqueue()
}

func (s *HousekeepingScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next cleanup will be enqueued, or nil when the
// scheduler is stopped.
func (s *HousekeepingScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Schedule.Next(time.Now())
	return &next
}

func (s *HousekeepingScheduler) enqueue() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := s.enqueuer.EnqueueAuditCleanup(ctx, s.retentionDays)
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to enqueue audit cleanup")
		return
	}
	logging.Logger.WithField("task_id", id).Info("Audit cleanup enqueued")
}

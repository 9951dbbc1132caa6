package audit

import (
	"context"
	"sync"
	"time"

	"github.com/almasmith/mercer-library/internal/database/audit"
	"github.com/almasmith/mercer-library/internal/entities"
	"github.com/almasmith/mercer-library/internal/logging"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	if event.CorrelationID == "" {
		event.CorrelationID = logging.CorrelationID(ctx)
	}
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking). The
// write outlives the request that triggered it.
func (s *Service) LogAsync(ctx context.Context, event *entities.AuditEvent) {
	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.Log(ctx, event); err != nil {
			logging.WithContext(ctx).WithError(err).
				WithField("action", event.Action).
				Warn("Failed to log audit event")
		}
	}()
}

// Wait blocks until every LogAsync write has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(ctx context.Context, userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(ctx, event)
}

// LogBookDelete records a book deletion.
func (s *Service) LogBookDelete(ctx context.Context, userID uint, bookID, title string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBook,
		Action:      "book_delete",
		Description: truncate("Deleted book: "+title, 500),
		EntityType:  "book",
		EntityID:    bookID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(ctx, event)
}

// LogHousekeeping records the outcome of a background maintenance job.
func (s *Service) LogHousekeeping(ctx context.Context, action, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventHousekeeping,
		Action:      action,
		Description: truncate(description, 500),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(ctx, event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// Package library implements the personal library operations: owner-scoped
// books with conditional reads and writes, favorites, read events and the
// statistics built on them.
//
// Every mutation that feeds the statistics follows the same order:
// ownership check, precondition check, guarded write with a fresh
// concurrency token, stats version bump, realtime notification. The bump
// and the notification are best-effort once the write has committed.
package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/almasmith/mercer-library/internal/database"
	"github.com/almasmith/mercer-library/internal/database/books"
	"github.com/almasmith/mercer-library/internal/entities"
	"github.com/almasmith/mercer-library/internal/etag"
	"github.com/almasmith/mercer-library/internal/logging"
	"github.com/almasmith/mercer-library/internal/realtime"
)

// Deps wires a Service. Notifier, Retrier and Audit are optional; nil ones
// are replaced by null implementations.
type Deps struct {
	Books     BookStore
	Favorites FavoriteStore
	Reads     ReadStore
	Stats     StatsVersionStore
	Notifier  realtime.Notifier
	Retrier   StatsBumpRetrier
	Audit     AuditLogger
}

type Service struct {
	books     BookStore
	favorites FavoriteStore
	reads     ReadStore
	stats     StatsVersionStore
	notifier  realtime.Notifier
	retrier   StatsBumpRetrier
	audit     AuditLogger

	now   func() time.Time
	newID func() string
}

func NewService(d Deps) *Service {
	s := &Service{
		books:     d.Books,
		favorites: d.Favorites,
		reads:     d.Reads,
		stats:     d.Stats,
		notifier:  d.Notifier,
		retrier:   d.Retrier,
		audit:     d.Audit,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	if s.notifier == nil {
		s.notifier = realtime.NopNotifier{}
	}
	if s.retrier == nil {
		s.retrier = noRetrier{}
	}
	if s.audit == nil {
		s.audit = noAudit{}
	}
	return s
}

// GetBook returns the owner's book and its current tag. found is false for
// missing books and books owned by someone else.
func (s *Service) GetBook(ctx context.Context, userID uint, id string) (book VersionedBook, found bool, err error) {
	b, err := s.books.GetForOwner(ctx, id, userID)
	if errors.Is(err, books.ErrNotFound) {
		return VersionedBook{}, false, nil
	}
	if err != nil {
		return VersionedBook{}, false, fmt.Errorf("failed to load book: %w", err)
	}
	return VersionedBook{Book: b, ETag: etag.Encode(b.RowVersion)}, true, nil
}

func (s *Service) ListBooks(ctx context.Context, userID uint, q ListQuery) (Page, error) {
	params := q.params()
	items, total, err := s.books.List(ctx, userID, params)
	if err != nil {
		return Page{}, fmt.Errorf("failed to list books: %w", err)
	}
	return newPage(items, params, total), nil
}

// CreateBook stores a validated, normalized input as a new book.
func (s *Service) CreateBook(ctx context.Context, userID uint, in BookInput) (VersionedBook, error) {
	if err := ctx.Err(); err != nil {
		return VersionedBook{}, err
	}

	now := s.now()
	book := &entities.Book{
		ID:            s.newID(),
		OwnerUserID:   userID,
		Title:         in.Title,
		Author:        in.Author,
		Genre:         in.Genre,
		PublishedDate: in.PublishedDate,
		Rating:        in.Rating,
		CreatedAt:     now,
		UpdatedAt:     now,
		RowVersion:    database.NewConcurrencyToken(),
	}
	if err := s.books.Create(ctx, book); err != nil {
		return VersionedBook{}, fmt.Errorf("failed to create book: %w", err)
	}

	s.afterMutation(ctx, userID, realtime.EventBookCreated, book)
	return VersionedBook{Book: book, ETag: etag.Encode(book.RowVersion)}, nil
}

// UpdateBook replaces the editable fields of a book. With an If-Match
// header the write only happens while the header matches the book's
// current tag; without one the write is unconditional.
func (s *Service) UpdateBook(ctx context.Context, userID uint, id string, in BookInput, ifMatch []string) (UpdateResult, error) {
	current, err := s.books.GetForOwner(ctx, id, userID)
	if errors.Is(err, books.ErrNotFound) {
		return UpdateResult{Outcome: UpdateNotFound}, nil
	}
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to load book: %w", err)
	}

	currentTag := etag.Encode(current.RowVersion)
	var expected []byte
	if HasPrecondition(ifMatch) {
		if !etag.MatchesIfMatch(ifMatch, currentTag) {
			return UpdateResult{Outcome: UpdatePreconditionFailed, ETag: currentTag}, nil
		}
		expected = current.RowVersion
	}

	if err := ctx.Err(); err != nil {
		return UpdateResult{}, err
	}

	next, ok, err := s.books.Update(ctx, id, userID, expected, in.fields())
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to update book: %w", err)
	}
	if !ok {
		return s.lostUpdate(ctx, userID, id, expected != nil)
	}

	updated := *current
	updated.Title = in.Title
	updated.Author = in.Author
	updated.Genre = in.Genre
	updated.PublishedDate = in.PublishedDate
	updated.Rating = in.Rating
	updated.UpdatedAt = s.now()
	updated.RowVersion = next

	s.afterMutation(ctx, userID, realtime.EventBookUpdated, &updated)
	return UpdateResult{Outcome: UpdateApplied, Book: &updated, ETag: etag.Encode(next)}, nil
}

// lostUpdate explains a write that matched no row: either the book vanished
// or, for a guarded write, another writer replaced the token first.
func (s *Service) lostUpdate(ctx context.Context, userID uint, id string, guarded bool) (UpdateResult, error) {
	latest, err := s.books.GetForOwner(ctx, id, userID)
	if errors.Is(err, books.ErrNotFound) {
		return UpdateResult{Outcome: UpdateNotFound}, nil
	}
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to reload book: %w", err)
	}
	if !guarded {
		return UpdateResult{}, fmt.Errorf("update of book %s matched no row", id)
	}
	return UpdateResult{Outcome: UpdatePreconditionFailed, ETag: etag.Encode(latest.RowVersion)}, nil
}

// DeleteBook removes the book with its favorites and reads.
func (s *Service) DeleteBook(ctx context.Context, userID uint, id string) (found bool, err error) {
	current, err := s.books.GetForOwner(ctx, id, userID)
	if errors.Is(err, books.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load book: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	deleted, err := s.books.Delete(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete book: %w", err)
	}
	if !deleted {
		return false, nil
	}

	s.audit.LogBookDelete(ctx, userID, id, current.Title)
	s.afterMutation(ctx, userID, realtime.EventBookDeleted, realtime.BookRef{ID: id})
	return true, nil
}

// afterMutation bumps the owner's stats version and notifies their
// connections. It runs detached from the request's cancellation and never
// fails the caller.
func (s *Service) afterMutation(ctx context.Context, userID uint, event string, payload any) {
	ctx = context.WithoutCancel(ctx)

	if _, err := s.stats.Bump(ctx, userID); err != nil {
		log := logging.WithContext(ctx).WithError(err).WithField("user_id", userID)
		log.Warn("Stats version bump failed after commit")
		if err := s.retrier.EnqueueStatsBump(ctx, userID); err != nil {
			log.WithField("retry_error", err.Error()).Error("Failed to schedule stats version bump retry")
		}
	}

	s.notifier.Notify(userID, event, payload)
	s.notifier.Notify(userID, realtime.EventStatsUpdated, realtime.StatsChanged{})
}

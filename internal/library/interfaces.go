package library

import (
	"context"
	"errors"
	"time"

	"github.com/almasmith/mercer-library/internal/database/books"
	"github.com/almasmith/mercer-library/internal/database/reads"
	"github.com/almasmith/mercer-library/internal/entities"
)

// BookStore is the owner-scoped book storage the service works against.
type BookStore interface {
	Create(ctx context.Context, book *entities.Book) error
	GetForOwner(ctx context.Context, id string, ownerID uint) (*entities.Book, error)
	Exists(ctx context.Context, id string, ownerID uint) (bool, error)
	List(ctx context.Context, ownerID uint, params books.ListParams) ([]entities.Book, int64, error)
	Update(ctx context.Context, id string, ownerID uint, expected []byte, fields books.Fields) ([]byte, bool, error)
	Delete(ctx context.Context, id string, ownerID uint) (bool, error)
	Genres(ctx context.Context, ownerID uint) ([]string, error)
}

type FavoriteStore interface {
	Add(ctx context.Context, userID uint, bookID string) error
	Remove(ctx context.Context, userID uint, bookID string) error
	ListBooks(ctx context.Context, userID uint, params books.ListParams) ([]entities.Book, int64, error)
}

type ReadStore interface {
	Record(ctx context.Context, read *entities.BookRead) error
	ListWithBooks(ctx context.Context, userID uint, from, to *time.Time) ([]reads.ReadWithBook, error)
}

// StatsVersionStore is the per-user stats counter.
type StatsVersionStore interface {
	GetVersion(ctx context.Context, userID uint) (uint64, error)
	Bump(ctx context.Context, userID uint) (uint64, error)
}

// StatsBumpRetrier schedules a bump that failed inline for a later attempt.
type StatsBumpRetrier interface {
	EnqueueStatsBump(ctx context.Context, userID uint) error
}

// AuditLogger records user-visible destructive actions.
type AuditLogger interface {
	LogBookDelete(ctx context.Context, userID uint, bookID, title string)
}

// ErrNoRetrier is reported when a failed bump cannot be scheduled because
// no background queue is configured.
var ErrNoRetrier = errors.New("stats bump retry not configured")

type noRetrier struct{}

func (noRetrier) EnqueueStatsBump(context.Context, uint) error { return ErrNoRetrier }

type noAudit struct{}

func (noAudit) LogBookDelete(context.Context, uint, string, string) {}

package http

import (
	"context"
	"time"

	"github.com/almasmith/mercer-library/internal/auth"
	"github.com/almasmith/mercer-library/internal/library"
)

// LibraryService is the library surface used by the book, favorite and
// analytics controllers.
type LibraryService interface {
	GetBook(ctx context.Context, userID uint, id string) (library.VersionedBook, bool, error)
	ListBooks(ctx context.Context, userID uint, q library.ListQuery) (library.Page, error)
	CreateBook(ctx context.Context, userID uint, in library.BookInput) (library.VersionedBook, error)
	UpdateBook(ctx context.Context, userID uint, id string, in library.BookInput, ifMatch []string) (library.UpdateResult, error)
	DeleteBook(ctx context.Context, userID uint, id string) (bool, error)

	StatsETag(ctx context.Context, userID uint) (string, error)
	GenreStats(ctx context.Context, userID uint) (library.GenreStats, error)

	Favorite(ctx context.Context, userID uint, bookID string) (bool, error)
	Unfavorite(ctx context.Context, userID uint, bookID string) (bool, error)
	ListFavorites(ctx context.Context, userID uint, q library.ListQuery) (library.Page, error)

	RecordRead(ctx context.Context, userID uint, bookID string) (bool, error)
	AverageRatingByMonth(ctx context.Context, userID uint, from, to *time.Time) ([]library.MonthlyAverage, error)
	MostReadGenres(ctx context.Context, userID uint, from, to *time.Time) ([]library.GenreReads, error)
}

// AuthService is the account surface used by the auth controller.
type AuthService interface {
	Register(ctx context.Context, creds auth.Credentials, client auth.Client) (*auth.Token, error)
	Login(ctx context.Context, creds auth.Credentials, client auth.Client) (*auth.Token, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Package reads stores "book read" events and serves the analytics queries.
//
// # Usage
//
//	repo := reads.NewRepository(db)
//	rows, err := repo.ListWithBooks(ctx, userID, from, to)
package reads

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/almasmith/mercer-library/internal/entities"
)

// ReadWithBook is a read event joined with the book fields analytics needs.
type ReadWithBook struct {
	BookID     string
	OccurredAt time.Time
	Genre      string
	Rating     int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Record(ctx context.Context, read *entities.BookRead) error {
	return r.db.WithContext(ctx).Create(read).Error
}

// ListWithBooks returns the user's read events inside the optional
// [from, to] window, oldest first. Reads of books the user no longer owns
// are left out.
func (r *Repository) ListWithBooks(ctx context.Context, userID uint, from, to *time.Time) ([]ReadWithBook, error) {
	query := r.db.WithContext(ctx).
		Table("book_reads").
		Select("book_reads.book_id, book_reads.occurred_at, books.genre, books.rating").
		Joins("JOIN books ON books.id = book_reads.book_id AND books.owner_user_id = book_reads.user_id").
		Where("book_reads.user_id = ?", userID)
	if from != nil {
		query = query.Where("book_reads.occurred_at >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("book_reads.occurred_at <= ?", to.UTC())
	}

	var rows []ReadWithBook
	err := query.Order("book_reads.occurred_at ASC").Order("book_reads.id ASC").Scan(&rows).Error
	return rows, err
}

// CountForBook returns how many times the user recorded reading the book.
func (r *Repository) CountForBook(ctx context.Context, userID uint, bookID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.BookRead{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count, err
}

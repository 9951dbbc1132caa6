// Package favourites provides database operations for favorite flags.
//
// A favorite is a (user, book) pair. Setting and clearing it are both
// idempotent; ownership is checked by the caller before either.
//
// # Usage
//
//	repo := favourites.NewRepository(db)
//	books, total, err := repo.ListBooks(ctx, userID, params)
package favourites

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/almasmith/mercer-library/internal/database/books"
	"github.com/almasmith/mercer-library/internal/entities"
)

// Repository handles all favourites database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new favourites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add marks a book as a favorite. Adding twice is a no-op.
func (r *Repository) Add(ctx context.Context, userID uint, bookID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.Favorite{UserID: userID, BookID: bookID}).Error
}

// Remove clears the favorite flag. Removing a missing favorite is a no-op.
func (r *Repository) Remove(ctx context.Context, userID uint, bookID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.Favorite{}).Error
}

// IsFavorite reports whether the user has favorited the book.
func (r *Repository) IsFavorite(ctx context.Context, userID uint, bookID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Favorite{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// ListBooks returns one page of the user's favorited books, filtered and
// sorted the same way as the plain book listing.
func (r *Repository) ListBooks(ctx context.Context, userID uint, params books.ListParams) ([]entities.Book, int64, error) {
	favorited := func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN favorites ON favorites.book_id = books.id AND favorites.user_id = ?", userID).
			Where("books.owner_user_id = ?", userID)
	}

	var total int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Scopes(favorited, books.Filter(params)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var result []entities.Book
	err = r.db.WithContext(ctx).Model(&entities.Book{}).
		Scopes(favorited, books.Filter(params), books.Sort(params), books.Paginate(params)).
		Find(&result).Error
	return result, total, err
}

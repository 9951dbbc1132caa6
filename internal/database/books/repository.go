// Package books provides owner-scoped database operations for books.
//
// Every read and write takes the owner's user id; a book belonging to
// someone else behaves exactly like a missing one.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetForOwner(ctx, id, userID)
package books

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/almasmith/mercer-library/internal/database"
	"github.com/almasmith/mercer-library/internal/entities"
)

// ErrNotFound is returned when the book is absent or owned by another user.
var ErrNotFound = errors.New("book not found")

// Fields are the user-editable columns of a book.
type Fields struct {
	Title         string
	Author        string
	Genre         string
	PublishedDate time.Time
	Rating        int
}

func (f Fields) columns() map[string]any {
	return map[string]any{
		"title":          f.Title,
		"author":         f.Author,
		"genre":          f.Genre,
		"published_date": f.PublishedDate,
		"rating":         f.Rating,
		"updated_at":     time.Now().UTC(),
	}
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a book. The caller sets ID, OwnerUserID and RowVersion.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetForOwner retrieves a book by id if it belongs to ownerID.
func (r *Repository) GetForOwner(ctx context.Context, id string, ownerID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_user_id = ?", id, ownerID).
		Take(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Exists reports whether ownerID owns a book with the given id.
func (r *Repository) Exists(ctx context.Context, id string, ownerID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ? AND owner_user_id = ?", id, ownerID).
		Count(&count).Error
	return count > 0, err
}

// List returns one page of the owner's books and the total match count.
func (r *Repository) List(ctx context.Context, ownerID uint, params ListParams) ([]entities.Book, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("books.owner_user_id = ?", ownerID).
		Scopes(Filter(params))
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []entities.Book
	err := r.db.WithContext(ctx).
		Where("books.owner_user_id = ?", ownerID).
		Scopes(Filter(params), Sort(params), Paginate(params)).
		Find(&books).Error
	return books, total, err
}

// Update writes fields and a fresh concurrency token. When expected is
// non-nil the write only happens if the stored token still equals it; a
// nil expected token overwrites unconditionally. ok is false when the
// guard failed or the book is gone.
func (r *Repository) Update(ctx context.Context, id string, ownerID uint, expected []byte, fields Fields) (next []byte, ok bool, err error) {
	next = database.NewConcurrencyToken()
	key := map[string]any{"id": id, "owner_user_id": ownerID}

	if expected != nil {
		ok, err = database.CompareAndSwap(ctx, r.db, &entities.Book{}, key, expected, next, fields.columns())
		if err != nil || !ok {
			return nil, false, err
		}
		return next, true, nil
	}

	updates := fields.columns()
	updates[database.RowVersionColumn] = next
	result := r.db.WithContext(ctx).Model(&entities.Book{}).Where(key).Updates(updates)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}
	return next, true, nil
}

// Delete removes the book together with its favorites and read events.
// It reports false when the owner has no such book.
func (r *Repository) Delete(ctx context.Context, id string, ownerID uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND owner_user_id = ?", id, ownerID).Delete(&entities.Book{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true
		if err := tx.Where("book_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Where("book_id = ?", id).Delete(&entities.BookRead{}).Error
	})
	return deleted, err
}

// Genres returns the raw genre value of every book the owner has.
func (r *Repository) Genres(ctx context.Context, ownerID uint) ([]string, error) {
	var genres []string
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("owner_user_id = ?", ownerID).
		Order("id").
		Pluck("genre", &genres).Error
	return genres, err
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RowVersionColumn is the column every optimistically versioned table
// keeps its concurrency token in.
const RowVersionColumn = "row_version"

// NewConcurrencyToken returns 16 random bytes. Tokens are opaque and
// collision resistant; they carry no ordering.
func NewConcurrencyToken() []byte {
	id := uuid.New()
	token := make([]byte, len(id))
	copy(token, id[:])
	return token
}

// CompareAndSwap applies updates to the row matched by key only if its
// row_version still equals expected, and installs next as the new token
// in the same statement. It reports whether the swap happened; a false
// result with a nil error means another writer got there first or the
// row no longer exists.
func CompareAndSwap(ctx context.Context, db *gorm.DB, model any, key map[string]any, expected, next []byte, updates map[string]any) (bool, error) {
	assignments := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		assignments[k] = v
	}
	assignments[RowVersionColumn] = next

	result := db.WithContext(ctx).
		Model(model).
		Where(key).
		Where(RowVersionColumn+" = ?", expected).
		Updates(assignments)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

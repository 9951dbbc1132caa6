// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(ctx, "reader@example.com")
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/almasmith/mercer-library/internal/entities"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NormalizeEmail lower-cases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a new user. It returns ErrEmailTaken when the address is
// already registered.
func (r *Repository) Create(ctx context.Context, email, passwordHash string) (*entities.User, error) {
	user := &entities.User{
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(user)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrEmailTaken
	}
	return user, nil
}

// GetByEmail retrieves a user by (normalized) email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RecordLoginFailure bumps the consecutive failure count. Once it reaches
// maxAttempts the account is locked until lockedUntil and the count starts over.
func (r *Repository) RecordLoginFailure(ctx context.Context, id uint, maxAttempts int, lockedUntil time.Time) (locked bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		updates := map[string]any{"failed_login_count": user.FailedLoginCount + 1}
		if user.FailedLoginCount+1 >= maxAttempts {
			updates["failed_login_count"] = 0
			updates["locked_until"] = lockedUntil.UTC()
			locked = true
		}
		return tx.Model(&entities.User{}).Where("id = ?", id).Updates(updates).Error
	})
	return locked, err
}

// RecordLoginSuccess clears failures and any expired lock.
func (r *Repository) RecordLoginSuccess(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
		"failed_login_count": 0,
		"locked_until":       nil,
		"last_login_at":      at.UTC(),
	}).Error
}

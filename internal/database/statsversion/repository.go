// Package statsversion keeps the per-user stats version counter.
//
// Every mutation that feeds the aggregate views (book create, update and
// delete, favorite changes, read events) bumps the owner's counter. Clients
// compare the counter, exposed as an ETag, before refetching statistics.
//
// # Usage
//
//	repo := statsversion.NewRepository(db)
//	version, err := repo.Bump(ctx, userID)
package statsversion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/almasmith/mercer-library/internal/database"
	"github.com/almasmith/mercer-library/internal/entities"
)

// MaxOptimisticAttempts bounds the compare-and-swap loop before Bump falls
// back to a transactional increment.
const MaxOptimisticAttempts = 3

var (
	// ErrTransientStore wraps store failures that were not caused by write contention.
	ErrTransientStore = errors.New("stats version store unavailable")
	// ErrConcurrencyExhausted means both the optimistic path and the
	// transactional fallback failed. The counter was left untouched.
	ErrConcurrencyExhausted = errors.New("stats version bump exhausted")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetVersion returns the user's counter, or 0 when it was never bumped.
func (r *Repository) GetVersion(ctx context.Context, userID uint) (uint64, error) {
	var row entities.StatsVersion
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransientStore, err)
	}
	return row.Version, nil
}

// Bump increments the user's counter by exactly one and returns the new
// value. The first bump creates the row at version 1.
func (r *Repository) Bump(ctx context.Context, userID uint) (uint64, error) {
	var lastErr error
	conflicted := false

	for attempt := 0; attempt < MaxOptimisticAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrTransientStore, err)
		}
		version, ok, err := r.tryBump(ctx, userID)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return version, nil
		}
		conflicted = true
	}

	version, err := r.incrementInTransaction(ctx, userID)
	if err == nil {
		return version, nil
	}
	if !conflicted && lastErr != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransientStore, errors.Join(lastErr, err))
	}
	return 0, fmt.Errorf("%w: %w", ErrConcurrencyExhausted, err)
}

// tryBump makes one optimistic attempt. ok is false when another writer
// changed the row between the read and the guarded write.
func (r *Repository) tryBump(ctx context.Context, userID uint) (version uint64, ok bool, err error) {
	var current entities.StatsVersion
	err = r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := entities.StatsVersion{
			UserID:     userID,
			Version:    1,
			RowVersion: database.NewConcurrencyToken(),
		}
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&row)
		if result.Error != nil {
			return 0, false, result.Error
		}
		return 1, result.RowsAffected == 1, nil
	}
	if err != nil {
		return 0, false, err
	}

	next := current.Version + 1
	ok, err = database.CompareAndSwap(ctx, r.db, &entities.StatsVersion{},
		map[string]any{"user_id": userID},
		current.RowVersion, database.NewConcurrencyToken(),
		map[string]any{"version": next, "updated_at": time.Now().UTC()})
	if err != nil {
		return 0, false, err
	}
	return next, ok, nil
}

// incrementInTransaction serializes the increment through a single upsert
// and reads the committed value back inside the same transaction.
func (r *Repository) incrementInTransaction(ctx context.Context, userID uint) (uint64, error) {
	var committed entities.StatsVersion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		token := database.NewConcurrencyToken()
		row := entities.StatsVersion{
			UserID:     userID,
			Version:    1,
			UpdatedAt:  now,
			RowVersion: token,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"version":                 gorm.Expr(entities.StatsVersion{}.TableName() + ".version + 1"),
				database.RowVersionColumn: token,
				"updated_at":              now,
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Take(&committed).Error
	})
	if err != nil {
		return 0, err
	}
	return committed.Version, nil
}

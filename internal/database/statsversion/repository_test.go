package statsversion

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/almasmith/mercer-library/internal/database"
	"github.com/almasmith/mercer-library/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_statsversion_" + t.Name() + ".db"

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	repo := NewRepository(db.DB)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}

	return db.DB, repo, cleanup
}

func TestGetVersion_NoRowIsZero(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	version, err := repo.GetVersion(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), version)
}

func TestBump_CreatesRowLazily(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	var count int64
	require.NoError(t, db.Model(&entities.StatsVersion{}).Count(&count).Error)
	assert.Zero(t, count)

	version, err := repo.Bump(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)

	var row entities.StatsVersion
	require.NoError(t, db.First(&row, "user_id = ?", 7).Error)
	assert.Equal(t, uint64(1), row.Version)
	assert.Len(t, row.RowVersion, 16)

	stored, err := repo.GetVersion(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored)
}

func TestBump_IncrementsByOneAndRotatesToken(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.Bump(ctx, 1)
	require.NoError(t, err)
	var before entities.StatsVersion
	require.NoError(t, db.First(&before, "user_id = ?", 1).Error)

	version, err := repo.Bump(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)

	var after entities.StatsVersion
	require.NoError(t, db.First(&after, "user_id = ?", 1).Error)
	assert.Equal(t, uint64(2), after.Version)
	assert.NotEqual(t, before.RowVersion, after.RowVersion)
}

func TestBump_UsersAreIndependent(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Bump(ctx, 1)
		require.NoError(t, err)
	}
	_, err := repo.Bump(ctx, 2)
	require.NoError(t, err)

	v1, err := repo.GetVersion(ctx, 1)
	require.NoError(t, err)
	v2, err := repo.GetVersion(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v1)
	assert.Equal(t, uint64(1), v2)
}

func TestBump_ConcurrentCallersNeverLoseIncrements(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.Bump(ctx, 5)
	require.NoError(t, err)
	start, err := repo.GetVersion(ctx, 5)
	require.NoError(t, err)

	const callers = 50
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	results := make(chan uint64, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.Bump(ctx, 5)
			if err != nil {
				errs <- err
				return
			}
			results <- v
		}()
	}
	wg.Wait()
	close(errs)
	close(results)

	for err := range errs {
		t.Fatalf("bump failed: %v", err)
	}

	seen := make(map[uint64]bool)
	for v := range results {
		assert.False(t, seen[v], "version %d returned twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, callers)

	end, err := repo.GetVersion(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, start+callers, end)
}

func TestBump_ConcurrentFirstBumps(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	const callers = 10
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Bump(ctx, 9)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	version, err := repo.GetVersion(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(callers), version)
}

func TestIncrementInTransaction(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	version, err := repo.incrementInTransaction(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)

	version, err = repo.incrementInTransaction(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)

	version, err = repo.Bump(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), version)
}

func TestBump_ClosedStoreFailsLoudly(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = repo.Bump(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransientStore)

	_, err = repo.GetVersion(context.Background(), 1)
	assert.ErrorIs(t, err, ErrTransientStore)
}

func TestBump_CancelledContext(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Bump(ctx, 1)
	assert.ErrorIs(t, err, ErrTransientStore)
	assert.ErrorIs(t, err, context.Canceled)
}

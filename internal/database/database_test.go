package database

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almasmith/mercer-library/internal/config"
	"github.com/almasmith/mercer-library/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}
	return db, cleanup
}

func TestOpen_MigratesSchema(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	for _, model := range []any{
		&entities.User{},
		&entities.Book{},
		&entities.Favorite{},
		&entities.BookRead{},
		&entities.StatsVersion{},
		&entities.AuditEvent{},
	} {
		assert.True(t, db.DB.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.Equal(t, config.DriverSQLite, db.Driver)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.Database{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestPing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	assert.NoError(t, db.Ping(context.Background()))
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "./a.db?"+sqlitePragmas, sqliteDSN("./a.db"))
	assert.Equal(t, "file:a.db?cache=shared&"+sqlitePragmas, sqliteDSN("file:a.db?cache=shared"))
	assert.Equal(t, config.DefaultDatabasePath+"?"+sqlitePragmas, sqliteDSN(""))
}

func TestNewConcurrencyToken(t *testing.T) {
	a := NewConcurrencyToken()
	b := NewConcurrencyToken()

	assert.Len(t, a, 16)
	assert.Len(t, b, 16)
	assert.NotEqual(t, a, b)
}

func TestCompareAndSwap(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	original := NewConcurrencyToken()
	book := &entities.Book{
		ID:          "b-1",
		OwnerUserID: 1,
		Title:       "Dune",
		Author:      "Frank Herbert",
		Genre:       "Sci-Fi",
		Rating:      5,
		RowVersion:  original,
	}
	require.NoError(t, db.DB.Create(book).Error)

	t.Run("matching token swaps", func(t *testing.T) {
		next := NewConcurrencyToken()
		ok, err := CompareAndSwap(ctx, db.DB, &entities.Book{}, map[string]any{"id": "b-1"},
			original, next, map[string]any{"title": "Dune Messiah"})
		require.NoError(t, err)
		assert.True(t, ok)

		var stored entities.Book
		require.NoError(t, db.DB.First(&stored, "id = ?", "b-1").Error)
		assert.Equal(t, "Dune Messiah", stored.Title)
		assert.Equal(t, next, stored.RowVersion)
	})

	t.Run("stale token does not swap", func(t *testing.T) {
		ok, err := CompareAndSwap(ctx, db.DB, &entities.Book{}, map[string]any{"id": "b-1"},
			original, NewConcurrencyToken(), map[string]any{"title": "Children of Dune"})
		require.NoError(t, err)
		assert.False(t, ok)

		var stored entities.Book
		require.NoError(t, db.DB.First(&stored, "id = ?", "b-1").Error)
		assert.Equal(t, "Dune Messiah", stored.Title)
	})

	t.Run("missing row does not swap", func(t *testing.T) {
		ok, err := CompareAndSwap(ctx, db.DB, &entities.Book{}, map[string]any{"id": "nope"},
			original, NewConcurrencyToken(), map[string]any{"title": "x"})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

package reads

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/almasmith/mercer-library/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_reads_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.Book{}, &entities.BookRead{}))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, NewRepository(db), cleanup
}

func createTestBook(t *testing.T, db *gorm.DB, ownerID uint, genre string, rating int) *entities.Book {
	book := &entities.Book{
		ID:          uuid.NewString(),
		OwnerUserID: ownerID,
		Title:       "Book " + genre,
		Author:      "Author",
		Genre:       genre,
		Rating:      rating,
		RowVersion:  []byte{1},
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func recordRead(t *testing.T, repo *Repository, userID uint, bookID string, at time.Time) {
	require.NoError(t, repo.Record(context.Background(), &entities.BookRead{
		ID:         uuid.NewString(),
		BookID:     bookID,
		UserID:     userID,
		OccurredAt: at,
	}))
}

func TestListWithBooks(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	fantasy := createTestBook(t, db, 1, "Fantasy", 4)
	horror := createTestBook(t, db, 1, "Horror", 2)
	foreign := createTestBook(t, db, 2, "Poetry", 5)

	jan := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 3, 8, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

	recordRead(t, repo, 1, horror.ID, feb)
	recordRead(t, repo, 1, fantasy.ID, jan)
	recordRead(t, repo, 1, fantasy.ID, mar)
	recordRead(t, repo, 2, foreign.ID, jan)

	t.Run("all reads oldest first", func(t *testing.T) {
		rows, err := repo.ListWithBooks(ctx, 1, nil, nil)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Fantasy", rows[0].Genre)
		assert.Equal(t, 4, rows[0].Rating)
		assert.Equal(t, "Horror", rows[1].Genre)
		assert.True(t, rows[2].OccurredAt.Equal(mar))
	})

	t.Run("window is inclusive", func(t *testing.T) {
		rows, err := repo.ListWithBooks(ctx, 1, &jan, &feb)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("other users reads are excluded", func(t *testing.T) {
		rows, err := repo.ListWithBooks(ctx, 2, nil, nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Poetry", rows[0].Genre)
	})

	t.Run("count for book", func(t *testing.T) {
		count, err := repo.CountForBook(ctx, 1, fantasy.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

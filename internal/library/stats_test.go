package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almasmith/mercer-library/internal/etag"
)

func TestCountGenres(t *testing.T) {
	got := CountGenres([]string{"sci-fi", " Sci-Fi ", "SCI-FI", "Romance", "", "   ", "fantasy", "Fantasy", "Horror"})

	assert.Equal(t, []GenreCount{
		{Genre: "SCI-FI", Count: 3},
		{Genre: "Fantasy", Count: 2},
		{Genre: "Horror", Count: 1},
		{Genre: "Romance", Count: 1},
	}, got)
}

func TestCountGenres_Empty(t *testing.T) {
	got := CountGenres(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenreStats_TagFollowsStatsVersion(t *testing.T) {
	env := setupTestService(t, nil)
	ctx := context.Background()

	empty, err := env.svc.GenreStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, etag.EncodeVersion(0), empty.ETag)
	assert.Empty(t, empty.Items)

	_, err = env.svc.CreateBook(ctx, 1, validInput("Dune"))
	require.NoError(t, err)

	stats, err := env.svc.GenreStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, etag.EncodeVersion(1), stats.ETag)
	assert.Equal(t, []GenreCount{{Genre: "Sci-Fi", Count: 1}}, stats.Items)
	assert.True(t, etag.MatchesIfNoneMatch([]string{stats.ETag}, stats.ETag))

	tag, err := env.svc.StatsETag(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, stats.ETag, tag)
}

package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almasmith/mercer-library/internal/etag"
	"github.com/almasmith/mercer-library/internal/library"
)

func TestFavourites(t *testing.T) {
	s := setupTestServer(t)
	token := s.register(t, "reader@example.com")
	dune, _ := s.createBook(t, token, newBook("Dune", "Sci-Fi", 5))
	s.createBook(t, token, newBook("Emma", "Romance", 3))

	favPath := "/api/books/" + dune.ID + "/favorite"

	listFavourites := func(t *testing.T, query string) library.Page {
		t.Helper()
		w := s.do(t, http.MethodGet, "/api/favorites"+query, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page library.Page
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		return page
	}

	t.Run("add is idempotent", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, favPath, token, nil).Code)
		assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, favPath, token, nil).Code)

		page := listFavourites(t, "")
		assert.Equal(t, int64(1), page.TotalItems)
		require.Len(t, page.Items, 1)
		assert.Equal(t, dune.ID, page.Items[0].ID)
	})

	t.Run("list honours filters", func(t *testing.T) {
		assert.Zero(t, listFavourites(t, "?genre=romance").TotalItems)
		assert.Equal(t, int64(1), listFavourites(t, "?search=dune").TotalItems)
	})

	t.Run("each change bumps the stats version", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books/stats", token, nil)
		assert.Equal(t, etag.EncodeVersion(4), w.Header().Get("ETag"))
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, favPath, token, nil).Code)
		assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, favPath, token, nil).Code)
		assert.Zero(t, listFavourites(t, "").TotalItems)
	})

	t.Run("foreign or unknown books get 404", func(t *testing.T) {
		other := s.register(t, "other@example.com")
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, favPath, other, nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, favPath, other, nil).Code)

		unknown := "/api/books/" + uuid.NewString() + "/favorite"
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, unknown, token, nil).Code)
	})
}

package library

import (
	"context"
	"fmt"

	"github.com/almasmith/mercer-library/internal/realtime"
)

// Favorite flags the owner's book. Repeating it changes nothing but still
// counts as a statistics-relevant mutation.
func (s *Service) Favorite(ctx context.Context, userID uint, bookID string) (found bool, err error) {
	if found, err = s.owns(ctx, userID, bookID); err != nil || !found {
		return found, err
	}
	if err := s.favorites.Add(ctx, userID, bookID); err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	s.afterMutation(ctx, userID, realtime.EventBookFavorited, realtime.BookRef{ID: bookID})
	return true, nil
}

// Unfavorite clears the flag. Clearing an absent flag is not an error.
func (s *Service) Unfavorite(ctx context.Context, userID uint, bookID string) (found bool, err error) {
	if found, err = s.owns(ctx, userID, bookID); err != nil || !found {
		return found, err
	}
	if err := s.favorites.Remove(ctx, userID, bookID); err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	s.afterMutation(ctx, userID, realtime.EventBookUnfavorited, realtime.BookRef{ID: bookID})
	return true, nil
}

func (s *Service) ListFavorites(ctx context.Context, userID uint, q ListQuery) (Page, error) {
	params := q.params()
	items, total, err := s.favorites.ListBooks(ctx, userID, params)
	if err != nil {
		return Page{}, fmt.Errorf("failed to list favorites: %w", err)
	}
	return newPage(items, params, total), nil
}

func (s *Service) owns(ctx context.Context, userID uint, bookID string) (bool, error) {
	ok, err := s.books.Exists(ctx, bookID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check book ownership: %w", err)
	}
	if ok {
		if err := ctx.Err(); err != nil {
			return false, err
		}
	}
	return ok, nil
}

package library

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/almasmith/mercer-library/internal/entities"
	"github.com/almasmith/mercer-library/internal/realtime"
)

// RecordRead stores a read event for the owner's book at the current time.
func (s *Service) RecordRead(ctx context.Context, userID uint, bookID string) (found bool, err error) {
	if found, err = s.owns(ctx, userID, bookID); err != nil || !found {
		return found, err
	}

	read := &entities.BookRead{
		ID:         s.newID(),
		BookID:     bookID,
		UserID:     userID,
		OccurredAt: s.now(),
	}
	if err := s.reads.Record(ctx, read); err != nil {
		return false, fmt.Errorf("failed to record read: %w", err)
	}
	s.afterMutation(ctx, userID, realtime.EventBookRead, realtime.BookRef{ID: bookID})
	return true, nil
}

// AverageRatingByMonth averages the rating of read books per UTC calendar
// month of the read, oldest month first.
func (s *Service) AverageRatingByMonth(ctx context.Context, userID uint, from, to *time.Time) ([]MonthlyAverage, error) {
	rows, err := s.reads.ListWithBooks(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load reads: %w", err)
	}

	type bucket struct {
		sum   int
		count int
	}
	buckets := make(map[string]*bucket)
	for _, r := range rows {
		key := r.OccurredAt.UTC().Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum += r.Rating
		b.count++
	}

	out := make([]MonthlyAverage, 0, len(buckets))
	for key, b := range buckets {
		out = append(out, MonthlyAverage{Bucket: key, Average: float64(b.sum) / float64(b.count)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out, nil
}

// MostReadGenres counts reads per genre, grouping case-insensitively after
// trimming. Each group keeps the first spelling seen in read order.
func (s *Service) MostReadGenres(ctx context.Context, userID uint, from, to *time.Time) ([]GenreReads, error) {
	rows, err := s.reads.ListWithBooks(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load reads: %w", err)
	}

	type group struct {
		display    string
		normalized string
		count      int
	}
	groups := make(map[string]*group)
	for _, r := range rows {
		original := strings.TrimSpace(r.Genre)
		if original == "" {
			continue
		}
		key := strings.ToLower(original)
		g, ok := groups[key]
		if !ok {
			g = &group{display: original, normalized: key}
			groups[key] = g
		}
		g.count++
	}

	sorted := make([]*group, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].normalized < sorted[j].normalized
	})

	out := make([]GenreReads, 0, len(sorted))
	for _, g := range sorted {
		out = append(out, GenreReads{Genre: g.display, ReadCount: g.count})
	}
	return out, nil
}

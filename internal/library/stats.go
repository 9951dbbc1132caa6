package library

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/almasmith/mercer-library/internal/etag"
)

// StatsETag is the tag of the user's current stats version.
func (s *Service) StatsETag(ctx context.Context, userID uint) (string, error) {
	version, err := s.stats.GetVersion(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to read stats version: %w", err)
	}
	return etag.EncodeVersion(version), nil
}

// GenreStats counts the owner's books per genre. The tag is read before
// the counts so a concurrent change can only make the body newer than its
// tag, never older.
func (s *Service) GenreStats(ctx context.Context, userID uint) (GenreStats, error) {
	tag, err := s.StatsETag(ctx, userID)
	if err != nil {
		return GenreStats{}, err
	}

	genres, err := s.books.Genres(ctx, userID)
	if err != nil {
		return GenreStats{}, fmt.Errorf("failed to load genres: %w", err)
	}
	return GenreStats{Items: CountGenres(genres), ETag: tag}, nil
}

// CountGenres groups genres case-insensitively after trimming, skipping
// blanks. Each group is named by its ordinal-smallest spelling. Groups are
// ordered by count, largest first, then by lower-cased name.
func CountGenres(genres []string) []GenreCount {
	type group struct {
		canonical string
		lower     string
		count     int
	}
	groups := make(map[string]*group)
	for _, raw := range genres {
		g := strings.TrimSpace(raw)
		if g == "" {
			continue
		}
		key := strings.ToLower(g)
		if existing, ok := groups[key]; ok {
			existing.count++
			if g < existing.canonical {
				existing.canonical = g
			}
			continue
		}
		groups[key] = &group{canonical: g, lower: key, count: 1}
	}

	sorted := make([]*group, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].lower < sorted[j].lower
	})

	out := make([]GenreCount, 0, len(sorted))
	for _, g := range sorted {
		out = append(out, GenreCount{Genre: g.canonical, Count: g.count})
	}
	return out
}

package library

import (
	"context"
	"math"
	"sort"

	"marquee/internal/classify"
	"marquee/internal/services"
)

const topRatedLimit = 5

// Stats aggregates the library into the distributions the presentation
// layer charts: genre buckets, rating tiers and histogram bands, and the
// release-decade trend.
func (s *Store) Stats(ctx context.Context) (*LibraryStats, error) {
	stats := &LibraryStats{}

	total, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalMovies = total

	stats.GenreBuckets, err = s.countsByColumn(ctx, "genre_bucket", classify.Buckets())
	if err != nil {
		return nil, err
	}
	stats.RatingTiers, err = s.countsByColumn(ctx, "rating_tier", classify.Tiers())
	if err != nil {
		return nil, err
	}
	stats.Decades, err = s.decadeCounts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ratingAggregates(ctx, stats); err != nil {
		return nil, err
	}
	stats.TopRated, err = s.topRated(ctx)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// countsByColumn groups movies by a label column, keeping the canonical
// label ordering and dropping empty buckets.
func (s *Store) countsByColumn(ctx context.Context, column string, ordering []string) ([]LabelCount, error) {
	// column is always one of the fixed label column names.
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(1) FROM movies GROUP BY `+column)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "stats", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, services.Wrap(services.ErrStorage, "library", "stats", "scan "+column, err)
		}
		counts[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "stats", "iterate "+column, err)
	}

	result := make([]LabelCount, 0, len(counts))
	for _, label := range ordering {
		if count, ok := counts[label]; ok && count > 0 {
			result = append(result, LabelCount{Label: label, Count: count})
			delete(counts, label)
		}
	}
	// Labels outside the canonical ordering (legacy rows) still show up.
	extras := make([]string, 0, len(counts))
	for label := range counts {
		extras = append(extras, label)
	}
	sort.Strings(extras)
	for _, label := range extras {
		result = append(result, LabelCount{Label: label, Count: counts[label]})
	}
	return result, nil
}

func (s *Store) decadeCounts(ctx context.Context) ([]LabelCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT era_bucket, COUNT(1) FROM movies GROUP BY era_bucket ORDER BY era_bucket`)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "stats", "decades", err)
	}
	defer rows.Close()

	var result []LabelCount
	var unknown *LabelCount
	for rows.Next() {
		var entry LabelCount
		if err := rows.Scan(&entry.Label, &entry.Count); err != nil {
			return nil, services.Wrap(services.ErrStorage, "library", "stats", "scan decades", err)
		}
		if entry.Label == classify.EraUnknown {
			unknown = &entry
			continue
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "stats", "iterate decades", err)
	}
	// Unknown sorts last regardless of its lexical position.
	if unknown != nil {
		result = append(result, *unknown)
	}
	return result, nil
}

func (s *Store) ratingAggregates(ctx context.Context, stats *LibraryStats) error {
	rows, err := s.db.QueryContext(ctx, `SELECT rating FROM movies WHERE rating IS NOT NULL`)
	if err != nil {
		return services.Wrap(services.ErrStorage, "library", "stats", "ratings", err)
	}
	defer rows.Close()

	bands := make(map[string]int)
	var sum float64
	var rated int
	for rows.Next() {
		var rating float64
		if err := rows.Scan(&rating); err != nil {
			return services.Wrap(services.ErrStorage, "library", "stats", "scan rating", err)
		}
		rated++
		sum += rating
		if category := classify.RatingCategory(rating); category != "" {
			bands[category]++
		}
	}
	if err := rows.Err(); err != nil {
		return services.Wrap(services.ErrStorage, "library", "stats", "iterate ratings", err)
	}

	stats.RatedMovies = rated
	if rated > 0 {
		stats.AverageRating = math.Round(sum/float64(rated)*100) / 100
	}
	for _, category := range classify.Categories() {
		if count := bands[category]; count > 0 {
			stats.RatingHistogram = append(stats.RatingHistogram, LabelCount{Label: category, Count: count})
		}
	}
	return nil
}

func (s *Store) topRated(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE rating IS NOT NULL ORDER BY rating DESC, title ASC LIMIT ?`,
		topRatedLimit,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "stats", "top rated", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, "library", "stats", "scan top rated", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

package library

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"marquee/internal/classify"
	"marquee/internal/services"
)

const movieColumns = "id, external_id, title, year, genres, rating, runtime_minutes, director, actors, plot, poster_url, genre_bucket, rating_tier, era_bucket, created_at, updated_at"

// Upsert writes a movie and its labels, keyed on external_id. Calling it
// twice with the same external_id updates the stored row in place; created_at
// is preserved across updates. Returns the stored record.
func (s *Store) Upsert(ctx context.Context, movie *Movie, labels classify.Labels) (*Record, error) {
	if movie == nil {
		return nil, services.Wrap(services.ErrInvalidInput, "library", "upsert", "movie is nil", nil)
	}
	externalID := strings.TrimSpace(movie.ExternalID)
	if externalID == "" {
		return nil, services.Wrap(services.ErrInvalidInput, "library", "upsert", "external id is empty", nil)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO movies (
            external_id, title, year, genres, rating, runtime_minutes,
            director, actors, plot, poster_url,
            genre_bucket, rating_tier, era_bucket, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (external_id) DO UPDATE SET
            title = excluded.title,
            year = excluded.year,
            genres = excluded.genres,
            rating = excluded.rating,
            runtime_minutes = excluded.runtime_minutes,
            director = excluded.director,
            actors = excluded.actors,
            plot = excluded.plot,
            poster_url = excluded.poster_url,
            genre_bucket = excluded.genre_bucket,
            rating_tier = excluded.rating_tier,
            era_bucket = excluded.era_bucket,
            updated_at = excluded.updated_at`,
		externalID,
		movie.Title,
		nullableInt(movie.Year),
		joinGenres(movie.Genres),
		nullableRating(movie.Rating),
		nullableInt(movie.RuntimeMinutes),
		nullableString(movie.Director),
		nullableString(movie.Actors),
		nullableString(movie.Plot),
		nullableString(movie.PosterURL),
		labels.GenreBucket,
		labels.RatingTier,
		labels.EraBucket,
		now,
		now,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "upsert", externalID, err)
	}

	return s.GetByExternalID(ctx, externalID)
}

// Exists reports whether a movie with the given external id is stored.
func (s *Store) Exists(ctx context.Context, externalID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE external_id = ?`, externalID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, services.Wrap(services.ErrStorage, "library", "exists", externalID, err)
	}
	return true, nil
}

// GetByExternalID fetches one record by the provider identifier. Returns
// ErrNotFound when no row matches.
func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE external_id = ?`, externalID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "library", "get", externalID, nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "get", externalID, err)
	}
	return record, nil
}

// List returns records matching the filter. Unsupported filters fail with
// ErrInvalidQuery via Filter.Validate.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Record, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	conditions := make([]string, 0, 5)
	args := make([]any, 0, 8)
	if query := strings.TrimSpace(filter.Query); query != "" {
		pattern := "%" + query + "%"
		conditions = append(conditions, "(title LIKE ? OR genres LIKE ? OR director LIKE ? OR actors LIKE ?)")
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if filter.GenreBucket != "" {
		conditions = append(conditions, "genre_bucket = ?")
		args = append(args, filter.GenreBucket)
	}
	if filter.RatingTier != "" {
		conditions = append(conditions, "rating_tier = ?")
		args = append(args, filter.RatingTier)
	}
	if filter.YearFrom > 0 {
		conditions = append(conditions, "year >= ?")
		args = append(args, filter.YearFrom)
	}
	if filter.YearTo > 0 {
		conditions = append(conditions, "year <= ?")
		args = append(args, filter.YearTo)
	}

	query := `SELECT ` + movieColumns + ` FROM movies`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ` + filter.orderClause()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "list", "", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, "library", "list", "scan row", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "list", "iterate rows", err)
	}
	return records, nil
}

// Remove deletes a movie by external id. Returns false when nothing matched.
func (s *Store) Remove(ctx context.Context, externalID string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM movies WHERE external_id = ?`, externalID)
	if err != nil {
		return false, services.Wrap(services.ErrStorage, "library", "remove", externalID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, services.Wrap(services.ErrStorage, "library", "remove", "rows affected", err)
	}
	return affected > 0, nil
}

// Clear removes all movies from the library.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM movies`)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "library", "clear", "", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "library", "clear", "rows affected", err)
	}
	return affected, nil
}

// Count returns the number of stored movies.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM movies`).Scan(&count); err != nil {
		return 0, services.Wrap(services.ErrStorage, "library", "count", "", err)
	}
	return count, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id          int64
		externalID  string
		title       string
		year        sql.NullInt64
		genres      sql.NullString
		rating      sql.NullFloat64
		runtime     sql.NullInt64
		director    sql.NullString
		actors      sql.NullString
		plot        sql.NullString
		posterURL   sql.NullString
		genreBucket string
		ratingTier  string
		eraBucket   string
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&externalID,
		&title,
		&year,
		&genres,
		&rating,
		&runtime,
		&director,
		&actors,
		&plot,
		&posterURL,
		&genreBucket,
		&ratingTier,
		&eraBucket,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	movie := Movie{
		ID:             id,
		ExternalID:     externalID,
		Title:          title,
		Year:           int(year.Int64),
		Genres:         splitGenres(genres.String),
		Rating:         -1,
		RuntimeMinutes: int(runtime.Int64),
		Director:       director.String,
		Actors:         actors.String,
		Plot:           plot.String,
		PosterURL:      posterURL.String,
	}
	if rating.Valid {
		movie.Rating = rating.Float64
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		movie.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		movie.UpdatedAt = updated
	}

	return &Record{
		Movie: movie,
		Labels: classify.Labels{
			GenreBucket: genreBucket,
			RatingTier:  ratingTier,
			EraBucket:   eraBucket,
		},
	}, nil
}

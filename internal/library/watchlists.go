package library

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"marquee/internal/services"
)

// CreateWatchlist creates a named watchlist. Names are unique.
func (s *Store) CreateWatchlist(ctx context.Context, name, description string) (*Watchlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrInvalidInput, "library", "create watchlist", "name is empty", nil)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO watchlists (name, description, created_at) VALUES (?, ?, ?)`,
		name,
		nullableString(strings.TrimSpace(description)),
		now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, services.Wrap(services.ErrInvalidInput, "library", "create watchlist", "name already exists: "+name, nil)
		}
		return nil, services.Wrap(services.ErrStorage, "library", "create watchlist", name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "create watchlist", "last insert id", err)
	}
	return s.GetWatchlist(ctx, id)
}

// GetWatchlist fetches one watchlist with its movie count.
func (s *Store) GetWatchlist(ctx context.Context, id int64) (*Watchlist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT w.id, w.name, w.description, w.created_at, COUNT(wi.id)
         FROM watchlists w
         LEFT JOIN watchlist_items wi ON wi.watchlist_id = w.id
         WHERE w.id = ?
         GROUP BY w.id`, id)
	watchlist, err := scanWatchlist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "library", "get watchlist", "", nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "get watchlist", "", err)
	}
	return watchlist, nil
}

// Watchlists lists all watchlists with their movie counts, newest first.
func (s *Store) Watchlists(ctx context.Context) ([]*Watchlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT w.id, w.name, w.description, w.created_at, COUNT(wi.id)
         FROM watchlists w
         LEFT JOIN watchlist_items wi ON wi.watchlist_id = w.id
         GROUP BY w.id
         ORDER BY w.created_at DESC`)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "list watchlists", "", err)
	}
	defer rows.Close()

	var watchlists []*Watchlist
	for rows.Next() {
		watchlist, err := scanWatchlist(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, "library", "list watchlists", "scan row", err)
		}
		watchlists = append(watchlists, watchlist)
	}
	return watchlists, rows.Err()
}

// AddToWatchlist adds a stored movie to a watchlist. Adding the same movie
// twice is a no-op.
func (s *Store) AddToWatchlist(ctx context.Context, watchlistID int64, externalID string) error {
	if _, err := s.GetWatchlist(ctx, watchlistID); err != nil {
		return err
	}
	record, err := s.GetByExternalID(ctx, externalID)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO watchlist_items (watchlist_id, movie_id, added_at) VALUES (?, ?, ?)`,
		watchlistID,
		record.Movie.ID,
		now,
	)
	if err != nil {
		return services.Wrap(services.ErrStorage, "library", "add to watchlist", externalID, err)
	}
	return nil
}

// WatchlistMovies lists the records on a watchlist in the order they were
// added.
func (s *Store) WatchlistMovies(ctx context.Context, watchlistID int64) ([]*Record, error) {
	if _, err := s.GetWatchlist(ctx, watchlistID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+prefixedMovieColumns("m")+`
         FROM movies m
         JOIN watchlist_items wi ON wi.movie_id = m.id
         WHERE wi.watchlist_id = ?
         ORDER BY wi.added_at, wi.id`, watchlistID)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "library", "watchlist movies", "", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, "library", "watchlist movies", "scan row", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// RemoveWatchlist deletes a watchlist and its items. Returns false when the
// watchlist did not exist.
func (s *Store) RemoveWatchlist(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM watchlists WHERE id = ?`, id)
	if err != nil {
		return false, services.Wrap(services.ErrStorage, "library", "remove watchlist", "", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, services.Wrap(services.ErrStorage, "library", "remove watchlist", "rows affected", err)
	}
	return affected > 0, nil
}

func prefixedMovieColumns(alias string) string {
	parts := strings.Split(movieColumns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}

func scanWatchlist(scanner interface{ Scan(dest ...any) error }) (*Watchlist, error) {
	var (
		id          int64
		name        string
		description sql.NullString
		createdRaw  sql.NullString
		count       int
	)
	if err := scanner.Scan(&id, &name, &description, &createdRaw, &count); err != nil {
		return nil, err
	}
	watchlist := &Watchlist{
		ID:          id,
		Name:        name,
		Description: description.String,
		MovieCount:  count,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		watchlist.CreatedAt = created
	}
	return watchlist, nil
}

package library

import (
	"fmt"
	"strings"
	"time"

	"marquee/internal/classify"
	"marquee/internal/services"
)

// Movie is one external title lookup result. ExternalID is the provider's
// stable identifier and the natural deduplication key: two records with the
// same ExternalID refer to the same title, and later writes update rather
// than duplicate.
type Movie struct {
	ID             int64    `json:"id,omitempty"`
	ExternalID     string   `json:"external_id"`
	Title          string   `json:"title"`
	Year           int      `json:"year,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Rating         float64  `json:"rating"`
	RuntimeMinutes int      `json:"runtime_minutes,omitempty"`
	Director       string   `json:"director,omitempty"`
	Actors         string   `json:"actors,omitempty"`
	Plot           string   `json:"plot,omitempty"`
	PosterURL      string   `json:"poster_url,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// HasRating reports whether the provider supplied a rating. Absent ratings
// are stored as a negative sentinel.
func (m *Movie) HasRating() bool {
	return m != nil && m.Rating >= 0
}

// Record pairs a persisted movie with its derived labels.
type Record struct {
	Movie  Movie           `json:"movie"`
	Labels classify.Labels `json:"labels"`
}

// Sort keys accepted by Filter. A leading '-' flips to descending order.
var sortSafelist = map[string]string{
	"title":  "title",
	"year":   "year",
	"rating": "rating",
	"added":  "created_at",
}

// DefaultSort lists newest additions first, matching the library view.
const DefaultSort = "-added"

// Filter restricts a library listing. Zero values mean "no constraint";
// YearFrom/YearTo bound the release year inclusively. Query is a free-text
// substring match over title, genres, director, and actors.
type Filter struct {
	Query       string
	GenreBucket string
	RatingTier  string
	YearFrom    int
	YearTo      int
	Sort        string
}

// Validate rejects unsupported filter combinations with ErrInvalidQuery
// rather than silently ignoring constraints.
func (f Filter) Validate() error {
	if f.GenreBucket != "" && !classify.ValidBucket(f.GenreBucket) {
		return services.Wrap(services.ErrInvalidQuery, "library", "list", fmt.Sprintf("unknown genre bucket %q", f.GenreBucket), nil)
	}
	if f.RatingTier != "" && !classify.ValidTier(f.RatingTier) {
		return services.Wrap(services.ErrInvalidQuery, "library", "list", fmt.Sprintf("unknown rating tier %q", f.RatingTier), nil)
	}
	if f.YearFrom < 0 || f.YearTo < 0 {
		return services.Wrap(services.ErrInvalidQuery, "library", "list", "year bounds must not be negative", nil)
	}
	if f.YearFrom > 0 && f.YearTo > 0 && f.YearFrom > f.YearTo {
		return services.Wrap(services.ErrInvalidQuery, "library", "list", fmt.Sprintf("year range %d-%d is inverted", f.YearFrom, f.YearTo), nil)
	}
	if f.Sort != "" {
		if _, ok := sortSafelist[strings.TrimPrefix(f.Sort, "-")]; !ok {
			return services.Wrap(services.ErrInvalidQuery, "library", "list", fmt.Sprintf("unsupported sort %q", f.Sort), nil)
		}
	}
	return nil
}

// orderClause resolves the sort key against the safelist. Validate must have
// accepted the filter first.
func (f Filter) orderClause() string {
	sort := f.Sort
	if sort == "" {
		sort = DefaultSort
	}
	direction := "ASC"
	if strings.HasPrefix(sort, "-") {
		direction = "DESC"
	}
	column, ok := sortSafelist[strings.TrimPrefix(sort, "-")]
	if !ok {
		column = "created_at"
		direction = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id ASC", column, direction)
}

// Watchlist is a named collection of library movies.
type Watchlist struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	MovieCount  int       `json:"movie_count"`
}

// LabelCount is one bar of a distribution: a label and how many movies
// carry it.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LibraryStats aggregates the library for chart rendering: genre
// distribution, rating histograms, and release-decade trend.
type LibraryStats struct {
	TotalMovies     int          `json:"total_movies"`
	RatedMovies     int          `json:"rated_movies"`
	AverageRating   float64      `json:"average_rating"`
	GenreBuckets    []LabelCount `json:"genre_buckets"`
	RatingTiers     []LabelCount `json:"rating_tiers"`
	RatingHistogram []LabelCount `json:"rating_histogram"`
	Decades         []LabelCount `json:"decades"`
	TopRated        []*Record    `json:"top_rated"`
}

package classify

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Labels holds the derived categorical labels attached to a movie record.
type Labels struct {
	GenreBucket string `json:"genre_bucket"`
	RatingTier  string `json:"rating_tier"`
	EraBucket   string `json:"era_bucket"`
}

var titleCaser = cases.Title(language.English)

// Classify derives labels from raw metadata fields. Rating uses a negative
// value as the absent sentinel; year and runtime use zero.
func Classify(genres []string, rating float64, year int) Labels {
	return Labels{
		GenreBucket: GenreBucket(genres),
		RatingTier:  RatingTier(rating),
		EraBucket:   EraBucket(year),
	}
}

// GenreBucket maps the first listed genre through the static bucket table.
// Records without genres bucket to Unknown; genres missing from the table
// bucket to Other.
func GenreBucket(genres []string) string {
	for _, genre := range genres {
		canonical := CanonicalGenre(genre)
		if canonical == "" {
			continue
		}
		if bucket, ok := genreBuckets[canonical]; ok {
			return bucket
		}
		return BucketOther
	}
	return BucketUnknown
}

// RatingTier bands a 0-10 rating. A negative rating means the provider
// reported no rating.
func RatingTier(rating float64) string {
	switch {
	case rating < 0:
		return TierUnrated
	case rating < 5.0:
		return TierLow
	case rating <= 7.5:
		return TierMedium
	default:
		return TierHigh
	}
}

// EraBucket buckets a release year into its decade, e.g. 1999 -> "1990s".
func EraBucket(year int) string {
	if year <= 0 {
		return EraUnknown
	}
	return fmt.Sprintf("%ds", year/10*10)
}

// RatingCategory assigns a rating to the histogram band used by library
// statistics. Returns "" for absent ratings.
func RatingCategory(rating float64) string {
	switch {
	case rating < 0:
		return ""
	case rating >= 9:
		return CategoryExcellent
	case rating >= 7:
		return CategoryGood
	case rating >= 5:
		return CategoryAverage
	case rating >= 3:
		return CategoryPoor
	default:
		return CategoryBad
	}
}

// CanonicalGenre normalizes a provider genre string for table lookup.
// "sci-fi" and "Sci-Fi" are the same genre; surrounding whitespace is noise.
func CanonicalGenre(genre string) string {
	trimmed := strings.TrimSpace(genre)
	if trimmed == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(trimmed))
}

package classify

// Genre buckets. Unknown covers records with no genre data; Other covers
// genres missing from the mapping table.
const (
	BucketActionAdventure = "Action & Adventure"
	BucketSciFiFantasy    = "Sci-Fi & Fantasy"
	BucketDramaRomance    = "Drama & Romance"
	BucketComedyFamily    = "Comedy & Family"
	BucketThrillerHorror  = "Thriller & Horror"
	BucketDocumentary     = "Documentary & History"
	BucketOther           = "Other"
	BucketUnknown         = "Unknown"
)

// Rating tiers. Boundaries are inclusive on the lower edge of each band:
// 5.0 and 7.5 are Medium, anything above 7.5 is High.
const (
	TierUnrated = "Unrated"
	TierLow     = "Low"
	TierMedium  = "Medium"
	TierHigh    = "High"
)

// EraUnknown is the era bucket for records without a release year.
const EraUnknown = "Unknown"

// genreBuckets maps canonical provider genres to buckets. Kept as an
// explicit static table rather than any dynamic lookup.
var genreBuckets = map[string]string{
	"Action":          BucketActionAdventure,
	"Adventure":       BucketActionAdventure,
	"War":             BucketActionAdventure,
	"Western":         BucketActionAdventure,
	"Sci-Fi":          BucketSciFiFantasy,
	"Science Fiction": BucketSciFiFantasy,
	"Fantasy":         BucketSciFiFantasy,
	"Drama":           BucketDramaRomance,
	"Romance":         BucketDramaRomance,
	"Comedy":          BucketComedyFamily,
	"Family":          BucketComedyFamily,
	"Animation":       BucketComedyFamily,
	"Music":           BucketComedyFamily,
	"Musical":         BucketComedyFamily,
	"Thriller":        BucketThrillerHorror,
	"Horror":          BucketThrillerHorror,
	"Mystery":         BucketThrillerHorror,
	"Crime":           BucketThrillerHorror,
	"Documentary":     BucketDocumentary,
	"History":         BucketDocumentary,
	"Biography":       BucketDocumentary,
}

var orderedBuckets = []string{
	BucketActionAdventure,
	BucketSciFiFantasy,
	BucketDramaRomance,
	BucketComedyFamily,
	BucketThrillerHorror,
	BucketDocumentary,
	BucketOther,
	BucketUnknown,
}

var orderedTiers = []string{
	TierHigh,
	TierMedium,
	TierLow,
	TierUnrated,
}

// Rating categories used by library statistics, matching the histogram bands
// shown in the stats views.
const (
	CategoryExcellent = "Excellent (9-10)"
	CategoryGood      = "Good (7-8.9)"
	CategoryAverage   = "Average (5-6.9)"
	CategoryPoor      = "Poor (3-4.9)"
	CategoryBad       = "Bad (0-2.9)"
)

var orderedCategories = []string{
	CategoryExcellent,
	CategoryGood,
	CategoryAverage,
	CategoryPoor,
	CategoryBad,
}

// Buckets returns the ordered list of known genre buckets.
func Buckets() []string {
	cp := make([]string, len(orderedBuckets))
	copy(cp, orderedBuckets)
	return cp
}

// Tiers returns the ordered list of known rating tiers.
func Tiers() []string {
	cp := make([]string, len(orderedTiers))
	copy(cp, orderedTiers)
	return cp
}

// Categories returns the ordered list of rating histogram categories.
func Categories() []string {
	cp := make([]string, len(orderedCategories))
	copy(cp, orderedCategories)
	return cp
}

// ValidBucket reports whether value names a known genre bucket.
func ValidBucket(value string) bool {
	for _, bucket := range orderedBuckets {
		if bucket == value {
			return true
		}
	}
	return false
}

// ValidTier reports whether value names a known rating tier.
func ValidTier(value string) bool {
	for _, tier := range orderedTiers {
		if tier == value {
			return true
		}
	}
	return false
}

package library_test

import (
	"context"
	"testing"

	"marquee/internal/classify"
	"marquee/internal/library"
	"marquee/internal/testsupport"
)

func TestStatsAggregates(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	seedLibrary(t, store)

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.TotalMovies != 6 {
		t.Fatalf("total = %d, want 6", stats.TotalMovies)
	}
	if stats.RatedMovies != 5 {
		t.Fatalf("rated = %d, want 5", stats.RatedMovies)
	}
	// (8.8 + 9.3 + 8.2 + 7.6 + 1.9) / 5 = 7.16
	if stats.AverageRating != 7.16 {
		t.Fatalf("average = %v, want 7.16", stats.AverageRating)
	}

	buckets := toMap(stats.GenreBuckets)
	if buckets[classify.BucketActionAdventure] != 2 {
		t.Fatalf("action bucket = %d, want 2", buckets[classify.BucketActionAdventure])
	}
	if buckets[classify.BucketUnknown] != 1 {
		t.Fatalf("unknown bucket = %d, want 1", buckets[classify.BucketUnknown])
	}

	tiers := toMap(stats.RatingTiers)
	if tiers[classify.TierHigh] != 4 || tiers[classify.TierLow] != 1 || tiers[classify.TierUnrated] != 1 {
		t.Fatalf("unexpected tiers %v", stats.RatingTiers)
	}

	histogram := toMap(stats.RatingHistogram)
	if histogram[classify.CategoryExcellent] != 1 {
		t.Fatalf("excellent = %d, want 1", histogram[classify.CategoryExcellent])
	}
	if histogram[classify.CategoryGood] != 3 {
		t.Fatalf("good = %d, want 3", histogram[classify.CategoryGood])
	}
	if histogram[classify.CategoryBad] != 1 {
		t.Fatalf("bad = %d, want 1", histogram[classify.CategoryBad])
	}

	if len(stats.Decades) == 0 {
		t.Fatal("expected decade counts")
	}
	if last := stats.Decades[len(stats.Decades)-1]; last.Label != classify.EraUnknown {
		t.Fatalf("expected Unknown decade last, got %q", last.Label)
	}

	if len(stats.TopRated) != 5 {
		t.Fatalf("top rated = %d entries, want 5", len(stats.TopRated))
	}
	if stats.TopRated[0].Movie.Title != "The Shawshank Redemption" {
		t.Fatalf("unexpected top title %q", stats.TopRated[0].Movie.Title)
	}
}

func TestStatsEmptyLibrary(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalMovies != 0 || stats.RatedMovies != 0 || stats.AverageRating != 0 {
		t.Fatalf("unexpected stats for empty library: %+v", stats)
	}
	if len(stats.GenreBuckets) != 0 || len(stats.TopRated) != 0 {
		t.Fatalf("expected empty distributions: %+v", stats)
	}
}

func toMap(counts []library.LabelCount) map[string]int {
	m := make(map[string]int, len(counts))
	for _, entry := range counts {
		m[entry.Label] = entry.Count
	}
	return m
}

package library_test

import (
	"context"
	"errors"
	"testing"

	"marquee/internal/classify"
	"marquee/internal/library"
	"marquee/internal/services"
	"marquee/internal/testsupport"
)

func sampleMovie() *library.Movie {
	return &library.Movie{
		ExternalID:     "tt1375666",
		Title:          "Inception",
		Year:           2010,
		Genres:         []string{"Action", "Adventure", "Sci-Fi"},
		Rating:         8.8,
		RuntimeMinutes: 148,
		Director:       "Christopher Nolan",
	}
}

func mustUpsert(t *testing.T, store *library.Store, movie *library.Movie) *library.Record {
	t.Helper()
	labels := classify.Classify(movie.Genres, movie.Rating, movie.Year)
	record, err := store.Upsert(context.Background(), movie, labels)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	return record
}

func TestUpsertIsIdempotentOnExternalID(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first := mustUpsert(t, store, sampleMovie())
	second := mustUpsert(t, store, sampleMovie())

	if first.Movie.ID != second.Movie.ID {
		t.Fatalf("expected same row, got ids %d and %d", first.Movie.ID, second.Movie.ID)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after double upsert, got %d", count)
	}
	if !second.Movie.CreatedAt.Equal(first.Movie.CreatedAt) {
		t.Fatalf("created_at changed across upserts: %v vs %v", first.Movie.CreatedAt, second.Movie.CreatedAt)
	}
}

func TestUpsertUpdatesInPlace(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	mustUpsert(t, store, sampleMovie())

	refetched := sampleMovie()
	refetched.Rating = 9.1
	refetched.Genres = []string{"Drama"}
	record := mustUpsert(t, store, refetched)

	if record.Movie.Rating != 9.1 {
		t.Fatalf("rating not updated: %v", record.Movie.Rating)
	}
	if record.Labels.GenreBucket != classify.BucketDramaRomance {
		t.Fatalf("labels not recomputed: %+v", record.Labels)
	}
	if record.Labels.RatingTier != classify.TierHigh {
		t.Fatalf("unexpected tier %q", record.Labels.RatingTier)
	}
}

func TestUpsertRejectsEmptyExternalID(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	movie := sampleMovie()
	movie.ExternalID = "   "
	_, err := store.Upsert(context.Background(), movie, classify.Labels{})
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestExistsAndGet(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	ok, err := store.Exists(ctx, "tt1375666")
	if err != nil || ok {
		t.Fatalf("expected absent before insert, got ok=%v err=%v", ok, err)
	}

	mustUpsert(t, store, sampleMovie())

	ok, err = store.Exists(ctx, "tt1375666")
	if err != nil || !ok {
		t.Fatalf("expected present after insert, got ok=%v err=%v", ok, err)
	}

	record, err := store.GetByExternalID(ctx, "tt1375666")
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if record.Movie.Title != "Inception" || record.Movie.Year != 2010 {
		t.Fatalf("unexpected record %+v", record.Movie)
	}
	if len(record.Movie.Genres) != 3 {
		t.Fatalf("genres not round-tripped: %v", record.Movie.Genres)
	}

	if _, err := store.GetByExternalID(ctx, "tt0000000"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUnratedMovieRoundTrips(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	movie := &library.Movie{
		ExternalID: "tt9999001",
		Title:      "Obscure Short",
		Rating:     -1,
	}
	record := mustUpsert(t, store, movie)

	if record.Movie.HasRating() {
		t.Fatalf("expected absent rating, got %v", record.Movie.Rating)
	}
	if record.Labels.RatingTier != classify.TierUnrated {
		t.Fatalf("expected unrated tier, got %q", record.Labels.RatingTier)
	}
	if record.Labels.EraBucket != classify.EraUnknown {
		t.Fatalf("expected unknown era, got %q", record.Labels.EraBucket)
	}
}

func seedLibrary(t *testing.T, store *library.Store) {
	t.Helper()
	movies := []*library.Movie{
		{ExternalID: "tt1375666", Title: "Inception", Year: 2010, Genres: []string{"Action", "Sci-Fi"}, Rating: 8.8, Director: "Christopher Nolan"},
		{ExternalID: "tt0111161", Title: "The Shawshank Redemption", Year: 1994, Genres: []string{"Drama"}, Rating: 9.3},
		{ExternalID: "tt0107290", Title: "Jurassic Park", Year: 1993, Genres: []string{"Adventure", "Sci-Fi"}, Rating: 8.2, Actors: "Sam Neill, Laura Dern"},
		{ExternalID: "tt0387564", Title: "Saw", Year: 2004, Genres: []string{"Horror"}, Rating: 7.6},
		{ExternalID: "tt1213644", Title: "Disaster Movie", Year: 2008, Genres: []string{"Comedy"}, Rating: 1.9},
		{ExternalID: "tt9999001", Title: "Unseen Footage", Genres: nil, Rating: -1},
	}
	for _, movie := range movies {
		mustUpsert(t, store, movie)
	}
}

func TestListFilters(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	seedLibrary(t, store)
	ctx := context.Background()

	cases := []struct {
		name   string
		filter library.Filter
		want   []string
	}{
		{
			name:   "sort by title",
			filter: library.Filter{Sort: "title"},
			want:   []string{"Disaster Movie", "Inception", "Jurassic Park", "Saw", "The Shawshank Redemption", "Unseen Footage"},
		},
		{
			name:   "by genre bucket",
			filter: library.Filter{GenreBucket: classify.BucketActionAdventure, Sort: "year"},
			want:   []string{"Jurassic Park", "Inception"},
		},
		{
			name:   "by rating tier",
			filter: library.Filter{RatingTier: classify.TierHigh, Sort: "-rating"},
			want:   []string{"The Shawshank Redemption", "Inception", "Jurassic Park", "Saw"},
		},
		{
			name:   "by year range",
			filter: library.Filter{YearFrom: 1990, YearTo: 1999, Sort: "year"},
			want:   []string{"Jurassic Park", "The Shawshank Redemption"},
		},
		{
			name:   "combined",
			filter: library.Filter{GenreBucket: classify.BucketActionAdventure, YearFrom: 2000, Sort: "title"},
			want:   []string{"Inception"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := store.List(ctx, tc.filter)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			var titles []string
			for _, record := range records {
				titles = append(titles, record.Movie.Title)
			}
			if len(titles) != len(tc.want) {
				t.Fatalf("got %v, want %v", titles, tc.want)
			}
			for i := range titles {
				if titles[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", titles, tc.want)
				}
			}
		})
	}
}

func TestListQueryMatchesAcrossFields(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	seedLibrary(t, store)
	ctx := context.Background()

	cases := []struct {
		name   string
		filter library.Filter
		want   []string
	}{
		{
			name:   "title substring case insensitive",
			filter: library.Filter{Query: "park", Sort: "title"},
			want:   []string{"Jurassic Park"},
		},
		{
			name:   "genre text",
			filter: library.Filter{Query: "Sci-Fi", Sort: "year"},
			want:   []string{"Jurassic Park", "Inception"},
		},
		{
			name:   "director",
			filter: library.Filter{Query: "Nolan", Sort: "title"},
			want:   []string{"Inception"},
		},
		{
			name:   "actors",
			filter: library.Filter{Query: "Laura Dern", Sort: "title"},
			want:   []string{"Jurassic Park"},
		},
		{
			name:   "query combined with tier",
			filter: library.Filter{Query: "Sci-Fi", RatingTier: classify.TierHigh, Sort: "-rating"},
			want:   []string{"Inception", "Jurassic Park"},
		},
		{
			name:   "no match",
			filter: library.Filter{Query: "Nonexistent Title"},
			want:   nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := store.List(ctx, tc.filter)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			var titles []string
			for _, record := range records {
				titles = append(titles, record.Movie.Title)
			}
			if len(titles) != len(tc.want) {
				t.Fatalf("got %v, want %v", titles, tc.want)
			}
			for i := range titles {
				if titles[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", titles, tc.want)
				}
			}
		})
	}
}

func TestListRejectsInvalidFilters(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	cases := []struct {
		name   string
		filter library.Filter
	}{
		{"unknown bucket", library.Filter{GenreBucket: "Telenovela"}},
		{"unknown tier", library.Filter{RatingTier: "Stellar"}},
		{"inverted years", library.Filter{YearFrom: 2020, YearTo: 1990}},
		{"negative year", library.Filter{YearFrom: -5}},
		{"unsafe sort", library.Filter{Sort: "length(title)"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.List(ctx, tc.filter); !errors.Is(err, services.ErrInvalidQuery) {
				t.Fatalf("expected invalid query error, got %v", err)
			}
		})
	}
}

func TestRemoveAndClear(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	seedLibrary(t, store)
	ctx := context.Background()

	removed, err := store.Remove(ctx, "tt1375666")
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, err = store.Remove(ctx, "tt1375666")
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cleared != 5 {
		t.Fatalf("expected 5 cleared rows, got %d", cleared)
	}
}

package omdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marquee/internal/metadata/omdb"
	"marquee/internal/services"
)

const foundPayload = `{
	"Title": "Inception",
	"Year": "2010",
	"Runtime": "148 min",
	"Genre": "Action, Adventure, Sci-Fi",
	"Director": "Christopher Nolan",
	"Actors": "Leonardo DiCaprio, Joseph Gordon-Levitt",
	"Plot": "A thief who steals corporate secrets...",
	"Poster": "https://example.com/inception.jpg",
	"imdbRating": "8.8",
	"imdbID": "tt1375666",
	"Response": "True"
}`

func newClient(t *testing.T, handler http.HandlerFunc) *omdb.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := omdb.New("test-key", server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestLookupNormalizesFields(t *testing.T) {
	var gotQuery map[string]string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"apikey": r.URL.Query().Get("apikey"),
			"t":      r.URL.Query().Get("t"),
			"type":   r.URL.Query().Get("type"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(foundPayload))
	})

	movie, err := client.Lookup(context.Background(), "  Inception  ")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if gotQuery["apikey"] != "test-key" || gotQuery["t"] != "Inception" || gotQuery["type"] != "movie" {
		t.Fatalf("unexpected query params %v", gotQuery)
	}
	if movie.ExternalID != "tt1375666" {
		t.Fatalf("external id = %q", movie.ExternalID)
	}
	if movie.Year != 2010 {
		t.Fatalf("year = %d", movie.Year)
	}
	if movie.RuntimeMinutes != 148 {
		t.Fatalf("runtime = %d", movie.RuntimeMinutes)
	}
	if movie.Rating != 8.8 {
		t.Fatalf("rating = %v", movie.Rating)
	}
	if len(movie.Genres) != 3 || movie.Genres[0] != "Action" {
		t.Fatalf("genres = %v", movie.Genres)
	}
}

func TestLookupHandlesAbsentFields(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"Title": "Obscure Short",
			"Year": "N/A",
			"Runtime": "N/A",
			"Genre": "N/A",
			"imdbRating": "N/A",
			"imdbID": "tt9999001",
			"Response": "True"
		}`))
	})

	movie, err := client.Lookup(context.Background(), "Obscure Short")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if movie.Year != 0 || movie.RuntimeMinutes != 0 || len(movie.Genres) != 0 {
		t.Fatalf("absent fields not normalized: %+v", movie)
	}
	if movie.HasRating() {
		t.Fatalf("expected absent rating, got %v", movie.Rating)
	}
}

func TestLookupParsesYearRange(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"Title": "Example",
			"Year": "2010–2012",
			"imdbID": "tt0000001",
			"Response": "True"
		}`))
	})

	movie, err := client.Lookup(context.Background(), "Example")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if movie.Year != 2010 {
		t.Fatalf("year = %d, want 2010", movie.Year)
	}
}

func TestLookupEmptyTitleFailsFast(t *testing.T) {
	requested := false
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		requested = true
	})

	_, err := client.Lookup(context.Background(), "   ")
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if requested {
		t.Fatal("empty title must not reach the provider")
	}
}

func TestLookupNotFound(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response": "False", "Error": "Movie not found!"}`))
	})

	_, err := client.Lookup(context.Background(), "NoSuchTitle12345")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookupTransientFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "slow down", http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>not json</html>"))
			},
		},
		{
			name: "missing imdb id",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"Title": "Broken", "Response": "True"}`))
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newClient(t, tc.handler)
			_, err := client.Lookup(context.Background(), "Anything")
			if !errors.Is(err, services.ErrTransient) {
				t.Fatalf("expected transient error, got %v", err)
			}
		})
	}
}

func TestNewValidatesArguments(t *testing.T) {
	if _, err := omdb.New("", "https://example.com"); err == nil {
		t.Fatal("expected error for empty api key")
	}
	if _, err := omdb.New("key", "  "); err == nil {
		t.Fatal("expected error for empty base url")
	}
}

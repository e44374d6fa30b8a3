package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"marquee/internal/library"
	"marquee/internal/services"
	"marquee/internal/testsupport"
)

type scriptedSearcher struct {
	// responses maps a title to the sequence of outcomes successive lookups
	// should produce. Once the sequence is exhausted the last entry repeats.
	responses map[string][]lookupResult
	calls     map[string]int
}

type lookupResult struct {
	movie *library.Movie
	err   error
}

func newScriptedSearcher() *scriptedSearcher {
	return &scriptedSearcher{
		responses: make(map[string][]lookupResult),
		calls:     make(map[string]int),
	}
}

func (s *scriptedSearcher) script(title string, results ...lookupResult) {
	s.responses[title] = results
}

func (s *scriptedSearcher) Lookup(_ context.Context, title string) (*library.Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrInvalidInput, "omdb", "lookup", "empty title", nil)
	}
	s.calls[title]++
	sequence, ok := s.responses[title]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "omdb", "lookup", fmt.Sprintf("no match for %q", title), nil)
	}
	idx := s.calls[title] - 1
	if idx >= len(sequence) {
		idx = len(sequence) - 1
	}
	return sequence[idx].movie, sequence[idx].err
}

func foundMovie(id, title string, year int, rating float64, genres ...string) lookupResult {
	return lookupResult{movie: &library.Movie{
		ExternalID: id,
		Title:      title,
		Year:       year,
		Rating:     rating,
		Genres:     genres,
	}}
}

func transientFailure() lookupResult {
	return lookupResult{err: services.Wrap(services.ErrTransient, "omdb", "lookup", "status 500", nil)}
}

func newTestPipeline(t *testing.T, searcher *scriptedSearcher) (*Pipeline, *library.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return New(searcher, store, nil, nil, PolicyFromConfig(cfg)), store
}

func TestRunMixedBatch(t *testing.T) {
	searcher := newScriptedSearcher()
	searcher.script("Inception", foundMovie("tt1375666", "Inception", 2010, 8.8, "Action", "Sci-Fi"))
	pipeline, store := newTestPipeline(t, searcher)

	titles := []string{"Inception", "", "NoSuchTitle12345"}
	result, err := pipeline.Run(context.Background(), titles)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.TotalRequested != 3 {
		t.Fatalf("expected 3 requested, got %d", result.TotalRequested)
	}
	if len(result.Succeeded) != 1 || len(result.Failed) != 2 {
		t.Fatalf("expected 1 succeeded and 2 failed, got %d and %d", len(result.Succeeded), len(result.Failed))
	}
	if got := len(result.Succeeded) + len(result.Failed); got != result.TotalRequested {
		t.Fatalf("succeeded+failed = %d, want %d", got, result.TotalRequested)
	}

	if result.Succeeded[0].Record.Labels.GenreBucket != "Action & Adventure" {
		t.Fatalf("unexpected genre bucket %q", result.Succeeded[0].Record.Labels.GenreBucket)
	}
	if result.Failed[0].Reason != services.ReasonInvalidInput {
		t.Fatalf("empty title should fail as invalid_input, got %s", result.Failed[0].Reason)
	}
	if result.Failed[1].Reason != services.ReasonNotFound {
		t.Fatalf("unknown title should fail as not_found, got %s", result.Failed[1].Reason)
	}

	stored, err := store.GetByExternalID(context.Background(), "tt1375666")
	if err != nil {
		t.Fatalf("stored record missing: %v", err)
	}
	if stored.Movie.Title != "Inception" {
		t.Fatalf("unexpected stored title %q", stored.Movie.Title)
	}
}

func TestRunRetriesTransientFailures(t *testing.T) {
	searcher := newScriptedSearcher()
	searcher.script("Inception",
		transientFailure(),
		transientFailure(),
		foundMovie("tt1375666", "Inception", 2010, 8.8, "Action"),
	)
	pipeline, _ := newTestPipeline(t, searcher)
	pipeline.policy.RetryLimit = 2

	result, err := pipeline.Run(context.Background(), []string{"Inception"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Succeeded) != 1 {
		t.Fatalf("expected success after retries, got %d failures", len(result.Failed))
	}
	if searcher.calls["Inception"] != 3 {
		t.Fatalf("expected 3 lookup attempts, got %d", searcher.calls["Inception"])
	}
}

func TestRunRetriesUnclassifiedFailures(t *testing.T) {
	searcher := newScriptedSearcher()
	searcher.script("Inception",
		lookupResult{err: errors.New("connection reset by peer")},
		foundMovie("tt1375666", "Inception", 2010, 8.8, "Action"),
	)
	pipeline, _ := newTestPipeline(t, searcher)
	pipeline.policy.RetryLimit = 1

	result, err := pipeline.Run(context.Background(), []string{"Inception"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Succeeded) != 1 {
		t.Fatalf("bare errors should be retried as transient, got %+v", result.Failed)
	}
	if searcher.calls["Inception"] != 2 {
		t.Fatalf("expected 2 lookup attempts, got %d", searcher.calls["Inception"])
	}
}

func TestRunExhaustsRetries(t *testing.T) {
	searcher := newScriptedSearcher()
	searcher.script("Inception", transientFailure())
	pipeline, _ := newTestPipeline(t, searcher)
	pipeline.policy.RetryLimit = 2

	result, err := pipeline.Run(context.Background(), []string{"Inception"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Failed) != 1 || result.Failed[0].Reason != services.ReasonTransient {
		t.Fatalf("expected one transient failure, got %+v", result.Failed)
	}
	if searcher.calls["Inception"] != 3 {
		t.Fatalf("expected 3 lookup attempts, got %d", searcher.calls["Inception"])
	}
}

func TestRunDoesNotRetryNotFound(t *testing.T) {
	searcher := newScriptedSearcher()
	pipeline, _ := newTestPipeline(t, searcher)
	pipeline.policy.RetryLimit = 5

	result, err := pipeline.Run(context.Background(), []string{"NoSuchTitle12345"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Failed) != 1 || result.Failed[0].Reason != services.ReasonNotFound {
		t.Fatalf("expected one not_found failure, got %+v", result.Failed)
	}
	if searcher.calls["NoSuchTitle12345"] != 1 {
		t.Fatalf("not_found should not be retried, got %d attempts", searcher.calls["NoSuchTitle12345"])
	}
}

func TestRunPreservesInputOrder(t *testing.T) {
	searcher := newScriptedSearcher()
	searcher.script("Alpha", foundMovie("tt0000001", "Alpha", 2001, 7.0, "Drama"))
	searcher.script("Beta", foundMovie("tt0000002", "Beta", 2002, 7.1, "Drama"))
	searcher.script("Gamma", foundMovie("tt0000003", "Gamma", 2003, 7.2, "Drama"))
	pipeline, _ := newTestPipeline(t, searcher)

	result, err := pipeline.Run(context.Background(), []string{"Alpha", "Beta", "Gamma"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"Alpha", "Beta", "Gamma"}
	for i, entry := range result.Succeeded {
		if entry.Title != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, entry.Title, want[i])
		}
	}
}

func TestRunAbortsAfterConsecutiveStorageFailures(t *testing.T) {
	searcher := newScriptedSearcher()
	titles := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		title := fmt.Sprintf("Movie %d", i)
		titles = append(titles, title)
		searcher.script(title, foundMovie(fmt.Sprintf("tt000010%d", i), title, 2000+i, 6.0, "Drama"))
	}
	pipeline, store := newTestPipeline(t, searcher)
	pipeline.policy.MaxStorageFailures = 3

	// Closing the store underneath the pipeline makes every upsert fail.
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	result, err := pipeline.Run(context.Background(), titles)
	if !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected storage abort, got %v", err)
	}
	if len(result.Failed) != 3 {
		t.Fatalf("expected 3 attempted failures before abort, got %d", len(result.Failed))
	}
	if result.TotalRequested != 3 {
		t.Fatalf("aborted run should count attempted items only, got %d", result.TotalRequested)
	}
	if got := len(result.Succeeded) + len(result.Failed); got != result.TotalRequested {
		t.Fatalf("succeeded+failed = %d, want %d", got, result.TotalRequested)
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	searcher := newScriptedSearcher()
	searcher.script("Alpha", foundMovie("tt0000001", "Alpha", 2001, 7.0, "Drama"))
	pipeline, _ := newTestPipeline(t, searcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := pipeline.Run(ctx, []string{"Alpha", "Beta"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.TotalRequested != 0 {
		t.Fatalf("canceled before first item should report 0 attempted, got %d", result.TotalRequested)
	}
}

func TestSuccessRate(t *testing.T) {
	result := &Result{TotalRequested: 4}
	result.Succeeded = []Entry{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	result.Failed = []Failure{{Title: "d"}}
	if got := result.SuccessRate(); got != 75.0 {
		t.Fatalf("expected 75.0, got %v", got)
	}

	empty := &Result{}
	if got := empty.SuccessRate(); got != 0 {
		t.Fatalf("empty run should report 0, got %v", got)
	}
}

package testsupport

import (
	"testing"

	"marquee/internal/config"
	"marquee/internal/library"
)

// MustOpenStore opens a library store for the provided config and registers
// cleanup with the test.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

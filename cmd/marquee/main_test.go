package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/classify"
	"marquee/internal/library"
	"marquee/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	baseDir    string
}

// setupCLITestEnv writes a config file pointing at temp directories so CLI
// invocations never touch the user's real library.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[omdb]
api_key = "test"

[batch]
retry_delay_ms = 0
item_delay_ms = 0
`, filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{configPath: configPath, baseDir: base}
}

func (env *cliTestEnv) seedLibrary(t *testing.T) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.DataDir = filepath.Join(env.baseDir, "data")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)

	movies := []*library.Movie{
		{ExternalID: "tt1375666", Title: "Inception", Year: 2010, Genres: []string{"Action", "Sci-Fi"}, Rating: 8.8},
		{ExternalID: "tt0111161", Title: "The Shawshank Redemption", Year: 1994, Genres: []string{"Drama"}, Rating: 9.3},
	}
	for _, movie := range movies {
		labels := classify.Classify(movie.Genres, movie.Rating, movie.Year)
		if _, err := store.Upsert(context.Background(), movie, labels); err != nil {
			t.Fatalf("seed %s: %v", movie.Title, err)
		}
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func TestCLIListAndStats(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedLibrary(t)

	out, _, err := runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "Inception")
	requireContains(t, out, "The Shawshank Redemption")
	requireContains(t, out, "2 movie(s)")

	out, _, err = runCLI(t, []string{"list", "--genre-bucket", "Drama & Romance"}, env.configPath)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	requireContains(t, out, "The Shawshank Redemption")
	if strings.Contains(out, "Inception") {
		t.Fatalf("filtered list should not contain Inception:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"list", "--query", "shawshank"}, env.configPath)
	if err != nil {
		t.Fatalf("searched list: %v", err)
	}
	requireContains(t, out, "The Shawshank Redemption")
	if strings.Contains(out, "Inception") {
		t.Fatalf("searched list should not contain Inception:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "Movies:  2 total, 2 rated")
}

func TestCLIListRejectsInvalidFilter(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedLibrary(t)

	_, _, err := runCLI(t, []string{"list", "--genre-bucket", "Nonsense"}, env.configPath)
	if err == nil {
		t.Fatal("expected invalid filter error")
	}
}

func TestCLIRemoveAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedLibrary(t)

	out, _, err := runCLI(t, []string{"remove", "tt1375666"}, env.configPath)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	requireContains(t, out, "Removed tt1375666")

	_, _, err = runCLI(t, []string{"clear"}, env.configPath)
	if err == nil {
		t.Fatal("clear without --force should fail")
	}

	out, _, err = runCLI(t, []string{"clear", "--force"}, env.configPath)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	requireContains(t, out, "Removed 1 movie(s)")
}

func TestCLIExportJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedLibrary(t)

	out, _, err := runCLI(t, []string{"export", "--format", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "tt1375666")
}

func TestCLIWatchlistLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedLibrary(t)

	out, _, err := runCLI(t, []string{"watchlist", "create", "Weekend", "-d", "Saturday picks"}, env.configPath)
	if err != nil {
		t.Fatalf("watchlist create: %v", err)
	}
	requireContains(t, out, "Created watchlist \"Weekend\"")

	out, _, err = runCLI(t, []string{"watchlist", "add", "1", "tt1375666"}, env.configPath)
	if err != nil {
		t.Fatalf("watchlist add: %v", err)
	}
	requireContains(t, out, "Added tt1375666")

	out, _, err = runCLI(t, []string{"watchlist", "show", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("watchlist show: %v", err)
	}
	requireContains(t, out, "Weekend")
	requireContains(t, out, "Inception")
}

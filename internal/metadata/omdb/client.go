package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marquee/internal/library"
	"marquee/internal/services"
)

// response models the OMDb title lookup payload. OMDb reports absent fields
// as the literal string "N/A".
type response struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	ImdbRating string `json:"imdbRating"`
	Runtime    string `json:"Runtime"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	ImdbID     string `json:"imdbID"`
}

// Searcher defines the lookup operation the pipeline and server consume.
type Searcher interface {
	Lookup(ctx context.Context, title string) (*library.Movie, error)
}

// Client provides access to the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds each lookup request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup fetches metadata for a movie title. The provider's `t=` endpoint
// returns its best-ranked match, so ambiguous titles resolve without any
// interactive disambiguation. Empty titles fail fast with ErrInvalidInput
// before any request is made; a definitive provider no-match maps to
// ErrNotFound; network failures, non-2xx statuses, and malformed payloads
// map to ErrTransient.
func (c *Client) Lookup(ctx context.Context, title string) (*library.Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrInvalidInput, "omdb", "lookup", "title must not be empty", nil)
	}

	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "omdb", "lookup", "parse base url", err)
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", title)
	params.Set("type", "movie")
	params.Set("plot", "short")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "omdb", "lookup", "build request", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "omdb", "lookup", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, services.Wrap(services.ErrTransient, "omdb", "lookup", fmt.Sprintf("omdb returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "omdb", "lookup", "decode response", err)
	}

	if !strings.EqualFold(payload.Response, "True") {
		return nil, services.Wrap(services.ErrNotFound, "omdb", "lookup", fmt.Sprintf("no match for %q", title), nil)
	}
	if strings.TrimSpace(payload.ImdbID) == "" {
		return nil, services.Wrap(services.ErrTransient, "omdb", "lookup", "response missing imdb id", nil)
	}

	return normalize(&payload), nil
}

func normalize(payload *response) *library.Movie {
	title := omdbString(payload.Title)
	return &library.Movie{
		ExternalID:     strings.TrimSpace(payload.ImdbID),
		Title:          title,
		Year:           parseYear(payload.Year),
		Genres:         splitGenres(payload.Genre),
		Rating:         parseRating(payload.ImdbRating),
		RuntimeMinutes: parseRuntime(payload.Runtime),
		Director:       omdbString(payload.Director),
		Actors:         omdbString(payload.Actors),
		Plot:           omdbString(payload.Plot),
		PosterURL:      omdbString(payload.Poster),
	}
}

// omdbString maps the provider's "N/A" placeholder to an empty string.
func omdbString(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

// parseYear extracts the leading year from values like "2010" or the range
// form "2010–2012" used for series re-releases.
func parseYear(value string) int {
	value = omdbString(value)
	if value == "" {
		return 0
	}
	digits := value
	for i, r := range value {
		if r < '0' || r > '9' {
			digits = value[:i]
			break
		}
	}
	year, err := strconv.Atoi(digits)
	if err != nil || year <= 0 {
		return 0
	}
	return year
}

// parseRating converts "8.8" to a float; absent ratings become the negative
// sentinel.
func parseRating(value string) float64 {
	value = omdbString(value)
	if value == "" {
		return -1
	}
	rating, err := strconv.ParseFloat(value, 64)
	if err != nil || rating < 0 || rating > 10 {
		return -1
	}
	return rating
}

// parseRuntime converts "148 min" to minutes.
func parseRuntime(value string) int {
	value = omdbString(value)
	if value == "" {
		return 0
	}
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil || minutes <= 0 {
		return 0
	}
	return minutes
}

// splitGenres converts "Action, Adventure, Sci-Fi" to a slice.
func splitGenres(value string) []string {
	value = omdbString(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	genres := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			genres = append(genres, trimmed)
		}
	}
	return genres
}

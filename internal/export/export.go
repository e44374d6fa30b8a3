// Package export renders library records as CSV or JSON documents for use
// outside the application.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"marquee/internal/library"
	"marquee/internal/services"
)

// Format identifies an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", services.Wrap(services.ErrInvalidInput, "export", "parse format",
			"unsupported format "+name, nil)
	}
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Filename returns the default download name for the format.
func (f Format) Filename() string {
	return "movie_library." + string(f)
}

// Write encodes records in the chosen format.
func Write(w io.Writer, format Format, records []*library.Record) error {
	if format == FormatCSV {
		return WriteCSV(w, records)
	}
	return WriteJSON(w, records)
}

var csvHeader = []string{
	"external_id", "title", "year", "genres", "rating",
	"genre_bucket", "rating_tier", "era_bucket",
	"director", "runtime_minutes", "added",
}

// WriteCSV emits one row per record. Absent years and ratings render as
// empty cells rather than sentinel values.
func WriteCSV(w io.Writer, records []*library.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return services.Wrap(services.ErrStorage, "export", "write csv", "write header", err)
	}
	for _, record := range records {
		movie := record.Movie
		year := ""
		if movie.Year > 0 {
			year = strconv.Itoa(movie.Year)
		}
		rating := ""
		if movie.HasRating() {
			rating = strconv.FormatFloat(movie.Rating, 'f', 1, 64)
		}
		runtime := ""
		if movie.RuntimeMinutes > 0 {
			runtime = strconv.Itoa(movie.RuntimeMinutes)
		}
		added := ""
		if !movie.CreatedAt.IsZero() {
			added = movie.CreatedAt.UTC().Format("2006-01-02")
		}
		row := []string{
			movie.ExternalID,
			movie.Title,
			year,
			strings.Join(movie.Genres, ", "),
			rating,
			record.Labels.GenreBucket,
			record.Labels.RatingTier,
			record.Labels.EraBucket,
			movie.Director,
			runtime,
			added,
		}
		if err := writer.Write(row); err != nil {
			return services.Wrap(services.ErrStorage, "export", "write csv", movie.ExternalID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return services.Wrap(services.ErrStorage, "export", "write csv", "flush", err)
	}
	return nil
}

// WriteJSON emits the full record set as an indented JSON array.
func WriteJSON(w io.Writer, records []*library.Record) error {
	if records == nil {
		records = []*library.Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return services.Wrap(services.ErrStorage, "export", "write json", "encode records", err)
	}
	return nil
}

// WriteStatsJSON emits aggregated library statistics as indented JSON.
func WriteStatsJSON(w io.Writer, stats *library.LibraryStats) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(stats); err != nil {
		return services.Wrap(services.ErrStorage, "export", "write stats", "encode stats", err)
	}
	return nil
}

package batch

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"marquee/internal/services"
)

// jsonKeys are the object keys checked, in order, when a JSON title file
// holds an object rather than a bare array.
var jsonKeys = []string{"movies", "titles", "items"}

// ReadTitles loads movie titles from a file. The format is derived from the
// extension: .txt holds one title per line, .csv takes the first column of
// every row, .json holds either an array of strings or an object with a
// movies, titles, or items array.
func ReadTitles(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "batch", "read titles", "open input file", err)
	}
	defer file.Close()

	titles, err := ParseTitles(file, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// ParseTitles decodes a title list from r using the given file extension to
// pick the format.
func ParseTitles(r io.Reader, ext string) ([]string, error) {
	switch strings.ToLower(ext) {
	case ".txt", "":
		return parseText(r)
	case ".csv":
		return parseCSV(r)
	case ".json":
		return parseJSON(r)
	default:
		return nil, services.Wrap(services.ErrInvalidInput, "batch", "parse titles",
			"unsupported file extension "+ext, nil)
	}
}

// CleanTitles trims whitespace and drops empty entries, preserving order.
func CleanTitles(titles []string) []string {
	cleaned := make([]string, 0, len(titles))
	for _, title := range titles {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func parseText(r io.Reader) ([]string, error) {
	var titles []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			titles = append(titles, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "batch", "parse titles", "read text input", err)
	}
	return titles, nil
}

func parseCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	var titles []string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrInvalidInput, "batch", "parse titles", "read csv input", err)
		}
		if len(row) == 0 {
			continue
		}
		if title := strings.TrimSpace(row[0]); title != "" {
			titles = append(titles, title)
		}
	}
	return titles, nil
}

func parseJSON(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "batch", "parse titles", "read json input", err)
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return CleanTitles(list), nil
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "batch", "parse titles", "decode json input", err)
	}
	for _, key := range jsonKeys {
		raw, ok := object[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, services.Wrap(services.ErrInvalidInput, "batch", "parse titles",
				"decode json key "+key, err)
		}
		return CleanTitles(list), nil
	}
	return nil, services.Wrap(services.ErrInvalidInput, "batch", "parse titles",
		"json input has no movies, titles, or items array", nil)
}

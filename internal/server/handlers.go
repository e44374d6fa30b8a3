package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"marquee/internal/batch"
	"marquee/internal/classify"
	"marquee/internal/export"
	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/services"
)

// maxUploadBytes bounds multipart batch uploads.
const maxUploadBytes = 4 << 20

type healthResponse struct {
	Status string `json:"status"`
	Movies int    `json:"movies"`
}

type batchRequest struct {
	Titles []string `json:"titles"`
}

type batchResponse struct {
	Result  *batch.Result `json:"result"`
	Aborted string        `json:"aborted,omitempty"`
}

type listResponse struct {
	Movies []*library.Record `json:"movies"`
	Total  int               `json:"total"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Movies: count})
}

// handleSearch looks up one title, classifies it, and stores the result.
// The persisted record is returned so a search from the API leaves the same
// trace a CLI search does.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		s.metrics.lookups.WithLabelValues("invalid_input").Inc()
		s.writeError(w, http.StatusBadRequest, "title query parameter is required")
		return
	}

	movie, err := s.searcher.Lookup(r.Context(), title)
	if err != nil {
		s.metrics.lookups.WithLabelValues(string(services.FailureReason(err))).Inc()
		s.writeServiceError(w, err)
		return
	}

	labels := classify.Classify(movie.Genres, movie.Rating, movie.Year)
	record, err := s.store.Upsert(r.Context(), movie, labels)
	if err != nil {
		s.metrics.lookups.WithLabelValues(string(services.ReasonStorage)).Inc()
		s.writeServiceError(w, err)
		return
	}
	s.metrics.lookups.WithLabelValues("success").Inc()
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	titles, err := s.batchTitles(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if len(titles) == 0 {
		s.writeError(w, http.StatusBadRequest, "no titles to process")
		return
	}

	s.metrics.batchRuns.Inc()
	result, runErr := s.pipeline.Run(r.Context(), titles)
	s.metrics.batchItems.WithLabelValues("success").Add(float64(len(result.Succeeded)))
	s.metrics.batchItems.WithLabelValues("failure").Add(float64(len(result.Failed)))

	response := batchResponse{Result: result}
	if runErr != nil {
		response.Aborted = runErr.Error()
		s.logger.Warn("batch run aborted",
			logging.String("run_id", result.RunID),
			logging.Error(runErr),
		)
	}
	s.writeJSON(w, http.StatusOK, response)
}

// batchTitles accepts either a JSON body or a multipart file upload. The
// upload's extension picks the parser, same as the CLI's file input.
func (s *Server) batchTitles(r *http.Request) ([]string, error) {
	contentType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "server", "batch", "parse content type", err)
	}

	if contentType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, services.Wrap(services.ErrInvalidInput, "server", "batch", "parse upload", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, services.Wrap(services.ErrInvalidInput, "server", "batch", "file field is required", err)
		}
		defer file.Close()
		return batch.ParseTitles(file, filepath.Ext(header.Filename))
	}

	var request batchRequest
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxUploadBytes))
	if err := decoder.Decode(&request); err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "server", "batch", "decode request body", err)
	}
	return batch.CleanTitles(request.Titles), nil
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listMovies(w, r)
	case http.MethodDelete:
		s.clearMovies(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listMovies(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	records, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, listResponse{Movies: records, Total: len(records)})
}

// clearMovies requires an explicit confirm flag before wiping the library.
func (s *Server) clearMovies(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		s.writeError(w, http.StatusBadRequest, "pass confirm=true to clear the library")
		return
	}
	removed, err := s.store.Clear(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (s *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	externalID := strings.TrimPrefix(r.URL.Path, "/api/movies/")
	if externalID == "" || strings.Contains(externalID, "/") {
		s.writeError(w, http.StatusNotFound, "movie not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, err := s.store.GetByExternalID(r.Context(), externalID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, record)
	case http.MethodDelete:
		removed, err := s.store.Remove(r.Context(), externalID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if !removed {
			s.writeError(w, http.StatusNotFound, "movie not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"removed": externalID})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	format, err := export.ParseFormat(valueOrDefault(r.URL.Query().Get("format"), "json"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	filter, err := filterFromQuery(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	records, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	if err := export.Write(w, format, records); err != nil {
		s.logger.Error("export write failed", logging.Error(err))
	}
}

// filterFromQuery builds a listing filter from query parameters. Validation
// failures surface as invalid query errors so callers get a 422.
func filterFromQuery(r *http.Request) (library.Filter, error) {
	query := r.URL.Query()
	filter := library.Filter{
		Query:       strings.TrimSpace(query.Get("q")),
		GenreBucket: strings.TrimSpace(query.Get("genre_bucket")),
		RatingTier:  strings.TrimSpace(query.Get("rating_tier")),
		Sort:        strings.TrimSpace(query.Get("sort")),
	}
	var err error
	if filter.YearFrom, err = yearParam(query.Get("year_from")); err != nil {
		return library.Filter{}, err
	}
	if filter.YearTo, err = yearParam(query.Get("year_to")); err != nil {
		return library.Filter{}, err
	}
	if err := filter.Validate(); err != nil {
		return library.Filter{}, err
	}
	return filter, nil
}

func yearParam(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return 0, services.Wrap(services.ErrInvalidQuery, "server", "list", "year parameter must be numeric", err)
	}
	return year, nil
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

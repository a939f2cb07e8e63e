// Package chi exposes the query service over HTTP: the find_common_word
// endpoint the original clients call, plus health and metrics.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lexidex/lexidex/internal/domain"
	"github.com/lexidex/lexidex/internal/logger"
	"github.com/lexidex/lexidex/internal/metrics"
	queryuc "github.com/lexidex/lexidex/internal/usecase/query"
)

// TableInfo is what the health endpoint reports about the loaded table.
type TableInfo interface {
	Size() int
	Dimension() int
}

// Server handles the HTTP API.
type Server struct {
	query  *queryuc.Service
	table  TableInfo
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(query *queryuc.Service, table TableInfo, log *zap.Logger) *Server {
	return &Server{query: query, table: table, logger: log}
}

// Handler builds the router with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Post("/find_common_word", s.handleFindCommonWord)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type findCommonWordRequest struct {
	Words []string `json:"words"`
	TopN  *int     `json:"top_n"`
}

type findCommonWordResponse struct {
	InputWords    []string            `json:"input_words"`
	TopNRequested int                 `json:"top_n_requested"`
	CommonWords   []domain.RankedWord `json:"common_words"`
}

func (s *Server) handleFindCommonWord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req findCommonWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
		respondError(w, http.StatusBadRequest, "words must be provided as a non-empty list of strings")
		return
	}
	if req.TopN != nil && *req.TopN <= 0 {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
		respondError(w, http.StatusBadRequest, "top_n must be a positive integer")
		return
	}
	topN := 0
	if req.TopN != nil {
		topN = *req.TopN
	}

	result, err := s.query.FindCommonWords(r.Context(), req.Words, topN)
	metrics.QueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.handleQueryError(w, r, err)
		return
	}

	metrics.QueriesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	respondJSON(w, http.StatusOK, findCommonWordResponse{
		InputWords:    result.InputWords,
		TopNRequested: result.TopNRequested,
		CommonWords:   result.CommonWords,
	})
}

func (s *Server) handleQueryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrVocabularyMiss):
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeVocabularyMiss).Inc()
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNoCandidates):
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeNoCandidates).Inc()
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		logger.FromContext(r.Context()).Error("query failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"vocabulary_size": s.table.Size(),
		"dimensions":      s.table.Dimension(),
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

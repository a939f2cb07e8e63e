// Package query implements the common-words query pipeline: centroid of the
// input words' vectors, then an exact nearest-neighbor scan of the table.
package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lexidex/lexidex/internal/domain"
)

const (
	defaultTopN = 5
	defaultMax  = 100
)

// Service answers common-word queries against a shared immutable table.
// It holds no per-query state and is safe for concurrent callers.
type Service struct {
	table  Table
	deflt  int
	max    int
	logger *zap.Logger
}

// New creates a query service with default result limits.
func New(table Table, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{table: table, deflt: defaultTopN, max: defaultMax, logger: logger}
}

// WithLimits overrides the default and maximum result counts.
func (s *Service) WithLimits(deflt, max int) *Service {
	if deflt > 0 {
		s.deflt = deflt
	}
	if max > 0 {
		s.max = max
	}
	return s
}

// FindCommonWords returns the topN vocabulary words most similar to the
// centroid of the input words' vectors, excluding the input words
// themselves. topN == 0 means the configured default; values above the
// configured maximum are clamped.
func (s *Service) FindCommonWords(ctx context.Context, words []string, topN int) (domain.QueryResult, error) {
	if len(words) == 0 {
		return domain.QueryResult{}, fmt.Errorf("%w: words must be a non-empty list of strings", domain.ErrInvalidInput)
	}
	for _, w := range words {
		if w == "" {
			return domain.QueryResult{}, fmt.Errorf("%w: words must be a non-empty list of strings", domain.ErrInvalidInput)
		}
	}
	if topN < 0 {
		return domain.QueryResult{}, fmt.Errorf("%w: top_n must be a positive integer", domain.ErrInvalidInput)
	}
	if topN == 0 {
		topN = s.deflt
	}
	requested := topN
	if topN > s.max {
		topN = s.max
	}

	cent, err := computeCentroid(s.table, words)
	if err != nil {
		return domain.QueryResult{}, err
	}

	ranked := rankSimilar(s.table, cent.vector, cent.excludeSet(), topN)
	if len(ranked) == 0 {
		return domain.QueryResult{}, domain.ErrNoCandidates
	}

	s.logger.Debug("query served",
		zap.Int("input_words", len(words)),
		zap.Int("resolved", len(cent.found)),
		zap.Int("results", len(ranked)),
	)

	return domain.QueryResult{
		InputWords:    words,
		TopNRequested: requested,
		TopNEffective: topN,
		CommonWords:   ranked,
		MissingWords:  cent.missing,
	}, nil
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query outcome labels.
const (
	OutcomeOK             = "ok"
	OutcomeInvalidInput   = "invalid_input"
	OutcomeVocabularyMiss = "vocabulary_miss"
	OutcomeNoCandidates   = "no_candidates"
	OutcomeError          = "error"
)

var (
	// QueryDuration measures the full query pipeline: centroid + scan.
	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lexidex",
			Name:      "query_duration_seconds",
			Help:      "Common-words query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// QueriesTotal counts queries by outcome.
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexidex",
			Name:      "queries_total",
			Help:      "Total common-words queries by outcome",
		},
		[]string{"outcome"},
	)

	// VocabularySize reports the number of loaded rows.
	VocabularySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lexidex",
			Name:      "vocabulary_size",
			Help:      "Number of words in the loaded vector table",
		},
	)

	// VectorDimensions reports the loaded table's dimension.
	VectorDimensions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lexidex",
			Name:      "vector_dimensions",
			Help:      "Dimension of the loaded vector table",
		},
	)

	// LoadSkippedLines reports malformed lines skipped during the load.
	LoadSkippedLines = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lexidex",
			Name:      "load_skipped_lines",
			Help:      "Malformed lines skipped while loading the vector table",
		},
	)
)

// RegisterQueryMetrics registers query and load metrics explicitly (no init()).
func RegisterQueryMetrics() {
	prometheus.MustRegister(
		QueryDuration,
		QueriesTotal,
		VocabularySize,
		VectorDimensions,
		LoadSkippedLines,
	)
}

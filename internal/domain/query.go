package domain

// RankedWord is a single nearest-neighbor hit: a vocabulary word and its
// cosine similarity to the query centroid.
type RankedWord struct {
	Word            string  `json:"word"`
	SimilarityScore float64 `json:"similarity_score"`
}

// QueryResult is the outcome of a common-words query.
type QueryResult struct {
	// InputWords echoes the request word list verbatim.
	InputWords []string
	// TopNRequested echoes the requested result count (after defaulting).
	TopNRequested int
	// TopNEffective is the count actually used after clamping to the
	// configured maximum and the number of eligible candidates.
	TopNEffective int
	// CommonWords is sorted by descending similarity; equal scores keep
	// table order.
	CommonWords []RankedWord
	// MissingWords lists input words that did not resolve to a vocabulary
	// entry, in request order.
	MissingWords []string
}

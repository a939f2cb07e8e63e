package query

import (
	"container/heap"
	"math"
	"sort"

	"github.com/lexidex/lexidex/internal/domain"
)

type candidate struct {
	row   int
	score float64
}

// topKHeap is a bounded min-heap ordered worst-first: the root is the
// current weakest candidate. Among equal scores the higher row index is
// weaker, so on a full heap a later row can never displace an equal-scoring
// earlier one.
type topKHeap []candidate

func (h topKHeap) Len() int { return len(h) }

func (h topKHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].row > h[j].row
}

func (h topKHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *topKHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *topKHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// rankSimilar scans every table row and returns the topN most similar to
// query by cosine similarity, sorted by descending score with equal scores
// in table order. Rows in exclude and zero-norm rows are skipped. The
// result is shorter than topN when fewer rows are eligible.
//
// This is the hot path: one pass over N rows with a K-bounded heap, no
// full-table score buffer.
func rankSimilar(t Table, query []float64, exclude map[int]struct{}, topN int) []domain.RankedWord {
	if topN <= 0 {
		return nil
	}
	var qsum float64
	for _, q := range query {
		qsum += q * q
	}
	qnorm := math.Sqrt(qsum)
	if qnorm == 0 {
		return nil
	}

	h := make(topKHeap, 0, topN)
	size := t.Size()
	for row := 0; row < size; row++ {
		if _, skip := exclude[row]; skip {
			continue
		}
		rnorm := t.NormAt(row)
		if rnorm == 0 {
			continue
		}
		vec := t.VectorAt(row)
		var dot float64
		for d, q := range query {
			dot += q * float64(vec[d])
		}
		score := dot / (qnorm * rnorm)

		if len(h) < topN {
			heap.Push(&h, candidate{row: row, score: score})
			continue
		}
		// Rows arrive in ascending order, so an equal score never evicts:
		// the earlier row keeps its seat and the tie-break holds.
		if score <= h[0].score {
			continue
		}
		h[0] = candidate{row: row, score: score}
		heap.Fix(&h, 0)
	}

	sort.Slice(h, func(i, j int) bool {
		if h[i].score != h[j].score {
			return h[i].score > h[j].score
		}
		return h[i].row < h[j].row
	})

	out := make([]domain.RankedWord, len(h))
	for i, c := range h {
		out[i] = domain.RankedWord{Word: t.WordAt(c.row), SimilarityScore: c.score}
	}
	return out
}

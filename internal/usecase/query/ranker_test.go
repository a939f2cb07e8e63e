package query

import (
	"math"
	"testing"
)

func TestRankSimilar_SortedDescending(t *testing.T) {
	ft := newFakeTable(
		[]string{"east", "north", "northeast", "far"},
		[][]float32{
			{1, 0},
			{0, 1},
			{1, 1},
			{-1, -1},
		},
	)
	query := []float64{2, 1}

	got := rankSimilar(ft, query, nil, 4)
	if len(got) != 4 {
		t.Fatalf("expected 4 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].SimilarityScore > got[i-1].SimilarityScore {
			t.Errorf("scores not non-increasing at %d: %v", i, got)
		}
	}
	for _, r := range got {
		row, _ := ft.RowOf(r.Word)
		want := cosine(query, ft.VectorAt(row))
		if math.Abs(r.SimilarityScore-want) > 1e-12 {
			t.Errorf("%s: score %v, independent recomputation %v", r.Word, r.SimilarityScore, want)
		}
	}
}

func TestRankSimilar_TieBreakByRowOrder(t *testing.T) {
	// Colinear vectors of different lengths have exactly equal cosine
	// similarity, so ordering must come from the table order.
	ft := newFakeTable(
		[]string{"first", "second", "third", "off"},
		[][]float32{
			{1, 0},
			{2, 0},
			{4, 0},
			{0, 1},
		},
	)
	query := []float64{3, 0}

	got := rankSimilar(ft, query, nil, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	wantOrder := []string{"first", "second", "third"}
	for i, w := range wantOrder {
		if got[i].Word != w {
			t.Fatalf("tie-break broken: got %v", got)
		}
	}

	// With a full selection, a later equal-scoring row must not displace an
	// earlier one.
	got = rankSimilar(ft, query, nil, 1)
	if len(got) != 1 || got[0].Word != "first" {
		t.Errorf("expected lowest row to win the tie, got %v", got)
	}
}

func TestRankSimilar_ExcludesRows(t *testing.T) {
	ft := newFakeTable(
		[]string{"a", "b", "c"},
		[][]float32{{1, 0}, {1, 0.1}, {0, 1}},
	)
	exclude := map[int]struct{}{0: {}}

	got := rankSimilar(ft, []float64{1, 0}, exclude, 3)
	for _, r := range got {
		if r.Word == "a" {
			t.Fatalf("excluded word ranked: %v", got)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}

func TestRankSimilar_SkipsZeroNormRows(t *testing.T) {
	ft := newFakeTable(
		[]string{"zero", "real"},
		[][]float32{{0, 0}, {1, 1}},
	)

	got := rankSimilar(ft, []float64{1, 1}, nil, 5)
	if len(got) != 1 || got[0].Word != "real" {
		t.Fatalf("zero-norm row should be skipped, got %v", got)
	}
	if math.IsNaN(got[0].SimilarityScore) {
		t.Error("unexpected NaN score")
	}
}

func TestRankSimilar_TopNLargerThanEligible(t *testing.T) {
	ft := newFakeTable(
		[]string{"a", "b"},
		[][]float32{{1, 0}, {0, 1}},
	)

	got := rankSimilar(ft, []float64{1, 1}, nil, 100)
	if len(got) != 2 {
		t.Errorf("expected all eligible rows, got %d", len(got))
	}
}

func TestRankSimilar_ZeroQueryVector(t *testing.T) {
	ft := newFakeTable([]string{"a"}, [][]float32{{1, 0}})

	if got := rankSimilar(ft, []float64{0, 0}, nil, 5); got != nil {
		t.Errorf("zero centroid should rank nothing, got %v", got)
	}
}

func TestRankSimilar_BoundedByTopN(t *testing.T) {
	words := make([]string, 50)
	vecs := make([][]float32, 50)
	for i := range words {
		words[i] = string(rune('a' + i%26))
		// All distinct directions.
		vecs[i] = []float32{float32(i + 1), float32(50 - i)}
	}
	ft := newFakeTable(words, vecs)

	got := rankSimilar(ft, []float64{1, 1}, nil, 7)
	if len(got) != 7 {
		t.Errorf("expected exactly topN results, got %d", len(got))
	}
}

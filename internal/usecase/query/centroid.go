package query

import (
	"fmt"

	"github.com/lexidex/lexidex/internal/domain"
)

// centroid is the component-wise mean of the resolved input words' vectors,
// plus the found/missing partition of the input.
type centroid struct {
	vector []float64
	// rows holds the resolved row per found occurrence, in input order.
	// Duplicate input words contribute one entry per occurrence and so
	// weight the mean, matching averaging over the appended vector list.
	rows    []int
	found   []string
	missing []string
}

// computeCentroid resolves each input word against the table and averages
// the found rows. The table is not mutated; the result is deterministic for
// a given table and input order.
func computeCentroid(t Table, words []string) (centroid, error) {
	c := centroid{}
	for _, w := range words {
		row, ok := t.RowOf(w)
		if !ok {
			c.missing = append(c.missing, w)
			continue
		}
		c.rows = append(c.rows, row)
		c.found = append(c.found, w)
	}
	if len(c.rows) == 0 {
		return c, fmt.Errorf("%w%s", domain.ErrVocabularyMiss, missingDetail(c.missing))
	}

	c.vector = make([]float64, t.Dimension())
	for _, row := range c.rows {
		for d, comp := range t.VectorAt(row) {
			c.vector[d] += float64(comp)
		}
	}
	n := float64(len(c.rows))
	for d := range c.vector {
		c.vector[d] /= n
	}
	return c, nil
}

// excludeSet returns the resolved rows as a set for the ranking scan.
func (c centroid) excludeSet() map[int]struct{} {
	set := make(map[int]struct{}, len(c.rows))
	for _, row := range c.rows {
		set[row] = struct{}{}
	}
	return set
}

// missingDetail renders up to 10 missing words for the vocabulary-miss
// error message.
func missingDetail(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	shown := missing
	suffix := ""
	if len(shown) > 10 {
		shown = shown[:10]
		suffix = ", ..."
	}
	out := ""
	for i, w := range shown {
		if i > 0 {
			out += ", "
		}
		out += w
	}
	return fmt.Sprintf(": missing words (%d total): %s%s", len(missing), out, suffix)
}

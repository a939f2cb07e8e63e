// Package vectors owns the immutable word→vector table: parsing the text
// source, the binary snapshot fast path, and source acquisition.
package vectors

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"
	"go.uber.org/zap"
)

// parseProgressEvery controls how often Parse logs loading progress.
const parseProgressEvery = 100_000

// Options configures table construction.
type Options struct {
	// CaseSensitive disables the lower-case fold. When false (the default),
	// vocabulary words, lookups, and the exclusion comparison all go through
	// the same fold.
	CaseSensitive bool
	// Logger receives load progress and summary lines. Nil means silent.
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Stats summarizes a completed load.
type Stats struct {
	Rows         int
	Dimension    int
	SkippedLines int
	Duplicates   int
	FromSnapshot bool
}

// Table is an immutable word→vector table. It is built once at startup and
// safe for concurrent readers thereafter.
type Table struct {
	dim   int
	words []string
	index map[string]int32
	data  []float32 // row-major, len == len(words)*dim
	norms []float64 // L2 norm per row, 0 for degenerate rows
	fold  bool
	m     mmap.MMap // non-nil when data views a mapped snapshot
}

// Parse reads a whitespace-delimited "word c1 … cD" table from r. The
// dimension is fixed by the first successfully parsed line; lines with a
// different component count or non-numeric components are skipped and
// counted. Empty lines and lines starting with '#' are skipped silently.
//
// Duplicate words keep the row index of their first occurrence and the
// vector of their last occurrence, matching insert-then-overwrite map
// semantics.
func Parse(r io.Reader, opts Options) (*Table, Stats, error) {
	log := opts.logger()
	t := &Table{
		index: make(map[string]int32),
		fold:  !opts.CaseSensitive,
	}
	var stats Stats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			stats.SkippedLines++
			continue
		}
		comps := fields[1:]
		if t.dim != 0 && len(comps) != t.dim {
			stats.SkippedLines++
			continue
		}

		vec, err := parseComponents(comps)
		if err != nil {
			stats.SkippedLines++
			continue
		}
		if t.dim == 0 {
			t.dim = len(vec)
		}

		word := fields[0]
		if t.fold {
			word = strings.ToLower(word)
		}
		if row, ok := t.index[word]; ok {
			copy(t.data[int(row)*t.dim:(int(row)+1)*t.dim], vec)
			stats.Duplicates++
			continue
		}
		t.index[word] = int32(len(t.words))
		t.words = append(t.words, word)
		t.data = append(t.data, vec...)

		if len(t.words)%parseProgressEvery == 0 {
			log.Info("loading vectors", zap.Int("rows", len(t.words)))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("read vector source: %w", err)
	}
	if len(t.words) == 0 {
		return nil, Stats{}, fmt.Errorf("vector source contains no valid rows: empty vocabulary")
	}

	t.computeNorms()
	stats.Rows = len(t.words)
	stats.Dimension = t.dim
	return t, stats, nil
}

func parseComponents(comps []string) ([]float32, error) {
	vec := make([]float32, len(comps))
	for i, c := range comps {
		f, err := strconv.ParseFloat(c, 32)
		if err != nil {
			return nil, err
		}
		vec[i] = float32(f)
	}
	return vec, nil
}

func (t *Table) computeNorms() {
	t.norms = make([]float64, len(t.words))
	for row := range t.words {
		var sum float64
		for _, c := range t.data[row*t.dim : (row+1)*t.dim] {
			sum += float64(c) * float64(c)
		}
		t.norms[row] = math.Sqrt(sum)
	}
}

// ParseFile parses the text table at path.
func ParseFile(path string, opts Options) (*Table, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open vector source: %w", err)
	}
	defer f.Close()
	return Parse(f, opts)
}

// Load builds a Table from path, preferring the binary snapshot at
// snapshotPath when present. After a text parse it writes the snapshot so
// later startups take the fast path. An unreadable or stale snapshot falls
// back to the text source.
func Load(path, snapshotPath string, opts Options) (*Table, Stats, error) {
	log := opts.logger()

	if snapshotPath != "" {
		if t, stats, err := OpenSnapshot(snapshotPath, opts); err == nil {
			log.Info("loaded vector snapshot",
				zap.String("path", snapshotPath),
				zap.Int("rows", stats.Rows),
				zap.Int("dimension", stats.Dimension),
			)
			return t, stats, nil
		} else if !os.IsNotExist(err) {
			log.Warn("vector snapshot unusable, falling back to text source",
				zap.String("path", snapshotPath), zap.Error(err))
		}
	}

	t, stats, err := ParseFile(path, opts)
	if err != nil {
		return nil, Stats{}, err
	}
	log.Info("loaded vector table",
		zap.String("path", path),
		zap.Int("rows", stats.Rows),
		zap.Int("dimension", stats.Dimension),
		zap.Int("skipped_lines", stats.SkippedLines),
		zap.Int("duplicate_words", stats.Duplicates),
	)

	if snapshotPath != "" {
		if err := t.WriteSnapshot(snapshotPath, stats); err != nil {
			log.Warn("failed to write vector snapshot",
				zap.String("path", snapshotPath), zap.Error(err))
		} else {
			log.Info("wrote vector snapshot", zap.String("path", snapshotPath))
		}
	}
	return t, stats, nil
}

// Size returns the number of rows.
func (t *Table) Size() int { return len(t.words) }

// Dimension returns the number of components per row.
func (t *Table) Dimension() int { return t.dim }

// RowOf resolves a word to its row index, applying the table's case fold.
func (t *Table) RowOf(word string) (int, bool) {
	if t.fold {
		word = strings.ToLower(word)
	}
	row, ok := t.index[word]
	return int(row), ok
}

// WordAt returns the word stored at row.
func (t *Table) WordAt(row int) string { return t.words[row] }

// VectorAt returns the components of row. The slice views shared storage
// and must not be modified.
func (t *Table) VectorAt(row int) []float32 {
	return t.data[row*t.dim : (row+1)*t.dim]
}

// NormAt returns the precomputed L2 norm of row. Zero means a degenerate
// all-zero row.
func (t *Table) NormAt(row int) float64 { return t.norms[row] }

// Rows iterates (word, vector) pairs in table order. Each call starts a
// fresh iteration.
func (t *Table) Rows() iter.Seq2[string, []float32] {
	return func(yield func(string, []float32) bool) {
		for row, word := range t.words {
			if !yield(word, t.data[row*t.dim:(row+1)*t.dim]) {
				return
			}
		}
	}
}

// Close releases the snapshot mapping, if any. The table must not be used
// afterwards.
func (t *Table) Close() error {
	if t.m == nil {
		return nil
	}
	m := t.m
	t.m = nil
	t.data = nil
	return m.Unmap()
}

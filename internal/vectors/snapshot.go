package vectors

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/edsrzf/mmap-go"
)

// Snapshot layout: fixed little-endian header, then the row-major float32
// block, then the word list joined with '\n'. The float block starts at a
// 4-byte aligned offset so a mapped view can be reinterpreted in place.

var snapshotMagic = [4]byte{'L', 'X', 'D', 'X'}

const snapshotVersion uint16 = 1

const snapshotFlagFolded uint16 = 1 << 0

type snapshotHeader struct {
	Magic    [4]byte
	Version  uint16
	Flags    uint16
	Count    uint32
	Dim      uint32
	Skipped  uint32
	WordsLen uint64
}

const snapshotHeaderSize = 28

// WriteSnapshot serializes the table to path atomically (temp file +
// rename). stats preserves the text-parse skip counters across restarts.
func (t *Table) WriteSnapshot(path string, stats Stats) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	wordsBlob := strings.Join(t.words, "\n")
	hdr := snapshotHeader{
		Magic:    snapshotMagic,
		Version:  snapshotVersion,
		Count:    uint32(len(t.words)),
		Dim:      uint32(t.dim),
		Skipped:  uint32(stats.SkippedLines),
		WordsLen: uint64(len(wordsBlob)),
	}
	if t.fold {
		hdr.Flags |= snapshotFlagFolded
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriterSize(tmp, 1<<20)
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, t.data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot vectors: %w", err)
	}
	if _, err := w.WriteString(wordsBlob); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot words: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// OpenSnapshot memory-maps a snapshot written by WriteSnapshot. The float
// block is used in place without copying; the mapping is held until
// Table.Close. A snapshot written under a different case policy is rejected
// so a config change forces a re-parse of the text source.
func OpenSnapshot(path string, opts Options) (*Table, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	f.Close()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("map snapshot: %w", err)
	}

	t, stats, err := tableFromMapping(m, opts)
	if err != nil {
		m.Unmap()
		return nil, Stats{}, err
	}
	return t, stats, nil
}

func tableFromMapping(m mmap.MMap, opts Options) (*Table, Stats, error) {
	if len(m) < snapshotHeaderSize {
		return nil, Stats{}, fmt.Errorf("snapshot truncated: %d bytes", len(m))
	}
	var hdr snapshotHeader
	if err := binary.Read(bytes.NewReader(m[:snapshotHeaderSize]), binary.LittleEndian, &hdr); err != nil {
		return nil, Stats{}, fmt.Errorf("read snapshot header: %w", err)
	}
	if hdr.Magic != snapshotMagic {
		return nil, Stats{}, fmt.Errorf("not a vector snapshot (magic %q)", hdr.Magic)
	}
	if hdr.Version != snapshotVersion {
		return nil, Stats{}, fmt.Errorf("unsupported snapshot version %d", hdr.Version)
	}
	folded := hdr.Flags&snapshotFlagFolded != 0
	if folded == opts.CaseSensitive {
		return nil, Stats{}, fmt.Errorf("snapshot case policy does not match configuration")
	}
	if hdr.Count == 0 || hdr.Dim == 0 {
		return nil, Stats{}, fmt.Errorf("snapshot holds an empty vocabulary")
	}

	count := int(hdr.Count)
	dim := int(hdr.Dim)
	floatBytes := count * dim * 4
	want := snapshotHeaderSize + floatBytes + int(hdr.WordsLen)
	if len(m) != want {
		return nil, Stats{}, fmt.Errorf("snapshot size mismatch: have %d bytes, want %d", len(m), want)
	}

	t := &Table{
		dim:   dim,
		index: make(map[string]int32, count),
		data:  unsafe.Slice((*float32)(unsafe.Pointer(&m[snapshotHeaderSize])), count*dim),
		fold:  folded,
		m:     m,
	}

	// Word strings are copied out of the mapping; only the float block
	// stays mapped.
	blob := string(m[snapshotHeaderSize+floatBytes:])
	t.words = strings.Split(blob, "\n")
	if len(t.words) != count {
		return nil, Stats{}, fmt.Errorf("snapshot word count mismatch: have %d, want %d", len(t.words), count)
	}
	for i, w := range t.words {
		t.index[w] = int32(i)
	}
	t.computeNorms()

	stats := Stats{
		Rows:         count,
		Dimension:    dim,
		SkippedLines: int(hdr.Skipped),
		FromSnapshot: true,
	}
	return t, stats, nil
}

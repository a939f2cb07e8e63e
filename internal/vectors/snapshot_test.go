package vectors

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	table, stats := mustParse(t, sampleSource+"bad 1.0 oops oops\n", Options{})
	if stats.SkippedLines != 1 {
		t.Fatalf("fixture expects 1 skipped line, got %d", stats.SkippedLines)
	}

	path := filepath.Join(t.TempDir(), "vectors.snapshot")
	if err := table.WriteSnapshot(path, stats); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	loaded, loadedStats, err := OpenSnapshot(path, Options{})
	if err != nil {
		t.Fatalf("OpenSnapshot: %v", err)
	}
	defer loaded.Close()

	if !loadedStats.FromSnapshot {
		t.Error("expected FromSnapshot stats")
	}
	if loadedStats.SkippedLines != stats.SkippedLines {
		t.Errorf("skipped-line count not preserved: %d", loadedStats.SkippedLines)
	}
	if loaded.Size() != table.Size() || loaded.Dimension() != table.Dimension() {
		t.Fatalf("shape mismatch: %dx%d vs %dx%d",
			loaded.Size(), loaded.Dimension(), table.Size(), table.Dimension())
	}
	if !reflect.DeepEqual(loaded.words, table.words) {
		t.Error("words differ after snapshot round trip")
	}
	for row := 0; row < table.Size(); row++ {
		if !reflect.DeepEqual(loaded.VectorAt(row), table.VectorAt(row)) {
			t.Errorf("row %d vector differs", row)
		}
		if loaded.NormAt(row) != table.NormAt(row) {
			t.Errorf("row %d norm differs", row)
		}
	}

	row, ok := loaded.RowOf("fruit")
	if !ok || loaded.WordAt(row) != "fruit" {
		t.Error("reverse index not rebuilt from snapshot")
	}
}

func TestSnapshot_CasePolicyMismatch(t *testing.T) {
	table, stats := mustParse(t, sampleSource, Options{})
	path := filepath.Join(t.TempDir(), "vectors.snapshot")
	if err := table.WriteSnapshot(path, stats); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	if _, _, err := OpenSnapshot(path, Options{CaseSensitive: true}); err == nil {
		t.Fatal("expected case policy mismatch error")
	}
}

func TestSnapshot_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.snapshot")
	if err := os.WriteFile(path, []byte("this is not a snapshot, not even close"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := OpenSnapshot(path, Options{}); err == nil {
		t.Fatal("expected error for garbage snapshot")
	}
}

func TestLoad_WritesAndReusesSnapshot(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "vectors.txt")
	snap := filepath.Join(dir, "vectors.snapshot")
	if err := os.WriteFile(src, []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}

	t1, stats1, err := Load(src, snap, Options{})
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	defer t1.Close()
	if stats1.FromSnapshot {
		t.Error("first load should parse the text source")
	}
	if _, err := os.Stat(snap); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	t2, stats2, err := Load(src, snap, Options{})
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	defer t2.Close()
	if !stats2.FromSnapshot {
		t.Error("second load should take the snapshot fast path")
	}
	if !reflect.DeepEqual(t1.words, t2.words) {
		t.Error("words differ between text parse and snapshot load")
	}
	for row := 0; row < t1.Size(); row++ {
		if !reflect.DeepEqual(t1.VectorAt(row), t2.VectorAt(row)) {
			t.Errorf("row %d differs between text parse and snapshot load", row)
		}
	}
}

package vectors

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func zipWithMember(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestEnsure_SkipsExistingDest(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "vectors.txt")
	if err := os.WriteFile(dest, []byte("a 1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(nil)
	if err := f.Ensure(context.Background(), "", "vectors.txt", dest); err != nil {
		t.Fatalf("Ensure with existing dest: %v", err)
	}
}

func TestEnsure_MissingWithoutURL(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "vectors.txt")

	f := NewFetcher(nil)
	if err := f.Ensure(context.Background(), "", "vectors.txt", dest); err == nil {
		t.Fatal("expected error when source is missing and no URL configured")
	}
}

func TestEnsure_DownloadsAndExtracts(t *testing.T) {
	const content = "apple 1.0 2.0\nbanana 3.0 4.0\n"
	archive := zipWithMember(t, "glove.6B.300d.txt", content)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "glove", "glove.6B.300d.txt")

	f := NewFetcher(nil)
	if err := f.Ensure(context.Background(), srv.URL+"/glove.6B.zip", "glove.6B.300d.txt", dest); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if string(got) != content {
		t.Errorf("unexpected extracted content: %q", got)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 download, got %d", hits.Load())
	}

	// Second call finds the file and does nothing.
	if err := f.Ensure(context.Background(), srv.URL+"/glove.6B.zip", "glove.6B.300d.txt", dest); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected no further downloads, got %d", hits.Load())
	}
}

func TestEnsure_MemberNotInArchive(t *testing.T) {
	archive := zipWithMember(t, "other.txt", "irrelevant")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "glove.6B.300d.txt")

	f := NewFetcher(nil)
	err := f.Ensure(context.Background(), srv.URL+"/glove.6B.zip", "glove.6B.300d.txt", dest)
	if err == nil {
		t.Fatal("expected error when member is not in the archive")
	}
}

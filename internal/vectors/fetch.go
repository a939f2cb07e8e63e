package vectors

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Fetcher acquires the vector source file: it downloads the distribution
// archive and extracts the wanted member. Work already done is skipped, so
// Ensure is cheap to call on every startup.
type Fetcher struct {
	client *http.Client
	logger *zap.Logger
}

// NewFetcher creates a Fetcher. The generous timeout covers the GloVe-sized
// archives (~800 MB) on slow links.
func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Minute},
		logger: logger,
	}
}

// Ensure makes the file at dest exist: if it is already present nothing
// happens; otherwise the archive at url is downloaded next to dest (reused
// if present from an earlier run) and member is extracted from it.
func (f *Fetcher) Ensure(ctx context.Context, url, member, dest string) error {
	if fileExists(dest) {
		f.logger.Debug("vector source already present", zap.String("path", dest))
		return nil
	}
	if url == "" {
		return fmt.Errorf("vector source %s missing and no source_url configured", dest)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create vector dir: %w", err)
	}

	archive := filepath.Join(dir, filepath.Base(url))
	if !fileExists(archive) {
		if err := f.download(ctx, url, archive); err != nil {
			return err
		}
	} else {
		f.logger.Info("archive already downloaded", zap.String("path", archive))
	}

	return f.extract(archive, member, dest)
}

func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	f.logger.Info("downloading vector archive", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create download temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close download: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("publish download: %w", err)
	}

	f.logger.Info("download complete", zap.String("path", dest), zap.Int64("bytes", n))
	return nil
}

func (f *Fetcher) extract(archive, member, dest string) error {
	f.logger.Info("extracting vector source",
		zap.String("archive", archive), zap.String("member", member))

	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archive, err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if filepath.Base(zf.Name) != member {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("open archive member %s: %w", zf.Name, err)
		}
		defer rc.Close()

		tmp, err := os.CreateTemp(filepath.Dir(dest), ".extract-*")
		if err != nil {
			return fmt.Errorf("create extract temp file: %w", err)
		}
		defer os.Remove(tmp.Name())

		if _, err := io.Copy(tmp, rc); err != nil {
			tmp.Close()
			return fmt.Errorf("extract %s: %w", zf.Name, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("close extracted file: %w", err)
		}
		if err := os.Rename(tmp.Name(), dest); err != nil {
			return fmt.Errorf("publish extracted file: %w", err)
		}

		f.logger.Info("extraction complete", zap.String("path", dest))
		return nil
	}

	names := make([]string, 0, len(zr.File))
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	return fmt.Errorf("member %s not found in %s (available: %v)", member, archive, names)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

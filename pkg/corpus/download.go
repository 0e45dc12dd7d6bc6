// Package corpus downloads the PubMed-Diabetes source archive and parses its
// node and edge tables.
package corpus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ArchiveName is the file name of the downloaded source archive under
// <root>/input/.
const ArchiveName = "pubmed-dataset.zip"

// ArchivePath returns the location of the source archive under root.
func ArchivePath(root string) string {
	return filepath.Join(root, "input", ArchiveName)
}

// Download fetches the source archive to <root>/input/pubmed-dataset.zip.
// The download is skipped when the file already exists. The archive is
// written to a temporary file first and renamed into place on success.
func Download(ctx context.Context, log *slog.Logger, root, url string) error {
	dest := ArchivePath(root)
	if _, err := os.Stat(dest); err == nil {
		log.Debug("Archive already present, skipping download", "path", dest)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create input directory: %w", err)
	}

	log.Info("Downloading dataset", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s downloading %s", resp.Status, url)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ArchiveName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	body := io.ReadCloser(resp.Body)
	var progress *mpb.Progress
	if resp.ContentLength > 0 {
		progress = mpb.New(mpb.WithWidth(64))
		bar := progress.AddBar(resp.ContentLength,
			mpb.PrependDecorators(decor.Name("download")),
			mpb.AppendDecorators(decor.CountersKibiByte("% .1f / % .1f")),
		)
		body = bar.ProxyReader(resp.Body)
		defer body.Close()
	}

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	if progress != nil {
		progress.Wait()
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}

	log.Info("Archive saved", "path", dest)
	return nil
}

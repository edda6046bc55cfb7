package installer

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	fetchTimeout  = 30 * time.Second
	fetchAttempts = 3
	retryDelay    = 2 * time.Second
)

// fetchArchive downloads a zip archive from url and extracts it into
// destDir. GitHub tag archives wrap everything in a single
// "<repo>-<tag>/" directory; that wrapper is flattened away so the
// manifest ends up at destDir's root.
func fetchArchive(ctx context.Context, url, destDir string) error {
	tmp, err := os.CreateTemp("", "matrixstore-archive-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := download(ctx, url, tmp); err != nil {
		return err
	}

	if err := extractZip(tmp.Name(), destDir); err != nil {
		return fmt.Errorf("failed to extract archive: %w", err)
	}

	return flattenSingleDir(destDir)
}

// download fetches url into w with a bounded number of retries.
func download(ctx context.Context, url string, w io.Writer) error {
	client := &http.Client{Timeout: fetchTimeout}

	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("%s returned %s", url, resp.Status)
			// Retrying a 404 will not help
			if resp.StatusCode == http.StatusNotFound {
				return lastErr
			}
			continue
		}

		_, err = io.Copy(w, resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("download failed after %d attempts: %w", fetchAttempts, lastErr)
}

// extractZip unpacks archivePath into destDir, rejecting entries
// that would escape the destination (zip-slip).
func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(destDir, filepath.Clean(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}

		src, err := f.Open()
		if err != nil {
			return err
		}

		dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0200)
		if err != nil {
			src.Close()
			return err
		}

		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// flattenSingleDir moves the contents of a lone top-level directory
// up into dir, the shape GitHub's refs/tags archives produce.
func flattenSingleDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	wrapper := filepath.Join(dir, entries[0].Name())
	inner, err := os.ReadDir(wrapper)
	if err != nil {
		return err
	}

	for _, e := range inner {
		if err := os.Rename(filepath.Join(wrapper, e.Name()), filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}

	return os.Remove(wrapper)
}

package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

const (
	// DefaultDownloadTimeout bounds one HTTP fetch.
	DefaultDownloadTimeout = 60 * time.Second

	// DefaultCacheTTL is how long cached downloads stay valid.
	DefaultCacheTTL = 24 * time.Hour
)

// fetch downloads a URL into the downloads directory, honouring the
// download cache when an unexpired entry still has its file on disk.
func (r *Resolver) fetch(ctx context.Context, rawURL string) (string, error) {
	if r.cache != nil {
		if entry, err := r.cache.Get(ctx, rawURL); err == nil && entry.Fresh(time.Now(), r.cacheTTL) {
			if info, statErr := os.Stat(entry.LocalPath); statErr == nil && info.Size() > 0 {
				logger.Debug("download cache hit: %s", rawURL)
				return entry.LocalPath, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request for %s: %v", domain.ErrDownloadFailed, rawURL, err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s returned status %d", domain.ErrDownloadFailed, rawURL, resp.StatusCode)
	}

	// Files land under a URL-keyed subdirectory so equal base names from
	// different URLs cannot overwrite each other's cache entry.
	destDir := filepath.Join(r.downloadDir, domain.Fingerprint(rawURL)[:8])
	if err := os.MkdirAll(destDir, 0o700); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}
	dest := filepath.Join(destDir, downloadName(rawURL))

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("%w: reading %s: %v", domain.ErrDownloadFailed, rawURL, err)
	}
	if closeErr != nil {
		os.Remove(dest)
		return "", fmt.Errorf("writing %s: %w", dest, closeErr)
	}

	if r.cache != nil {
		entry := domain.CacheEntry{
			URL:       rawURL,
			LocalPath: dest,
			SizeBytes: written,
			FetchedAt: time.Now().UTC(),
		}
		if err := r.cache.Put(ctx, entry); err != nil {
			logger.Debug("download cache write failed for %s: %v", rawURL, err)
		}
	}

	logger.Debug("downloaded %s (%d bytes)", rawURL, written)
	return dest, nil
}

// DownloadsDir returns where cached downloads live.
func (r *Resolver) DownloadsDir() string {
	return r.downloadDir
}

// downloadName extracts a file name from the URL path.
func downloadName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		name := path.Base(u.Path)
		if name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "download_" + uuid.NewString()[:8]
}

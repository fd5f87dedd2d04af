// ABOUTME: Cover art fetcher with an on-disk cache
// ABOUTME: Fetches LMS artwork URLs and caches them under the temp directory
package artwork

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher downloads cover art to an on-disk cache keyed by URL. Repeated
// fetches of the same URL are served from the cache; LMS artwork URLs embed
// the cover ID, so a changed cover means a changed URL.
type Fetcher struct {
	cacheDir string
	client   *http.Client
}

// NewFetcher creates a Fetcher caching under dir. An empty dir places the
// cache in the system temp directory. Pass nil to use http.DefaultClient.
func NewFetcher(client *http.Client, dir string) (*Fetcher, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "squeezebox-art")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating art cache: %w", err)
	}
	return &Fetcher{cacheDir: dir, client: client}, nil
}

// Fetch downloads the artwork at url and returns the path of the cached
// file. An empty url returns an empty path without error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", nil
	}

	path := f.cachePath(url)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetching artwork: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching artwork: HTTP %d", resp.StatusCode)
	}

	// Write through a temp file so a failed download never leaves a
	// truncated entry in the cache.
	tmp, err := os.CreateTemp(f.cacheDir, "art-*")
	if err != nil {
		return "", fmt.Errorf("caching artwork: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("caching artwork: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("caching artwork: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("caching artwork: %w", err)
	}

	log.Printf("artwork: cached %s", path)
	return path, nil
}

// Cleanup removes the cache directory and everything in it.
func (f *Fetcher) Cleanup() error {
	return os.RemoveAll(f.cacheDir)
}

// cachePath derives the cache file name for a URL from its hash, keeping the
// URL's image extension so viewers can tell the format.
func (f *Fetcher) cachePath(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, fmt.Sprintf("%x%s", hash[:8], extension(url)))
}

// extension extracts the image extension from a URL, defaulting to .jpg,
// which is what LMS serves for covers without one.
func extension(url string) string {
	url = strings.Split(url, "?")[0]
	if ext := filepath.Ext(url); ext != "" {
		return ext
	}
	return ".jpg"
}

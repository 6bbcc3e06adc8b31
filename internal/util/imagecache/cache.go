// Package imagecache caches downloaded remote images on disk.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	httputil "github.com/jmylchreest/palettevision/internal/util/http"
)

// Cache stores remote images in a directory keyed by a hash of their URL.
type Cache struct {
	dir string
}

// DefaultDir returns the default cache directory.
// On Linux: ~/.cache/palettevision/images
func DefaultDir() string {
	return filepath.Join(xdg.CacheHome, "palettevision", "images")
}

// New creates a Cache in dir. An empty dir selects DefaultDir.
func New(dir string) *Cache {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the file a URL is cached under.
func (c *Cache) Path(url string) string {
	return filepath.Join(c.dir, generateFilename(url))
}

// generateFilename creates a deterministic filename from a URL.
// Uses SHA256 hash of URL + original file extension.
func generateFilename(url string) string {
	hash := sha256.Sum256([]byte(url))
	hashStr := fmt.Sprintf("%x", hash[:16])

	ext := filepath.Ext(url)
	if idx := strings.IndexByte(ext, '?'); idx != -1 {
		ext = ext[:idx]
	}
	if ext == "" || len(ext) > 5 || strings.ContainsRune(ext, '/') {
		ext = ".img"
	}

	return hashStr + ext
}

// Get returns the image bytes for url, downloading them on a cache miss.
// Downloads larger than maxBytes fail with httputil.ErrBodyTooLarge and
// are not cached.
func (c *Cache) Get(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	cachedPath := c.Path(url)
	if data, err := os.ReadFile(cachedPath); err == nil { // #nosec G304 - path derived from URL hash
		if maxBytes <= 0 || int64(len(data)) <= maxBytes {
			return data, nil
		}
	}

	data, err := httputil.Fetch(ctx, url, httputil.FetchOptions{MaxBytes: maxBytes})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(cachedPath, data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return nil, fmt.Errorf("failed to write cached image: %w", err)
	}

	return data, nil
}

// Package image provides utilities for loading and decoding images.
package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/webp" // Register WebP format

	httputil "github.com/jmylchreest/palettevision/internal/util/http"
	"github.com/jmylchreest/palettevision/internal/util/imagecache"
)

// DefaultMaxBytes is the largest encoded image accepted (10 MiB).
const DefaultMaxBytes int64 = 10 * 1024 * 1024

// DefaultMaxPixels is the largest decoded image accepted, in pixels. A small
// file can declare huge dimensions, so the header is checked before decoding.
const DefaultMaxPixels int64 = 89_478_485

// Loader errors.
var (
	// ErrEmptyImage is returned for a zero-length payload.
	ErrEmptyImage = errors.New("empty image")

	// ErrTooLarge is returned when the payload exceeds the size limit.
	ErrTooLarge = errors.New("image exceeds size limit")

	// ErrTooManyPixels is returned when the declared dimensions exceed the
	// pixel limit.
	ErrTooManyPixels = errors.New("image dimensions exceed pixel limit")

	// ErrInvalidBase64 is returned when a base64 payload cannot be decoded.
	ErrInvalidBase64 = errors.New("invalid base64 image data")

	// ErrInvalidDataURL is returned for a "data:" URL without a payload.
	ErrInvalidDataURL = errors.New("invalid data URL")

	// ErrUndecodable is returned when the bytes are not a supported image.
	ErrUndecodable = errors.New("unsupported or invalid image format")
)

// Loader loads images from files, URLs, raw bytes and base64 strings.
type Loader struct {
	maxBytes  int64
	maxPixels int64
	cache     *imagecache.Cache
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCache keeps downloaded images in cache and reuses them.
func WithCache(cache *imagecache.Cache) LoaderOption {
	return func(l *Loader) {
		l.cache = cache
	}
}

// WithMaxPixels sets the decoded pixel limit. A non-positive limit keeps
// DefaultMaxPixels.
func WithMaxPixels(n int64) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxPixels = n
		}
	}
}

// NewLoader creates a Loader with the given payload limit. A non-positive
// limit selects DefaultMaxBytes.
func NewLoader(maxBytes int64, opts ...LoaderOption) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	l := &Loader{maxBytes: maxBytes, maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MaxBytes returns the payload limit.
func (l *Loader) MaxBytes() int64 {
	return l.maxBytes
}

// MaxPixels returns the decoded pixel limit.
func (l *Loader) MaxPixels() int64 {
	return l.maxPixels
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *Loader) Load(ctx context.Context, path string) (image.Image, error) {
	if isURL(path) {
		return l.LoadURL(ctx, path)
	}
	return l.LoadFile(path)
}

// LoadFile loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP.
func (l *Loader) LoadFile(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() > l.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (maximum: %d)", ErrTooLarge, info.Size(), l.maxBytes)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return l.Decode(data)
}

// LoadURL fetches and decodes an image from an HTTP(S) URL.
func (l *Loader) LoadURL(ctx context.Context, url string) (image.Image, error) {
	var (
		data []byte
		err  error
	)
	if l.cache != nil {
		data, err = l.cache.Get(ctx, url, l.maxBytes)
	} else {
		data, err = httputil.Fetch(ctx, url, httputil.FetchOptions{MaxBytes: l.maxBytes})
	}
	if err != nil {
		if errors.Is(err, httputil.ErrBodyTooLarge) {
			return nil, fmt.Errorf("%w: %s", ErrTooLarge, url)
		}
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}
	return l.Decode(data)
}

// Decode decodes an encoded image held in memory. The dimensions in the
// image header are checked against the pixel limit before any pixel data is
// decoded.
func (l *Loader) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (maximum: %d)", ErrTooLarge, len(data), l.maxBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > l.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d (maximum: %d pixels)", ErrTooManyPixels, cfg.Width, cfg.Height, l.maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	return img, nil
}

// DecodeBase64 decodes a base64 encoded image. A "data:<mime>;base64,"
// prefix is accepted and stripped.
func (l *Loader) DecodeBase64(s string) (image.Image, error) {
	if s == "" {
		return nil, ErrEmptyImage
	}

	if strings.HasPrefix(s, "data:") {
		_, payload, ok := strings.Cut(s, ",")
		if !ok {
			return nil, ErrInvalidDataURL
		}
		s = payload
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBase64, err)
	}
	return l.Decode(data)
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// isImageFile checks if a file has a supported image extension.
func isImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// ScanDirectoryForImages scans a directory and returns all image files in
// name order. It does not recurse into subdirectories, but follows symlinks.
func ScanDirectoryForImages(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		// For symlinks, stat the target to determine if it's a file.
		info, err := os.Stat(fullPath)
		if err != nil {
			// Skip entries we can't stat (broken symlinks, permission issues).
			continue
		}
		if info.IsDir() {
			continue
		}
		if isImageFile(entry.Name()) {
			imageFiles = append(imageFiles, fullPath)
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no supported image files found in directory: %s", dirPath)
	}

	return imageFiles, nil
}

// ExpandSources resolves the given paths into a list of images: URLs and
// files are kept as-is, directories are replaced by the images they contain.
func ExpandSources(paths []string) ([]string, error) {
	var sources []string
	for _, path := range paths {
		if path == "" {
			return nil, fmt.Errorf("image path cannot be empty")
		}
		if isURL(path) {
			sources = append(sources, path)
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("image file or directory not found: %s", path)
			}
			return nil, fmt.Errorf("failed to access image path: %w", err)
		}
		if !info.IsDir() {
			sources = append(sources, path)
			continue
		}

		files, err := ScanDirectoryForImages(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, files...)
	}
	return sources, nil
}

package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jmylchreest/palettevision/internal/util/imagecache"
)

// encodePNG returns a solid w x h PNG.
func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// pngWithDimensions returns a 1x1 PNG whose header declares w x h. Only the
// header is valid; decoding the pixel data fails.
func pngWithDimensions(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := encodePNG(t, 1, 1, color.Black)
	// Signature (8), IHDR length (4), "IHDR" (4), then width and height.
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestNewLoader(t *testing.T) {
	if got := NewLoader(0).MaxBytes(); got != DefaultMaxBytes {
		t.Errorf("NewLoader(0).MaxBytes() = %d, want %d", got, DefaultMaxBytes)
	}
	if got := NewLoader(42).MaxBytes(); got != 42 {
		t.Errorf("NewLoader(42).MaxBytes() = %d, want 42", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "red.png")
	if err := os.WriteFile(path, encodePNG(t, 4, 3, color.RGBA{R: 255, A: 255}), 0o600); err != nil {
		t.Fatal(err)
	}

	img, err := NewLoader(0).LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("bounds = %v, want 4x3", b)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(dir, "missing.png")},
		{name: "directory", path: dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLoader(0).LoadFile(tt.path); err == nil {
				t.Errorf("LoadFile(%q) error = nil, want error", tt.path)
			}
		})
	}

	t.Run("too large", func(t *testing.T) {
		if _, err := NewLoader(10).LoadFile(path); !errors.Is(err, ErrTooLarge) {
			t.Errorf("LoadFile() error = %v, want ErrTooLarge", err)
		}
	})
}

func TestDecode(t *testing.T) {
	l := NewLoader(0)

	if _, err := l.Decode(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Decode(nil) error = %v, want ErrEmptyImage", err)
	}
	if _, err := l.Decode([]byte("not an image")); !errors.Is(err, ErrUndecodable) {
		t.Errorf("Decode(garbage) error = %v, want ErrUndecodable", err)
	}
	if _, err := l.Decode(encodePNG(t, 2, 2, color.White)); err != nil {
		t.Errorf("Decode(png) error = %v", err)
	}
}

func TestDecodePixelLimit(t *testing.T) {
	if got := NewLoader(0).MaxPixels(); got != DefaultMaxPixels {
		t.Errorf("MaxPixels() = %d, want %d", got, DefaultMaxPixels)
	}

	t.Run("huge declared dimensions", func(t *testing.T) {
		data := pngWithDimensions(t, 60000, 60000)
		if len(data) > 100 {
			t.Fatalf("crafted header is %d bytes, want a tiny payload", len(data))
		}
		_, err := NewLoader(0).Decode(data)
		if !errors.Is(err, ErrTooManyPixels) {
			t.Errorf("Decode() error = %v, want ErrTooManyPixels", err)
		}
	})

	t.Run("custom limit", func(t *testing.T) {
		l := NewLoader(0, WithMaxPixels(16))
		if _, err := l.Decode(encodePNG(t, 4, 4, color.White)); err != nil {
			t.Errorf("Decode(4x4) error = %v", err)
		}
		if _, err := l.Decode(encodePNG(t, 5, 4, color.White)); !errors.Is(err, ErrTooManyPixels) {
			t.Errorf("Decode(5x4) error = %v, want ErrTooManyPixels", err)
		}
	})

	t.Run("base64", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString(pngWithDimensions(t, 20000, 20000))
		if _, err := NewLoader(0).DecodeBase64(encoded); !errors.Is(err, ErrTooManyPixels) {
			t.Errorf("DecodeBase64() error = %v, want ErrTooManyPixels", err)
		}
	})
}

func TestDecodeBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(encodePNG(t, 2, 2, color.Black))

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "plain", input: encoded},
		{name: "data url", input: "data:image/png;base64," + encoded},
		{name: "empty", input: "", wantErr: ErrEmptyImage},
		{name: "data url without payload", input: "data:image/png;base64", wantErr: ErrInvalidDataURL},
		{name: "bad base64", input: "!!!not-base64!!!", wantErr: ErrInvalidBase64},
		{name: "not an image", input: base64.StdEncoding.EncodeToString([]byte("hello")), wantErr: ErrUndecodable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewLoader(0).DecodeBase64(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("DecodeBase64() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBase64() error = %v", err)
			}
			if img.Bounds().Dx() != 2 {
				t.Errorf("width = %d, want 2", img.Bounds().Dx())
			}
		})
	}
}

func TestLoadURL(t *testing.T) {
	payload := encodePNG(t, 3, 3, color.RGBA{B: 255, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	img, err := NewLoader(0).Load(context.Background(), srv.URL+"/blue.png")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Bounds().Dx() != 3 {
		t.Errorf("width = %d, want 3", img.Bounds().Dx())
	}

	if _, err := NewLoader(0).Load(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("Load(missing) error = nil, want error")
	}
	if _, err := NewLoader(8).Load(context.Background(), srv.URL+"/blue.png"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Load() error = %v, want ErrTooLarge", err)
	}
}

func TestLoadURLWithCache(t *testing.T) {
	payload := encodePNG(t, 2, 2, color.White)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	l := NewLoader(0, WithCache(imagecache.New(t.TempDir())))
	for range 3 {
		if _, err := l.LoadURL(context.Background(), srv.URL+"/white.png"); err != nil {
			t.Fatalf("LoadURL() error = %v", err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}

func TestExpandSources(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ExpandSources([]string{dir, "https://example.com/x.png"})
	if err != nil {
		t.Fatalf("ExpandSources() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.png"), "https://example.com/x.png"}
	if len(got) != len(want) {
		t.Fatalf("ExpandSources() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExpandSources()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := ExpandSources([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("ExpandSources(missing) error = nil, want error")
	}
	if _, err := ExpandSources([]string{t.TempDir()}); err == nil {
		t.Error("ExpandSources(empty dir) error = nil, want error")
	}
}

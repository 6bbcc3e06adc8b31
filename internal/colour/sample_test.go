package colour

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func solidGrid(width, height int, c RGB) Grid {
	g := NewGrid(width, height)
	for i := range g.Pix {
		g.Pix[i] = c
	}
	return g
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{name: "small unchanged", width: 640, height: 480, wantW: 640, wantH: 480},
		{name: "exact limit unchanged", width: 800, height: 800, wantW: 800, wantH: 800},
		{name: "landscape", width: 1600, height: 400, wantW: 800, wantH: 200},
		{name: "portrait", width: 1000, height: 3000, wantW: 266, wantH: 800},
		{name: "truncates short side", width: 801, height: 10, wantW: 800, wantH: 9},
		{name: "never below one pixel", width: 5000, height: 1, wantW: 800, wantH: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ScaledSize(tt.width, tt.height, DefaultMaxDimension)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("ScaledSize(%d, %d) = %dx%d, want %dx%d", tt.width, tt.height, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPreprocess(t *testing.T) {
	t.Run("downscales oversized grid", func(t *testing.T) {
		g := solidGrid(1200, 900, RGB{R: 10, G: 20, B: 30})
		got, err := Preprocess(g, DefaultMaxDimension)
		if err != nil {
			t.Fatalf("Preprocess() error = %v", err)
		}
		if max(got.Width, got.Height) != DefaultMaxDimension {
			t.Errorf("longest side = %d, want %d", max(got.Width, got.Height), DefaultMaxDimension)
		}
		if got.Width != 800 || got.Height != 600 {
			t.Errorf("Preprocess() size = %dx%d, want 800x600", got.Width, got.Height)
		}
		if len(got.Samples()) != 800*600 {
			t.Errorf("len(Samples()) = %d, want %d", len(got.Samples()), 800*600)
		}
	})

	t.Run("small grid unchanged", func(t *testing.T) {
		g := solidGrid(30, 20, RGB{R: 1, G: 2, B: 3})
		g.Set(5, 5, RGB{R: 200, G: 100, B: 50})
		got, err := Preprocess(g, DefaultMaxDimension)
		if err != nil {
			t.Fatalf("Preprocess() error = %v", err)
		}
		if got.Width != 30 || got.Height != 20 {
			t.Errorf("Preprocess() size = %dx%d, want 30x20", got.Width, got.Height)
		}
		if got.At(5, 5) != (RGB{R: 200, G: 100, B: 50}) {
			t.Errorf("At(5, 5) = %+v, want unchanged sample", got.At(5, 5))
		}
	})

	t.Run("zero maximum uses default", func(t *testing.T) {
		got, err := Preprocess(solidGrid(1600, 10, RGB{}), 0)
		if err != nil {
			t.Fatalf("Preprocess() error = %v", err)
		}
		if got.Width != DefaultMaxDimension {
			t.Errorf("Width = %d, want %d", got.Width, DefaultMaxDimension)
		}
	})

	t.Run("empty grid", func(t *testing.T) {
		_, err := Preprocess(Grid{}, DefaultMaxDimension)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Preprocess() error = %v, want ErrEmptyInput", err)
		}
	})

	t.Run("inconsistent grid", func(t *testing.T) {
		_, err := Preprocess(Grid{Width: 2, Height: 2, Pix: make([]RGB, 3)}, DefaultMaxDimension)
		if !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("Preprocess() error = %v, want ErrInvalidGrid", err)
		}
	})
}

func TestGridFromImage(t *testing.T) {
	tests := []struct {
		name string
		img  func() image.Image
	}{
		{
			name: "nrgba",
			img: func() image.Image {
				img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
				img.Set(2, 1, color.NRGBA{R: 31, G: 119, B: 180, A: 255})
				return img
			},
		},
		{
			name: "rgba",
			img: func() image.Image {
				img := image.NewRGBA(image.Rect(0, 0, 3, 2))
				img.Set(2, 1, color.RGBA{R: 31, G: 119, B: 180, A: 255})
				return img
			},
		},
		{
			name: "offset bounds",
			img: func() image.Image {
				img := image.NewRGBA(image.Rect(10, 10, 13, 12))
				img.Set(12, 11, color.RGBA{R: 31, G: 119, B: 180, A: 255})
				return img
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GridFromImage(tt.img())
			if g.Width != 3 || g.Height != 2 {
				t.Fatalf("GridFromImage() size = %dx%d, want 3x2", g.Width, g.Height)
			}
			if got := g.At(2, 1); got != (RGB{R: 31, G: 119, B: 180}) {
				t.Errorf("At(2, 1) = %+v, want {31 119 180}", got)
			}
			if got := g.At(0, 0); got != (RGB{}) {
				t.Errorf("At(0, 0) = %+v, want black", got)
			}
		})
	}
}

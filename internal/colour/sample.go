package colour

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// DefaultMaxDimension is the largest width or height fed to clustering.
// Larger grids are downscaled so their longest side equals this value.
const DefaultMaxDimension = 800

// Grid is a decoded image as a row-major array of RGB samples.
type Grid struct {
	Width  int
	Height int
	Pix    []RGB
}

// NewGrid creates a zeroed (black) grid of the given size.
func NewGrid(width, height int) Grid {
	return Grid{Width: width, Height: height, Pix: make([]RGB, width*height)}
}

// GridFromImage converts a decoded image into a Grid. Alpha is discarded.
func GridFromImage(img image.Image) Grid {
	bounds := img.Bounds()
	g := NewGrid(bounds.Dx(), bounds.Dy())

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < g.Height; y++ {
			row := nrgba.Pix[nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := 0; x < g.Width; x++ {
				g.Pix[y*g.Width+x] = RGB{R: row[x*4], G: row[x*4+1], B: row[x*4+2]}
			}
		}
		return g
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g.Pix[(y-bounds.Min.Y)*g.Width+(x-bounds.Min.X)] = ToRGB(img.At(x, y))
		}
	}
	return g
}

// At returns the sample at column x, row y.
func (g Grid) At(x, y int) RGB {
	return g.Pix[y*g.Width+x]
}

// Set stores the sample at column x, row y.
func (g Grid) Set(x, y int, c RGB) {
	g.Pix[y*g.Width+x] = c
}

// Empty reports whether the grid has no pixels.
func (g Grid) Empty() bool {
	return g.Width == 0 || g.Height == 0
}

// Validate checks that the dimensions are non-negative and agree with Pix.
func (g Grid) Validate() error {
	if g.Width < 0 || g.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidGrid, g.Width, g.Height)
	}
	if len(g.Pix) != g.Width*g.Height {
		return fmt.Errorf("%w: %d samples for %dx%d grid", ErrInvalidGrid, len(g.Pix), g.Width, g.Height)
	}
	return nil
}

// Samples flattens the grid into a list of samples in row-major order.
func (g Grid) Samples() []RGB {
	samples := make([]RGB, len(g.Pix))
	copy(samples, g.Pix)
	return samples
}

// Image returns the grid as an opaque *image.NRGBA.
func (g Grid) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for i, c := range g.Pix {
		img.Pix[i*4] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// ScaledSize returns the dimensions a width x height grid is reduced to so
// that its longest side is at most maxDimension. The aspect ratio is kept and
// the shorter side is truncated, never below one pixel.
func ScaledSize(width, height, maxDimension int) (int, int) {
	largest := max(width, height)
	if largest <= maxDimension {
		return width, height
	}
	if width >= height {
		return maxDimension, max(1, height*maxDimension/width)
	}
	return max(1, width*maxDimension/height), maxDimension
}

// Preprocess validates the grid and downscales it when its longest side
// exceeds maxDimension. A non-positive maxDimension selects
// DefaultMaxDimension. Grids within the limit are returned unchanged.
func Preprocess(g Grid, maxDimension int) (Grid, error) {
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	if g.Empty() {
		return Grid{}, fmt.Errorf("%w: %dx%d image", ErrEmptyInput, g.Width, g.Height)
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	width, height := ScaledSize(g.Width, g.Height, maxDimension)
	if width == g.Width && height == g.Height {
		return g, nil
	}

	src := g.Image()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return GridFromImage(dst), nil
}

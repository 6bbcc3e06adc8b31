package colour

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Format is the textual representation used for extracted colours.
type Format string

const (
	// FormatHex renders "#rrggbb" with lowercase digits.
	FormatHex Format = "hex"

	// FormatRGB renders "rgb(R, G, B)".
	FormatRGB Format = "rgb"

	// FormatRGBA renders "rgba(R, G, B, 1)". Alpha is always opaque.
	FormatRGBA Format = "rgba"

	// FormatHSL renders "hsl(H, S%, L%)" with hue in degrees.
	FormatHSL Format = "hsl"
)

// ValidFormats returns the supported output formats.
func ValidFormats() []Format {
	return []Format{FormatHex, FormatRGB, FormatRGBA, FormatHSL}
}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidFormats() {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown format %q (valid formats: %v)", ErrInvalidOption, s, ValidFormats())
}

// ColourRecord is one extracted colour as returned to callers.
type ColourRecord struct {
	// Value is the colour rendered in the requested format.
	Value string `json:"value"`

	// Percentage is the cluster's share of all samples, present only when
	// requested.
	Percentage *float64 `json:"percentage,omitempty"`

	// RGB is the rounded centroid, kept for presentation.
	RGB RGB `json:"-"`

	// Count is the number of samples in the source cluster.
	Count int `json:"-"`
}

// RGBA returns the colour as "rgba(r, g, b, 1)".
func (rgb RGB) RGBA() string {
	return fmt.Sprintf("rgba(%d, %d, %d, 1)", rgb.R, rgb.G, rgb.B)
}

// HSL returns the colour as "hsl(h, s%, l%)". Each component is rounded to
// two decimal places.
func (rgb RGB) HSL() string {
	c := colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
	h, s, l := c.Hsl()
	return fmt.Sprintf("hsl(%s, %s%%, %s%%)", formatDecimal(h, 2), formatDecimal(s*100, 2), formatDecimal(l*100, 2))
}

// Render formats the colour. Unknown formats fall back to hex.
func (rgb RGB) Render(f Format) string {
	switch f {
	case FormatRGB:
		return rgb.String()
	case FormatRGBA:
		return rgb.RGBA()
	case FormatHSL:
		return rgb.HSL()
	default:
		return rgb.Hex()
	}
}

// Percentage returns count as a percentage of total, rounded to four
// decimal places.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return roundTo(float64(count)/float64(total)*100, 4)
}

// FormatCluster renders a cluster into a ColourRecord. total is the sample
// count of the whole clustering run, before ranking or padding.
func FormatCluster(c Cluster, total int, f Format, includePercentage bool) ColourRecord {
	rgb := c.Centroid.RGB()
	record := ColourRecord{
		Value: rgb.Render(f),
		RGB:   rgb,
		Count: c.Count,
	}
	if includePercentage {
		pct := Percentage(c.Count, total)
		record.Percentage = &pct
	}
	return record
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// formatDecimal prints v rounded to places decimals without trailing zeros.
func formatDecimal(v float64, places int) string {
	return strconv.FormatFloat(roundTo(v, places), 'f', -1, 64)
}

package colour

import (
	"errors"
	"testing"
)

func TestRGBRender(t *testing.T) {
	tests := []struct {
		name   string
		rgb    RGB
		format Format
		want   string
	}{
		{name: "hex", rgb: RGB{R: 31, G: 119, B: 180}, format: FormatHex, want: "#1f77b4"},
		{name: "hex black", rgb: RGB{}, format: FormatHex, want: "#000000"},
		{name: "rgb", rgb: RGB{R: 31, G: 119, B: 180}, format: FormatRGB, want: "rgb(31, 119, 180)"},
		{name: "rgba", rgb: RGB{R: 31, G: 119, B: 180}, format: FormatRGBA, want: "rgba(31, 119, 180, 1)"},
		{name: "hsl red", rgb: RGB{R: 255}, format: FormatHSL, want: "hsl(0, 100%, 50%)"},
		{name: "hsl green", rgb: RGB{G: 255}, format: FormatHSL, want: "hsl(120, 100%, 50%)"},
		{name: "hsl white", rgb: RGB{R: 255, G: 255, B: 255}, format: FormatHSL, want: "hsl(0, 0%, 100%)"},
		{name: "hsl fractional", rgb: RGB{R: 31, G: 119, B: 180}, format: FormatHSL, want: "hsl(204.56, 70.62%, 41.37%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rgb.Render(tt.format); got != tt.want {
				t.Errorf("Render(%s) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestPointRGB(t *testing.T) {
	tests := []struct {
		name  string
		point Point
		want  RGB
	}{
		{name: "rounds to nearest", point: Point{R: 30.5, G: 119.49, B: 179.7}, want: RGB{R: 31, G: 119, B: 180}},
		{name: "clamps", point: Point{R: -4, G: 260, B: 255.4}, want: RGB{R: 0, G: 255, B: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.point.RGB(); got != tt.want {
				t.Errorf("RGB() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"hex", "HEX", " rgb ", "Rgba", "hsl"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseFormat("cmyk"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("ParseFormat(cmyk) error = %v, want ErrInvalidOption", err)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		count, total int
		want         float64
	}{
		{count: 1, total: 1, want: 100},
		{count: 1, total: 3, want: 33.3333},
		{count: 2, total: 3, want: 66.6667},
		{count: 0, total: 5, want: 0},
		{count: 3, total: 0, want: 0},
	}

	for _, tt := range tests {
		if got := Percentage(tt.count, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %v, want %v", tt.count, tt.total, got, tt.want)
		}
	}
}

func TestFormatCluster(t *testing.T) {
	c := Cluster{Centroid: Point{R: 31.2, G: 118.8, B: 180}, Count: 25}

	got := FormatCluster(c, 100, FormatHex, true)
	if got.Value != "#1f77b4" {
		t.Errorf("Value = %q, want #1f77b4", got.Value)
	}
	if got.Percentage == nil || *got.Percentage != 25 {
		t.Errorf("Percentage = %v, want 25", got.Percentage)
	}

	got = FormatCluster(c, 100, FormatRGB, false)
	if got.Value != "rgb(31, 119, 180)" {
		t.Errorf("Value = %q, want rgb(31, 119, 180)", got.Value)
	}
	if got.Percentage != nil {
		t.Errorf("Percentage = %v, want nil", *got.Percentage)
	}
}

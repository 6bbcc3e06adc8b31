package colour

import (
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToRGB(t *testing.T) {
	tests := []struct {
		name  string
		color color.Color
		want  RGB
	}{
		{
			name:  "red",
			color: color.RGBA{R: 255, G: 0, B: 0, A: 255},
			want:  RGB{R: 255, G: 0, B: 0},
		},
		{
			name:  "green",
			color: color.RGBA{R: 0, G: 255, B: 0, A: 255},
			want:  RGB{R: 0, G: 255, B: 0},
		},
		{
			name:  "blue",
			color: color.RGBA{R: 0, G: 0, B: 255, A: 255},
			want:  RGB{R: 0, G: 0, B: 255},
		},
		{
			name:  "white",
			color: color.RGBA{R: 255, G: 255, B: 255, A: 255},
			want:  RGB{R: 255, G: 255, B: 255},
		},
		{
			name:  "black",
			color: color.RGBA{R: 0, G: 0, B: 0, A: 255},
			want:  RGB{R: 0, G: 0, B: 0},
		},
		{
			name:  "translucent keeps straight channels",
			color: color.NRGBA{R: 200, G: 100, B: 50, A: 128},
			want:  RGB{R: 200, G: 100, B: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToRGB(tt.color)
			if got != tt.want {
				t.Errorf("ToRGB() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRGBHex(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want string
	}{
		{
			name: "red",
			rgb:  RGB{R: 255, G: 0, B: 0},
			want: "#ff0000",
		},
		{
			name: "green",
			rgb:  RGB{R: 0, G: 255, B: 0},
			want: "#00ff00",
		},
		{
			name: "blue",
			rgb:  RGB{R: 0, G: 0, B: 255},
			want: "#0000ff",
		},
		{
			name: "white",
			rgb:  RGB{R: 255, G: 255, B: 255},
			want: "#ffffff",
		},
		{
			name: "black",
			rgb:  RGB{R: 0, G: 0, B: 0},
			want: "#000000",
		},
		{
			name: "grey",
			rgb:  RGB{R: 128, G: 128, B: 128},
			want: "#808080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rgb.Hex()
			if got != tt.want {
				t.Errorf("Hex() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRGBString(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want string
	}{
		{
			name: "red",
			rgb:  RGB{R: 255, G: 0, B: 0},
			want: "rgb(255, 0, 0)",
		},
		{
			name: "green",
			rgb:  RGB{R: 0, G: 255, B: 0},
			want: "rgb(0, 255, 0)",
		},
		{
			name: "blue",
			rgb:  RGB{R: 0, G: 0, B: 255},
			want: "rgb(0, 0, 255)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rgb.String()
			if got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPointDistance(t *testing.T) {
	a := Point{R: 0, G: 0, B: 0}
	b := Point{R: 3, G: 4, B: 12}
	if got := a.Distance(b); got != 13 {
		t.Errorf("Distance() = %v, want 13", got)
	}
	if got := b.Distance(a); got != 13 {
		t.Errorf("Distance() is not symmetric: %v", got)
	}
	if got := b.Distance(b); got != 0 {
		t.Errorf("Distance() to self = %v, want 0", got)
	}
}

func TestClampChannel(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{in: -4, want: 0},
		{in: 0.49, want: 0},
		{in: 127.5, want: 128},
		{in: 254.6, want: 255},
		{in: 300, want: 255},
		{in: math.NaN(), want: 0},
	}
	for _, tt := range tests {
		if got := clampChannel(tt.in); got != tt.want {
			t.Errorf("clampChannel(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestUniquePoints(t *testing.T) {
	samples := []RGB{{R: 1}, {G: 2}, {R: 1}, {B: 3}, {G: 2}, {R: 1}}
	want := []weightedPoint{
		{Point: Point{R: 1}, weight: 3},
		{Point: Point{G: 2}, weight: 2},
		{Point: Point{B: 3}, weight: 1},
	}
	got := uniquePoints(samples)
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(weightedPoint{})); diff != "" {
		t.Errorf("uniquePoints() mismatch (-want +got):\n%s", diff)
	}
}

func TestTotalCount(t *testing.T) {
	if got := TotalCount(nil); got != 0 {
		t.Errorf("TotalCount(nil) = %d, want 0", got)
	}
	clusters := []Cluster{{Count: 5}, {Count: 0}, {Count: 7}}
	if got := TotalCount(clusters); got != 12 {
		t.Errorf("TotalCount() = %d, want 12", got)
	}
}

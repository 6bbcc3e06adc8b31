// Package colour implements dominant colour extraction: pixel sampling,
// clustering in RGB space, ranking and output formatting.
package colour

import (
	"fmt"
	"image/color"
	"math"
)

// RGB represents a single 8-bit pixel sample.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Point returns the sample as a position in continuous RGB space.
func (rgb RGB) Point() Point {
	return Point{R: float64(rgb.R), G: float64(rgb.G), B: float64(rgb.B)}
}

// ToRGB converts a color.Color to RGB, discarding alpha without
// premultiplication.
func ToRGB(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// Point is a position in RGB colour space with floating point channels.
type Point struct {
	R, G, B float64
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(other Point) float64 {
	return math.Sqrt(p.distanceSq(other))
}

func (p Point) distanceSq(other Point) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return dr*dr + dg*dg + db*db
}

// RGB rounds each channel to the nearest integer and clamps it to [0, 255].
func (p Point) RGB() RGB {
	return RGB{R: clampChannel(p.R), G: clampChannel(p.G), B: clampChannel(p.B)}
}

func clampChannel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

// Cluster is one group of samples produced by a clustering run.
type Cluster struct {
	// Centroid is the representative colour of the cluster.
	Centroid Point
	// Count is the number of samples assigned to the cluster.
	Count int
}

// TotalCount returns the number of samples across all clusters.
func TotalCount(clusters []Cluster) int {
	total := 0
	for _, c := range clusters {
		total += c.Count
	}
	return total
}

// weightedPoint is a distinct sample colour and how often it occurs.
type weightedPoint struct {
	Point
	weight int
}

// uniquePoints collapses samples into distinct colours in first-seen order.
// Clustering the weighted distinct colours is equivalent to clustering every
// sample.
func uniquePoints(samples []RGB) []weightedPoint {
	index := make(map[RGB]int)
	points := make([]weightedPoint, 0)
	for _, s := range samples {
		if i, ok := index[s]; ok {
			points[i].weight++
			continue
		}
		index[s] = len(points)
		points = append(points, weightedPoint{Point: s.Point(), weight: 1})
	}
	return points
}

package colour

import (
	"cmp"
	"fmt"
	"math"
	"math/rand"
	"slices"
)

// Mean shift defaults.
const (
	// DefaultBandwidthQuantile selects which nearest neighbour distance
	// estimates the bandwidth: 0.2 means the neighbour one fifth of the way
	// through the estimation subsample.
	DefaultBandwidthQuantile = 0.2

	// DefaultBandwidthSamples is the size of the subsample used to estimate
	// the bandwidth.
	DefaultBandwidthSamples = 500

	// DefaultFallbackBandwidth is used when estimation yields a
	// non-positive or undefined bandwidth, for example on a single colour.
	DefaultFallbackBandwidth = 30.0

	// DefaultMeanShiftMaxIterations caps the ascent of a single seed.
	DefaultMeanShiftMaxIterations = 300

	// DefaultMeanShiftSeed seeds the bandwidth estimation subsample.
	DefaultMeanShiftSeed int64 = 42
)

// MeanShiftConfig configures a MeanShiftClusterer. Zero values select
// defaults; a zero Bandwidth means estimate it from the samples.
type MeanShiftConfig struct {
	Bandwidth         float64
	Quantile          float64
	EstimateSamples   int
	FallbackBandwidth float64
	MaxIterations     int
	Seed              int64
}

// MeanShiftClusterer implements Clusterer using mean shift with a flat
// kernel and bin seeding. The number of clusters depends on the data and may
// exceed the number of colours requested.
//
// Mean shift is considerably more expensive than k-means: every seed climbs
// the sample density with a neighbourhood query per step.
type MeanShiftClusterer struct {
	cfg MeanShiftConfig
}

// NewMeanShiftClusterer creates a MeanShiftClusterer.
func NewMeanShiftClusterer(cfg MeanShiftConfig) (*MeanShiftClusterer, error) {
	if cfg.Bandwidth < 0 || math.IsNaN(cfg.Bandwidth) {
		return nil, fmt.Errorf("%w: bandwidth must be positive, got %v", ErrInvalidOption, cfg.Bandwidth)
	}
	if cfg.Quantile < 0 || cfg.Quantile > 1 {
		return nil, fmt.Errorf("%w: quantile must be within [0, 1], got %v", ErrInvalidOption, cfg.Quantile)
	}
	if cfg.Quantile == 0 {
		cfg.Quantile = DefaultBandwidthQuantile
	}
	if cfg.EstimateSamples <= 0 {
		cfg.EstimateSamples = DefaultBandwidthSamples
	}
	if cfg.FallbackBandwidth <= 0 {
		cfg.FallbackBandwidth = DefaultFallbackBandwidth
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMeanShiftMaxIterations
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultMeanShiftSeed
	}
	return &MeanShiftClusterer{cfg: cfg}, nil
}

// Cluster finds the density modes of the samples and assigns every sample to
// its nearest mode. Clusters are returned in descending seed density order.
func (c *MeanShiftClusterer) Cluster(samples []RGB) (*Clustering, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	bandwidth := c.cfg.Bandwidth
	if bandwidth == 0 {
		bandwidth = c.EstimateBandwidth(samples)
	}

	points := uniquePoints(samples)
	index := newCellIndex(points, bandwidth)
	seeds := binSeeds(points, bandwidth, len(samples))

	stopThreshold := 1e-3 * bandwidth
	converged := true
	iterations := 0
	modes := make([]mode, 0, len(seeds))

	for _, seed := range seeds {
		m, steps, ok := c.climb(seed, index, bandwidth, stopThreshold)
		iterations = max(iterations, steps)
		if steps >= c.cfg.MaxIterations {
			converged = false
		}
		if ok {
			modes = append(modes, m)
		}
	}
	if len(modes) == 0 {
		return nil, fmt.Errorf("no sample within bandwidth %.4f of any seed", bandwidth)
	}

	centers := dedupeModes(modes, bandwidth)

	clusters := make([]Cluster, len(centers))
	for i, center := range centers {
		clusters[i].Centroid = center
	}
	for _, p := range points {
		clusters[nearest(p.Point, centers)].Count += p.weight
	}

	return &Clustering{
		Clusters:   clusters,
		Iterations: iterations,
		Converged:  converged,
	}, nil
}

// EstimateBandwidth returns the mean distance from each point of a seeded
// subsample to its quantile-th nearest neighbour within the subsample. A
// non-positive or undefined estimate yields the fallback bandwidth.
func (c *MeanShiftClusterer) EstimateBandwidth(samples []RGB) float64 {
	subset := c.subsample(samples)
	if len(subset) == 0 {
		return c.cfg.FallbackBandwidth
	}

	neighbours := max(1, int(float64(len(subset))*c.cfg.Quantile))
	distances := make([]float64, len(subset))
	total := 0.0
	for _, p := range subset {
		for j, q := range subset {
			distances[j] = p.Distance(q)
		}
		slices.Sort(distances)
		total += distances[neighbours-1]
	}

	bandwidth := total / float64(len(subset))
	if bandwidth <= 0 || math.IsNaN(bandwidth) {
		return c.cfg.FallbackBandwidth
	}
	return bandwidth
}

// subsample picks up to EstimateSamples samples without replacement using a
// partial Fisher-Yates shuffle driven by the configured seed.
func (c *MeanShiftClusterer) subsample(samples []RGB) []Point {
	n := len(samples)
	if n <= c.cfg.EstimateSamples {
		points := make([]Point, n)
		for i, s := range samples {
			points[i] = s.Point()
		}
		return points
	}

	rng := rand.New(rand.NewSource(c.cfg.Seed)) // #nosec G404 -- deterministic seeding, not security sensitive
	picked := make(map[int]int)                 // swapped-out positions of the virtual permutation
	at := func(i int) int {
		if v, ok := picked[i]; ok {
			return v
		}
		return i
	}

	points := make([]Point, c.cfg.EstimateSamples)
	for i := range points {
		j := i + rng.Intn(n-i)
		vi, vj := at(i), at(j)
		picked[i], picked[j] = vj, vi
		points[i] = samples[vj].Point()
	}
	return points
}

// mode is a converged seed: its position and the sample mass within one
// bandwidth of it.
type mode struct {
	center Point
	mass   int
}

// climb shifts a seed to the mean of the samples within bandwidth until the
// shift falls below stopThreshold or the iteration cap is reached. It reports
// false when the seed has no samples in reach.
func (c *MeanShiftClusterer) climb(seed Point, index *cellIndex, bandwidth, stopThreshold float64) (mode, int, bool) {
	current := seed
	mass := 0
	steps := 0
	for {
		var sum Point
		weight := 0
		index.within(current, bandwidth, func(p weightedPoint) {
			w := float64(p.weight)
			sum.R += p.R * w
			sum.G += p.G * w
			sum.B += p.B * w
			weight += p.weight
		})
		if weight == 0 {
			break
		}
		mass = weight

		previous := current
		current = Point{R: sum.R / float64(weight), G: sum.G / float64(weight), B: sum.B / float64(weight)}
		steps++
		if current.Distance(previous) <= stopThreshold || steps >= c.cfg.MaxIterations {
			break
		}
	}
	return mode{center: current, mass: mass}, steps, mass > 0
}

// binSeeds snaps points onto a grid with cell size bandwidth and returns one
// seed per occupied cell. When binning does not reduce the number of seeds
// below the sample count, the points themselves are used.
func binSeeds(points []weightedPoint, bandwidth float64, sampleCount int) []Point {
	seen := make(map[cellKey]bool)
	seeds := make([]Point, 0)
	for _, p := range points {
		key := cellKey{
			r: int(math.RoundToEven(p.R / bandwidth)),
			g: int(math.RoundToEven(p.G / bandwidth)),
			b: int(math.RoundToEven(p.B / bandwidth)),
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		seeds = append(seeds, Point{
			R: float64(key.r) * bandwidth,
			G: float64(key.g) * bandwidth,
			B: float64(key.b) * bandwidth,
		})
	}

	if len(seeds) == sampleCount {
		seeds = seeds[:0]
		for _, p := range points {
			seeds = append(seeds, p.Point)
		}
	}
	return seeds
}

// dedupeModes orders modes by mass (then position) descending and drops
// every mode within bandwidth of a stronger one.
func dedupeModes(modes []mode, bandwidth float64) []Point {
	slices.SortStableFunc(modes, func(a, b mode) int {
		return cmp.Or(
			cmp.Compare(b.mass, a.mass),
			cmp.Compare(b.center.R, a.center.R),
			cmp.Compare(b.center.G, a.center.G),
			cmp.Compare(b.center.B, a.center.B),
		)
	})

	centers := make([]Point, 0, len(modes))
	for _, m := range modes {
		duplicate := false
		for _, kept := range centers {
			if m.center.Distance(kept) <= bandwidth {
				duplicate = true
				break
			}
		}
		if !duplicate {
			centers = append(centers, m.center)
		}
	}
	return centers
}

// cellKey addresses one cube of a uniform grid over RGB space.
type cellKey struct {
	r, g, b int
}

// cellIndex buckets points into cubes of side size so that a radius query
// with radius <= size only inspects the 27 cubes around the query point.
type cellIndex struct {
	size  float64
	cells map[cellKey][]weightedPoint
}

func newCellIndex(points []weightedPoint, size float64) *cellIndex {
	idx := &cellIndex{size: size, cells: make(map[cellKey][]weightedPoint)}
	for _, p := range points {
		key := idx.key(p.Point)
		idx.cells[key] = append(idx.cells[key], p)
	}
	return idx
}

func (idx *cellIndex) key(p Point) cellKey {
	return cellKey{
		r: int(math.Floor(p.R / idx.size)),
		g: int(math.Floor(p.G / idx.size)),
		b: int(math.Floor(p.B / idx.size)),
	}
}

// within calls fn for every point no further than radius from center.
func (idx *cellIndex) within(center Point, radius float64, fn func(weightedPoint)) {
	origin := idx.key(center)
	radiusSq := radius * radius
	for dr := -1; dr <= 1; dr++ {
		for dg := -1; dg <= 1; dg++ {
			for db := -1; db <= 1; db++ {
				key := cellKey{r: origin.r + dr, g: origin.g + dg, b: origin.b + db}
				for _, p := range idx.cells[key] {
					if p.distanceSq(center) <= radiusSq {
						fn(p)
					}
				}
			}
		}
	}
}

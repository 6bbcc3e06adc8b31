package colour

import (
	"fmt"
	"math/rand"
)

// K-means defaults.
const (
	// DefaultK is the number of clusters used when none is given.
	DefaultK = 3

	// MaxK is the largest cluster count accepted.
	MaxK = 256

	// DefaultKMeansSeed seeds centroid initialisation so identical input
	// always produces identical output.
	DefaultKMeansSeed int64 = 42

	// DefaultKMeansMaxIterations caps the Lloyd iterations of a single run.
	DefaultKMeansMaxIterations = 300

	// DefaultKMeansRestarts is the number of independently initialised runs.
	// The run with the lowest inertia is kept.
	DefaultKMeansRestarts = 10

	// DefaultKMeansTolerance stops a run once the total squared centroid
	// movement of an iteration is at most this fraction of the mean channel
	// variance of the samples.
	DefaultKMeansTolerance = 1e-4
)

// KMeansConfig configures a KMeansClusterer. Zero values select defaults
// for everything except K.
type KMeansConfig struct {
	K             int
	Seed          int64
	MaxIterations int
	Restarts      int
	Tolerance     float64
}

// KMeansClusterer implements Clusterer using k-means with k-means++
// initialisation.
//
// Each restart costs O(iterations * K * distinct colours). Noisy photographs
// have close to one distinct colour per sample, so the centroid tolerance
// usually ends a run long before MaxIterations.
type KMeansClusterer struct {
	k             int
	seed          int64
	maxIterations int
	restarts      int
	tolerance     float64
}

// NewKMeansClusterer creates a KMeansClusterer. K must be between 1 and
// MaxK.
func NewKMeansClusterer(cfg KMeansConfig) (*KMeansClusterer, error) {
	if cfg.K < 1 || cfg.K > MaxK {
		return nil, fmt.Errorf("%w: k must be between 1 and %d, got %d", ErrInvalidOption, MaxK, cfg.K)
	}
	c := &KMeansClusterer{
		k:             cfg.K,
		seed:          cfg.Seed,
		maxIterations: cfg.MaxIterations,
		restarts:      cfg.Restarts,
		tolerance:     cfg.Tolerance,
	}
	if c.seed == 0 {
		c.seed = DefaultKMeansSeed
	}
	if c.maxIterations <= 0 {
		c.maxIterations = DefaultKMeansMaxIterations
	}
	if c.restarts <= 0 {
		c.restarts = DefaultKMeansRestarts
	}
	if c.tolerance <= 0 {
		c.tolerance = DefaultKMeansTolerance
	}
	return c, nil
}

// K returns the number of clusters produced.
func (c *KMeansClusterer) K() int {
	return c.k
}

// Cluster runs k-means over the samples and returns exactly K clusters.
// Clusters that attract no samples are kept with a zero count. When there
// are fewer distinct colours than K, duplicate centroids are allowed.
func (c *KMeansClusterer) Cluster(samples []RGB) (*Clustering, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	points := uniquePoints(samples)
	rng := rand.New(rand.NewSource(c.seed)) // #nosec G404 -- deterministic seeding, not security sensitive

	tol := c.tolerance * meanChannelVariance(points)

	var best *kmeansRun
	for range c.restarts {
		run := c.run(points, rng, tol)
		if best == nil || run.inertia < best.inertia {
			best = run
		}
	}

	clusters := make([]Cluster, c.k)
	for i, centroid := range best.centroids {
		clusters[i].Centroid = centroid
	}
	for i, p := range points {
		clusters[best.assignments[i]].Count += p.weight
	}

	return &Clustering{
		Clusters:   clusters,
		Iterations: best.iterations,
		Converged:  best.converged,
	}, nil
}

// kmeansRun is the state of one initialise-and-iterate pass.
type kmeansRun struct {
	centroids   []Point
	assignments []int
	inertia     float64
	iterations  int
	converged   bool
}

// run performs one k-means pass: k-means++ initialisation followed by Lloyd
// iterations until no assignment changes, the centroids move by at most tol in
// total, or the iteration cap is reached.
func (c *KMeansClusterer) run(points []weightedPoint, rng *rand.Rand, tol float64) *kmeansRun {
	run := &kmeansRun{
		centroids:   c.initializeCentroidsKMeansPlusPlus(points, rng),
		assignments: make([]int, len(points)),
	}
	for i := range run.assignments {
		run.assignments[i] = -1
	}

	for run.iterations < c.maxIterations {
		run.iterations++
		if !run.assign(points) {
			run.converged = true
			break
		}
		moved := recalculateCentroids(points, run.assignments, run.centroids)
		shift := 0.0
		for i := range moved {
			shift += moved[i].distanceSq(run.centroids[i])
		}
		run.centroids = moved
		if shift <= tol {
			run.converged = true
			break
		}
	}

	// The centroids may have moved after the last assignment; realign so
	// counts describe the returned centroids.
	run.assign(points)

	for i, p := range points {
		run.inertia += float64(p.weight) * p.distanceSq(run.centroids[run.assignments[i]])
	}
	return run
}

// assign moves every point to its nearest centroid and reports whether any
// assignment changed.
func (r *kmeansRun) assign(points []weightedPoint) bool {
	changed := false
	for i, p := range points {
		n := nearest(p.Point, r.centroids)
		if r.assignments[i] != n {
			r.assignments[i] = n
			changed = true
		}
	}
	return changed
}

// initializeCentroidsKMeansPlusPlus initializes centroids using k-means++.
// Each point is chosen with probability proportional to its weight times its
// squared distance from the nearest centroid already chosen.
func (c *KMeansClusterer) initializeCentroidsKMeansPlusPlus(points []weightedPoint, rng *rand.Rand) []Point {
	centroids := make([]Point, 0, c.k)

	total := 0
	for _, p := range points {
		total += p.weight
	}

	// First centroid: uniform over samples.
	target := rng.Intn(total)
	for _, p := range points {
		target -= p.weight
		if target < 0 {
			centroids = append(centroids, p.Point)
			break
		}
	}

	distances := make([]float64, len(points))
	for len(centroids) < c.k {
		totalDistance := 0.0
		for i, p := range points {
			d := p.distanceSq(centroids[nearest(p.Point, centroids)])
			distances[i] = d * float64(p.weight)
			totalDistance += distances[i]
		}

		// Every point coincides with a centroid: duplicate the last one.
		if totalDistance == 0 {
			centroids = append(centroids, centroids[len(centroids)-1])
			continue
		}

		target := rng.Float64() * totalDistance
		cumulative := 0.0
		chosen := -1
		for i, d := range distances {
			if d == 0 {
				continue
			}
			chosen = i
			cumulative += d
			if cumulative >= target {
				break
			}
		}
		centroids = append(centroids, points[chosen].Point)
	}

	return centroids
}

// recalculateCentroids moves each centroid to the weighted mean of its
// assigned points. Centroids with no points stay where they are.
func recalculateCentroids(points []weightedPoint, assignments []int, previous []Point) []Point {
	sums := make([]Point, len(previous))
	counts := make([]float64, len(previous))

	for i, p := range points {
		cluster := assignments[i]
		w := float64(p.weight)
		sums[cluster].R += p.R * w
		sums[cluster].G += p.G * w
		sums[cluster].B += p.B * w
		counts[cluster] += w
	}

	centroids := make([]Point, len(previous))
	for i := range previous {
		if counts[i] == 0 {
			centroids[i] = previous[i]
			continue
		}
		centroids[i] = Point{
			R: sums[i].R / counts[i],
			G: sums[i].G / counts[i],
			B: sums[i].B / counts[i],
		}
	}
	return centroids
}

// meanChannelVariance returns the weighted variance of the points averaged
// over the three channels.
func meanChannelVariance(points []weightedPoint) float64 {
	var sum, sumSq Point
	total := 0.0
	for _, p := range points {
		w := float64(p.weight)
		sum.R += p.R * w
		sum.G += p.G * w
		sum.B += p.B * w
		sumSq.R += p.R * p.R * w
		sumSq.G += p.G * p.G * w
		sumSq.B += p.B * p.B * w
		total += w
	}
	if total == 0 {
		return 0
	}
	variance := func(s, sq float64) float64 {
		mean := s / total
		return max(0, sq/total-mean*mean)
	}
	return (variance(sum.R, sumSq.R) + variance(sum.G, sumSq.G) + variance(sum.B, sumSq.B)) / 3
}

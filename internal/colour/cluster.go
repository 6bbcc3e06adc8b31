package colour

import (
	"fmt"
	"math"
)

// Clusterer defines the interface for colour clustering algorithms.
type Clusterer interface {
	// Cluster partitions samples into clusters. The member counts of the
	// returned clusters sum to len(samples). Empty input fails with
	// ErrEmptyInput.
	Cluster(samples []RGB) (*Clustering, error)
}

// Clustering is the outcome of a single clustering run.
type Clustering struct {
	Clusters []Cluster

	// Iterations is the number of refinement iterations performed. For
	// k-means with restarts it is the iteration count of the winning run.
	Iterations int

	// Converged is false when the iteration cap was reached first. The
	// clusters are still the best available at the cap.
	Converged bool
}

// Warning returns ErrNotConverged wrapped with detail when the run hit its
// iteration cap, and nil otherwise.
func (c *Clustering) Warning() error {
	if c.Converged {
		return nil
	}
	return fmt.Errorf("%w after %d iterations", ErrNotConverged, c.Iterations)
}

// nearest returns the index of the closest centroid. Ties go to the lowest
// index.
func nearest(p Point, centroids []Point) int {
	minDist := math.MaxFloat64
	idx := 0
	for i, c := range centroids {
		if d := p.distanceSq(c); d < minDist {
			minDist = d
			idx = i
		}
	}
	return idx
}

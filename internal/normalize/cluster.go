package normalize

import (
	"github.com/forgeworks/assetforge/pkg/math"
)

// Tunables for outlier-filtered centroid refinement. Empirically chosen;
// candidates for data-driven recalibration.
const (
	// OutlierRadius is the maximum distance from the initial centroid a
	// point may have and still count toward the refined centroid.
	OutlierRadius = 0.2

	// MinSurvivorFraction is the smallest share of points that may survive
	// outlier filtering before the filter is considered unreliable and the
	// unfiltered centroid is kept instead.
	MinSurvivorFraction = 0.3

	centroidDecimals = 3
)

// ClusterPoints refines a set of candidate grip points into a single
// representative point: compute the centroid, discard points farther than
// OutlierRadius from it, and recompute from the survivors — unless fewer
// than MinSurvivorFraction of the points survive, in which case the
// unfiltered centroid stands. The result is rounded to three decimals.
// Empty input returns the origin exactly.
func ClusterPoints(points []math.Vec3) math.Vec3 {
	if len(points) == 0 {
		return math.Vec3{}
	}

	centroid := meanPoint(points)

	survivors := points[:0:0]
	for _, p := range points {
		if p.Distance(centroid) <= OutlierRadius {
			survivors = append(survivors, p)
		}
	}

	if float64(len(survivors)) >= MinSurvivorFraction*float64(len(points)) && len(survivors) > 0 {
		centroid = meanPoint(survivors)
	}

	return centroid.Round(centroidDecimals)
}

func meanPoint(points []math.Vec3) math.Vec3 {
	var sum math.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points)))
}

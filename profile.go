// Package profile renders stylized elevation profiles of the path between two
// geographic coordinates.
package profile

import (
	"fmt"
	"math"
)

// FallbackLabel is the terrain label used when reverse geocoding fails or
// yields no usable name.
const FallbackLabel = "Terrain"

// A Coord is a geographic coordinate in decimal degrees on WGS84.
type Coord struct {
	Lon float64
	Lat float64
}

// A SampledPoint is a point sampled along a path. Distance is the geodesic
// distance from the path's start in meters.
type SampledPoint struct {
	Coord
	Distance float64
}

// A Sample is a sampled point with its elevation in meters. A missing
// elevation is represented by NaN. Position is 1-based, in sampling order.
type Sample struct {
	SampledPoint
	Elevation float64
	Position  int
}

// A Profile is an ordered elevation profile, one sample per sampled point, in
// sampling order.
type Profile []Sample

// NewProfile merges points with their elevations by index. The two slices
// must have the same length: distance and elevation values are index-aligned
// and a mismatch cannot be repaired by truncation or padding.
func NewProfile(points []SampledPoint, elevations []float64) (Profile, error) {
	if len(elevations) != len(points) {
		return nil, fmt.Errorf("expected %d elevations, got %d", len(points), len(elevations))
	}
	profile := make(Profile, len(points))
	for i, point := range points {
		profile[i] = Sample{
			SampledPoint: point,
			Elevation:    elevations[i],
			Position:     i + 1,
		}
	}
	return profile, nil
}

// MaxElevationSample returns the sample with the highest elevation. Samples
// with missing elevations are excluded, and ties are broken by sampling
// order. The second return value is false if every elevation is missing.
func (p Profile) MaxElevationSample() (Sample, bool) {
	var max Sample
	found := false
	for _, sample := range p {
		if math.IsNaN(sample.Elevation) {
			continue
		}
		if !found || sample.Elevation > max.Elevation {
			max = sample
			found = true
		}
	}
	return max, found
}

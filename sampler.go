package profile

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// SampleCount is the default number of points sampled along a path.
const SampleCount = 1000

// collapseAngle is the arc length, in radians on the unit sphere, below which
// the sampling primitive collapses a path to a single point. It corresponds
// to roughly a centimeter on the ground.
const collapseAngle = 1e-9

// A PathSampler samples evenly spaced points along the geodesic between two
// coordinates.
type PathSampler struct {
	count int
}

// A PathSamplerOption sets an option on a PathSampler.
type PathSamplerOption func(*PathSampler)

// WithSampleCount sets the number of points sampled along a path.
func WithSampleCount(count int) PathSamplerOption {
	return func(s *PathSampler) {
		s.count = count
	}
}

// NewPathSampler returns a new PathSampler with the given options.
func NewPathSampler(options ...PathSamplerOption) *PathSampler {
	s := &PathSampler{
		count: SampleCount,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Sample returns evenly spaced points along the great-circle arc from start
// to end, inclusive of both endpoints, each with its geodesic distance from
// start, together with the total start-to-end geodesic distance. Coincident
// endpoints are rejected: a zero-length path has no direction to sample
// along.
func (s *PathSampler) Sample(start, end Coord) ([]SampledPoint, float64, error) {
	if s.count < 2 {
		return nil, 0, fmt.Errorf("sample count %d is less than 2", s.count)
	}
	totalDistance, err := Distance(start, end)
	if err != nil {
		return nil, 0, err
	}
	if totalDistance == 0 {
		return nil, 0, fmt.Errorf("start and end coincide at (%v, %v)", start.Lon, start.Lat)
	}

	geometry := samplePathGeometry(start, end, s.count)
	coords, err := flattenPathGeometry(geometry, s.count)
	if err != nil {
		return nil, 0, err
	}

	points := make([]SampledPoint, len(coords))
	for i, coord := range coords {
		distance, err := Distance(start, coord)
		if err != nil {
			return nil, 0, err
		}
		points[i] = SampledPoint{
			Coord:    coord,
			Distance: distance,
		}
	}
	return points, totalDistance, nil
}

type pathGeometryKind int

const (
	pathGeometrySinglePoint pathGeometryKind = iota
	pathGeometryPointList
	pathGeometryCollection
)

// A pathGeometry is the raw result of sampling the connecting arc. Degenerate
// paths collapse to a single point and paths crossing the antimeridian come
// back split into a collection of segments, so consumers must flatten it
// before use.
type pathGeometry struct {
	kind     pathGeometryKind
	point    s2.Point
	points   []s2.Point
	segments [][]s2.Point
}

func samplePathGeometry(start, end Coord, count int) pathGeometry {
	a := s2.PointFromLatLng(s2.LatLngFromDegrees(start.Lat, start.Lon))
	b := s2.PointFromLatLng(s2.LatLngFromDegrees(end.Lat, end.Lon))
	if a.Distance(b).Radians() < collapseAngle {
		return pathGeometry{
			kind:  pathGeometrySinglePoint,
			point: a,
		}
	}

	points := make([]s2.Point, count)
	for i := range points {
		t := float64(i) / float64(count-1)
		points[i] = s2.Interpolate(t, a, b)
	}

	// A path crossing the antimeridian is split there into two segments,
	// mirroring how geometries are cut when wrapped to [-180, 180].
	for i := 1; i < len(points); i++ {
		previousLon := s2.LatLngFromPoint(points[i-1]).Lng.Degrees()
		lon := s2.LatLngFromPoint(points[i]).Lng.Degrees()
		if math.Abs(lon-previousLon) > 180 {
			return pathGeometry{
				kind:     pathGeometryCollection,
				segments: [][]s2.Point{points[:i], points[i:]},
			}
		}
	}

	return pathGeometry{
		kind:   pathGeometryPointList,
		points: points,
	}
}

// flattenPathGeometry normalizes a pathGeometry to a flat ordered list of
// exactly count coordinates. Any shape that does not flatten to exactly count
// points is an error, never silently truncated or padded.
func flattenPathGeometry(geometry pathGeometry, count int) ([]Coord, error) {
	switch geometry.kind {
	case pathGeometrySinglePoint:
		coord := coordFromPoint(geometry.point)
		coords := make([]Coord, count)
		for i := range coords {
			coords[i] = coord
		}
		return coords, nil
	case pathGeometryPointList:
		if len(geometry.points) != count {
			return nil, fmt.Errorf("expected %d sampled points, got %d", count, len(geometry.points))
		}
		coords := make([]Coord, 0, count)
		for _, point := range geometry.points {
			coords = append(coords, coordFromPoint(point))
		}
		return coords, nil
	case pathGeometryCollection:
		total := 0
		for _, segment := range geometry.segments {
			total += len(segment)
		}
		if total != count {
			return nil, fmt.Errorf("expected %d sampled points, got %d across %d segments", count, total, len(geometry.segments))
		}
		coords := make([]Coord, 0, count)
		for _, segment := range geometry.segments {
			for _, point := range segment {
				coords = append(coords, coordFromPoint(point))
			}
		}
		return coords, nil
	default:
		return nil, fmt.Errorf("unrecognized path geometry kind %d", geometry.kind)
	}
}

func coordFromPoint(point s2.Point) Coord {
	latLng := s2.LatLngFromPoint(point)
	return Coord{
		Lon: latLng.Lng.Degrees(),
		Lat: latLng.Lat.Degrees(),
	}
}

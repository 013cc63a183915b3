package profile_test

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	profile "github.com/twpayne/go-elevation-profile"
)

func newTestPoints(n int) []profile.SampledPoint {
	points := make([]profile.SampledPoint, n)
	for i := range points {
		points[i] = profile.SampledPoint{
			Coord: profile.Coord{
				Lon: -78.187286 + float64(i)*0.0001,
				Lat: -0.484717,
			},
			Distance: float64(i) * 11.6,
		}
	}
	return points
}

func TestNewProfile(t *testing.T) {
	points := newTestPoints(3)
	elevations := []float64{4100, 4200, 4150}
	p, err := profile.NewProfile(points, elevations)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(p))
	for i, sample := range p {
		assert.Equal(t, i+1, sample.Position)
		assert.Equal(t, points[i], sample.SampledPoint)
		assert.Equal(t, elevations[i], sample.Elevation)
	}
}

func TestNewProfileLengthMismatch(t *testing.T) {
	_, err := profile.NewProfile(newTestPoints(3), []float64{4100, 4200})
	assert.Error(t, err)
	_, err = profile.NewProfile(newTestPoints(3), []float64{4100, 4200, 4150, 4300})
	assert.Error(t, err)
}

func TestProfileMaxElevationSample(t *testing.T) {
	for _, tc := range []struct {
		name             string
		elevations       []float64
		expectedPosition int
		expectedOK       bool
	}{
		{
			name:             "single_maximum",
			elevations:       []float64{4100, 4200, 4150, 4190},
			expectedPosition: 2,
			expectedOK:       true,
		},
		{
			name:             "tie_broken_by_sampling_order",
			elevations:       []float64{4100, 4200, 4150, 4200},
			expectedPosition: 2,
			expectedOK:       true,
		},
		{
			name:             "missing_excluded",
			elevations:       []float64{4100, math.NaN(), 4150, math.NaN()},
			expectedPosition: 3,
			expectedOK:       true,
		},
		{
			name:       "all_missing",
			elevations: []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()},
			expectedOK: false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := profile.NewProfile(newTestPoints(len(tc.elevations)), tc.elevations)
			assert.NoError(t, err)
			max, ok := p.MaxElevationSample()
			assert.Equal(t, tc.expectedOK, ok)
			if tc.expectedOK {
				assert.Equal(t, tc.expectedPosition, max.Position)
			}
		})
	}
}

func TestProfileMaxElevationSampleDeterministic(t *testing.T) {
	elevations := []float64{4100, 4200, 4150, 4200, 4000}
	for range 10 {
		p, err := profile.NewProfile(newTestPoints(len(elevations)), elevations)
		assert.NoError(t, err)
		max, ok := p.MaxElevationSample()
		assert.True(t, ok)
		assert.Equal(t, 2, max.Position)
	}
}

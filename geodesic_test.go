package profile_test

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	profile "github.com/twpayne/go-elevation-profile"
)

func TestDistance(t *testing.T) {
	for _, tc := range []struct {
		name     string
		a        profile.Coord
		b        profile.Coord
		expected float64
		delta    float64
	}{
		{
			name:     "coincident",
			a:        profile.Coord{Lon: 7.658, Lat: 45.976},
			b:        profile.Coord{Lon: 7.658, Lat: 45.976},
			expected: 0,
			delta:    0,
		},
		{
			// Vincenty's own test line, Flinders Peak to Buninyong.
			name:     "flinders_peak_to_buninyong",
			a:        profile.Coord{Lon: 144.42486789, Lat: -37.95103342},
			b:        profile.Coord{Lon: 143.92649553, Lat: -37.65282114},
			expected: 54972.271,
			delta:    0.01,
		},
		{
			name:     "antisana_traverse",
			a:        profile.Coord{Lon: -78.187286, Lat: -0.484717},
			b:        profile.Coord{Lon: -78.083248, Lat: -0.484717},
			expected: 11581,
			delta:    20,
		},
		{
			name:     "equatorial_degree",
			a:        profile.Coord{Lon: 0, Lat: 0},
			b:        profile.Coord{Lon: 1, Lat: 0},
			expected: 111319.49,
			delta:    0.01,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := profile.Distance(tc.a, tc.b)
			assert.NoError(t, err)
			assertInDelta(t, tc.expected, actual, tc.delta)

			reversed, err := profile.Distance(tc.b, tc.a)
			assert.NoError(t, err)
			assertInDelta(t, actual, reversed, 1e-6)
		})
	}
}

func TestDistanceNonNegative(t *testing.T) {
	a := profile.Coord{Lon: 8.5417, Lat: 47.3769}
	for _, b := range []profile.Coord{
		{Lon: 8.5417, Lat: 47.3770},
		{Lon: -0.1276, Lat: 51.5072},
		{Lon: 151.2093, Lat: -33.8688},
	} {
		actual, err := profile.Distance(a, b)
		assert.NoError(t, err)
		assert.True(t, actual > 0)
	}
}

func assertInDelta(t *testing.T, expected, actual, delta float64) {
	t.Helper()
	if math.Abs(expected-actual) > delta {
		t.Fatalf("expected %v to be within %v of %v", actual, delta, expected)
	}
}

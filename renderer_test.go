package profile_test

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	profile "github.com/twpayne/go-elevation-profile"
)

func newTestProfile(t *testing.T, elevations []float64) profile.Profile {
	t.Helper()
	p, err := profile.NewProfile(newTestPoints(len(elevations)), elevations)
	assert.NoError(t, err)
	return p
}

func newTestRenderer(t *testing.T, options ...profile.RendererOption) *profile.Renderer {
	t.Helper()
	renderer, err := profile.NewRenderer(append([]profile.RendererOption{
		profile.WithSize(400, 247),
		profile.WithRand(rand.New(rand.NewPCG(1, 2))),
	}, options...)...)
	assert.NoError(t, err)
	return renderer
}

func TestRendererRender(t *testing.T) {
	for _, tc := range []struct {
		name       string
		filename   string
		elevations []float64
	}{
		{
			name:       "png",
			filename:   "profile.png",
			elevations: []float64{4100, 4200, 4150, 4300, 4250},
		},
		{
			name:       "jpeg",
			filename:   "profile.jpg",
			elevations: []float64{4100, 4200, 4150, 4300, 4250},
		},
		{
			name:       "missing_samples_break_line",
			filename:   "gaps.png",
			elevations: []float64{4100, math.NaN(), 4150, 4300, math.NaN()},
		},
		{
			name:       "flat_profile",
			filename:   "flat.png",
			elevations: []float64{0, 0, 0, 0, 0},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			renderer := newTestRenderer(t)
			outputPath := filepath.Join(t.TempDir(), tc.filename)
			err := renderer.Render(newTestProfile(t, tc.elevations), "Antisana", 11581.23, outputPath)
			assert.NoError(t, err)

			f, err := os.Open(outputPath)
			assert.NoError(t, err)
			defer f.Close()
			config, _, err := image.DecodeConfig(f)
			assert.NoError(t, err)
			assert.Equal(t, 400, config.Width)
			assert.Equal(t, 247, config.Height)
		})
	}
}

func TestRendererRenderUnsupportedFormat(t *testing.T) {
	renderer := newTestRenderer(t)
	outputPath := filepath.Join(t.TempDir(), "profile.gif")
	err := renderer.Render(newTestProfile(t, []float64{4100, 4200}), "Antisana", 11581.23, outputPath)
	assert.Error(t, err)
	_, statErr := os.Stat(outputPath)
	assert.Error(t, statErr)
}

func TestRendererRenderUnwritablePath(t *testing.T) {
	renderer := newTestRenderer(t)
	outputPath := filepath.Join(t.TempDir(), "no", "such", "dir", "profile.png")
	err := renderer.Render(newTestProfile(t, []float64{4100, 4200}), "Antisana", 11581.23, outputPath)
	assert.Error(t, err)
}

func TestRendererRenderNoElevations(t *testing.T) {
	renderer := newTestRenderer(t)
	outputPath := filepath.Join(t.TempDir(), "profile.png")
	err := renderer.Render(newTestProfile(t, []float64{math.NaN(), math.NaN()}), "Antisana", 11581.23, outputPath)
	assert.Error(t, err)
}

func TestRendererRenderDeterministicAccent(t *testing.T) {
	// A single-color palette and a pinned random source make repeated
	// renders byte-identical.
	tempDir := t.TempDir()
	render := func(filename string) []byte {
		renderer := newTestRenderer(t, profile.WithPalette([]string{"#FF355E"}))
		outputPath := filepath.Join(tempDir, filename)
		err := renderer.Render(newTestProfile(t, []float64{4100, 4200, 4150}), "Antisana", 11581.23, outputPath)
		assert.NoError(t, err)
		data, err := os.ReadFile(outputPath)
		assert.NoError(t, err)
		return data
	}
	assert.Equal(t, render("first.png"), render("second.png"))
}

func TestNewRendererInvalidPalette(t *testing.T) {
	_, err := profile.NewRenderer(profile.WithPalette([]string{"not a color"}))
	assert.Error(t, err)
	_, err = profile.NewRenderer(profile.WithPalette(nil))
	assert.Error(t, err)
}

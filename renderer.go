package profile

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultPalette is the set of saturated accent hues the glow line is drawn
// in. One is picked uniformly at random per render.
var DefaultPalette = []string{
	"#FF355E",
	"#FD5B78",
	"#FF6037",
	"#FF9966",
	"#FFCC33",
	"#CCFF00",
	"#66FF66",
	"#AAF0D1",
	"#50BFE6",
	"#FF6EFF",
	"#EE34D2",
	"#FF00CC",
}

// Canvas defaults: 16.18:10 at 300 DPI over a 10 inch width.
const (
	DefaultWidth  = 3000
	DefaultHeight = 1854
)

const (
	backgroundColor = "#212946"
	axisColor       = "#08F7FE"
)

// A Renderer draws a profile as a glow-styled raster image.
type Renderer struct {
	width   int
	height  int
	palette []color.RGBA
	rand    *rand.Rand
}

// A RendererOption sets an option on a Renderer.
type RendererOption func(*Renderer) error

// WithPalette sets the accent palette as #rrggbb strings.
func WithPalette(palette []string) RendererOption {
	return func(r *Renderer) error {
		parsed, err := parsePalette(palette)
		if err != nil {
			return err
		}
		r.palette = parsed
		return nil
	}
}

// WithRand sets the random source used to pick the accent color, so callers
// that need reproducible output can supply a deterministic one.
func WithRand(rnd *rand.Rand) RendererOption {
	return func(r *Renderer) error {
		r.rand = rnd
		return nil
	}
}

// WithSize sets the canvas size in pixels.
func WithSize(width, height int) RendererOption {
	return func(r *Renderer) error {
		if width <= 0 || height <= 0 {
			return fmt.Errorf("invalid canvas size %dx%d", width, height)
		}
		r.width = width
		r.height = height
		return nil
	}
}

// NewRenderer returns a new Renderer with the given options.
func NewRenderer(options ...RendererOption) (*Renderer, error) {
	palette, err := parsePalette(DefaultPalette)
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		width:   DefaultWidth,
		height:  DefaultHeight,
		palette: palette,
	}
	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Render draws profile as a glow-styled chart, annotated with label, and
// writes it to outputPath. The x axis is the 1-based sample position, not
// meters, so terrain features stay visually evenly spaced; the x-axis title
// carries totalDistance instead. The output format is determined by the file
// extension.
func (r *Renderer) Render(profile Profile, label string, totalDistance float64, outputPath string) error {
	encode, err := imageEncoder(outputPath)
	if err != nil {
		return err
	}
	if len(profile) < 2 {
		return fmt.Errorf("profile has %d samples, need at least 2", len(profile))
	}

	minElevation, maxElevation, err := elevationRange(profile)
	if err != nil {
		return err
	}
	accent := r.palette[r.pickAccent()]

	dc := gg.NewContext(r.width, r.height)
	dc.SetHexColor(backgroundColor)
	dc.Clear()

	width := float64(r.width)
	height := float64(r.height)
	plotLeft := 0.08 * width
	plotRight := 0.97 * width
	plotTop := 0.12 * height
	plotBottom := 0.86 * height

	span := maxElevation - minElevation
	if span == 0 {
		span = 1
	}
	yMin := minElevation - 0.05*span
	yMax := maxElevation + 0.05*span
	x := func(position int) float64 {
		return plotLeft + (plotRight-plotLeft)*float64(position-1)/float64(len(profile)-1)
	}
	y := func(elevation float64) float64 {
		return plotBottom - (plotBottom-plotTop)*(elevation-yMin)/(yMax-yMin)
	}

	segments := presentSegments(profile)

	// Filled area down to the plot floor.
	setRGBA(dc, accent, 0.22)
	for _, segment := range segments {
		if len(segment) < 2 {
			continue
		}
		dc.MoveTo(x(segment[0].Position), plotBottom)
		for _, sample := range segment {
			dc.LineTo(x(sample.Position), y(sample.Elevation))
		}
		dc.LineTo(x(segment[len(segment)-1].Position), plotBottom)
		dc.ClosePath()
		dc.Fill()
	}

	// Glow passes under the crisp line.
	lineWidth := 0.0022 * height
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	for _, pass := range []struct {
		width float64
		alpha float64
	}{
		{width: 6 * lineWidth, alpha: 0.10},
		{width: 4 * lineWidth, alpha: 0.14},
		{width: 2.5 * lineWidth, alpha: 0.20},
		{width: lineWidth, alpha: 1},
	} {
		setRGBA(dc, accent, pass.alpha)
		dc.SetLineWidth(pass.width)
		for _, segment := range segments {
			if len(segment) < 2 {
				continue
			}
			dc.MoveTo(x(segment[0].Position), y(segment[0].Elevation))
			for _, sample := range segment[1:] {
				dc.LineTo(x(sample.Position), y(sample.Elevation))
			}
			dc.Stroke()
		}
	}

	gofont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	tickFace := newFace(gofont, 0.024*height)
	titleFace := newFace(gofont, 0.030*height)
	labelFace := newFace(gofont, 0.070*height)

	// Y axis only: the x axis has no ticks or labels.
	dc.SetHexColor(axisColor)
	dc.SetLineWidth(0.0012 * height)
	dc.DrawLine(plotLeft, plotTop, plotLeft, plotBottom)
	dc.Stroke()
	dc.SetFontFace(tickFace)
	step := tickStep(yMax-yMin, 5)
	for tick := math.Ceil(yMin/step) * step; tick <= yMax; tick += step {
		tickY := y(tick)
		dc.DrawLine(plotLeft-0.006*width, tickY, plotLeft, tickY)
		dc.Stroke()
		dc.DrawStringAnchored(fmt.Sprintf("%.0f m", tick), plotLeft-0.010*width, tickY, 1, 0.35)
	}

	dc.SetFontFace(titleFace)
	title := fmt.Sprintf("%.2f km / %d samples", totalDistance/1000, len(profile))
	dc.DrawStringAnchored(title, (plotLeft+plotRight)/2, 0.94*height, 0.5, 0.5)

	if label != "" {
		setRGBA(dc, accent, 1)
		dc.SetFontFace(labelFace)
		dc.DrawStringAnchored(label, width/2, 0.18*height, 0.5, 0.5)
	}

	return writeImage(dc.Image(), outputPath, encode)
}

func (r *Renderer) pickAccent() int {
	if r.rand != nil {
		return r.rand.IntN(len(r.palette))
	}
	return rand.IntN(len(r.palette))
}

// presentSegments splits profile into runs of consecutive samples with
// elevations, so missing samples break the line instead of being drawn as
// zero.
func presentSegments(profile Profile) []Profile {
	var segments []Profile
	var segment Profile
	for _, sample := range profile {
		if math.IsNaN(sample.Elevation) {
			if len(segment) > 0 {
				segments = append(segments, segment)
				segment = nil
			}
			continue
		}
		segment = append(segment, sample)
	}
	if len(segment) > 0 {
		segments = append(segments, segment)
	}
	return segments
}

func elevationRange(profile Profile) (float64, float64, error) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, sample := range profile {
		if math.IsNaN(sample.Elevation) {
			continue
		}
		min = math.Min(min, sample.Elevation)
		max = math.Max(max, sample.Elevation)
	}
	if min > max {
		return 0, 0, errors.New("profile has no elevations")
	}
	return min, max, nil
}

// tickStep returns a 1-2-5 step dividing span into roughly n intervals.
func tickStep(span float64, n int) float64 {
	raw := span / float64(n)
	magnitude := math.Pow(10, math.Floor(math.Log10(raw)))
	switch normalized := raw / magnitude; {
	case normalized < 1.5:
		return magnitude
	case normalized < 3.5:
		return 2 * magnitude
	case normalized < 7.5:
		return 5 * magnitude
	default:
		return 10 * magnitude
	}
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

func parsePalette(palette []string) ([]color.RGBA, error) {
	if len(palette) == 0 {
		return nil, errors.New("empty palette")
	}
	parsed := make([]color.RGBA, len(palette))
	for i, s := range palette {
		c, err := parseHexColor(s)
		if err != nil {
			return nil, err
		}
		parsed[i] = c
	}
	return parsed, nil
}

func parseHexColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func setRGBA(dc *gg.Context, c color.RGBA, alpha float64) {
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, alpha)
}

// imageEncoder returns the encoder for outputPath's extension.
func imageEncoder(outputPath string) (func(io.Writer, image.Image) error, error) {
	switch extension := strings.ToLower(filepath.Ext(outputPath)); extension {
	case ".png":
		return png.Encode, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: 95})
		}, nil
	default:
		return nil, fmt.Errorf("unsupported image format %q", extension)
	}
}

func writeImage(m image.Image, outputPath string, encode func(io.Writer, image.Image) error) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := encode(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

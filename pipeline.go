package profile

import (
	"context"
	"fmt"
)

// An ElevationService returns one elevation in meters per coordinate, in the
// same order. Missing elevations are NaN.
type ElevationService interface {
	Elevations(ctx context.Context, coords []Coord) ([]float64, error)
}

// A Geocoder resolves a coordinate to a structured place name.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, coord Coord) (PlaceName, error)
}

// A Pipeline runs the stages of a profile render in order: sample the path,
// fetch elevations, assemble the profile, render the image. It is constructed
// once by the entry point and owns no state across runs.
type Pipeline struct {
	sampler   *PathSampler
	elevation ElevationService
	geocoder  Geocoder
	renderer  *Renderer
	warnf     func(format string, args ...any)
}

// A PipelineOption sets an option on a Pipeline.
type PipelineOption func(*Pipeline)

// WithWarnf sets the function diagnostics are emitted through.
func WithWarnf(warnf func(format string, args ...any)) PipelineOption {
	return func(p *Pipeline) {
		p.warnf = warnf
	}
}

// NewPipeline returns a new Pipeline over the given collaborators.
func NewPipeline(sampler *PathSampler, elevation ElevationService, geocoder Geocoder, renderer *Renderer, options ...PipelineOption) *Pipeline {
	p := &Pipeline{
		sampler:   sampler,
		elevation: elevation,
		geocoder:  geocoder,
		renderer:  renderer,
		warnf:     func(format string, args ...any) {},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// A Request describes one profile render.
type Request struct {
	Start      Coord
	End        Coord
	OutputPath string
	// Label annotates the image. When empty, the highest sample is reverse
	// geocoded instead.
	Label string
}

// A Result reports what a run produced.
type Result struct {
	Profile  Profile
	Label    string
	Distance float64
}

// Run executes the pipeline once. Every stage failure is terminal except
// label resolution, which falls back to FallbackLabel.
func (p *Pipeline) Run(ctx context.Context, request Request) (*Result, error) {
	points, totalDistance, err := p.sampler.Sample(request.Start, request.End)
	if err != nil {
		return nil, err
	}

	coords := make([]Coord, len(points))
	for i, point := range points {
		coords[i] = point.Coord
	}
	elevations, err := p.elevation.Elevations(ctx, coords)
	if err != nil {
		return nil, err
	}

	profile, err := NewProfile(points, elevations)
	if err != nil {
		return nil, err
	}

	label := request.Label
	if label == "" {
		resolved, err := p.ResolveLabel(ctx, profile)
		if err != nil {
			p.warnf("reverse geocode failed: %v, using label %q", err, FallbackLabel)
			resolved = FallbackLabel
		}
		label = resolved
	}

	if err := p.renderer.Render(profile, label, totalDistance, request.OutputPath); err != nil {
		return nil, fmt.Errorf("render %s: %w", request.OutputPath, err)
	}
	return &Result{
		Profile:  profile,
		Label:    label,
		Distance: totalDistance,
	}, nil
}

// ResolveLabel reverse geocodes the profile's highest sample and picks its
// display name. The caller decides what to substitute on error.
func (p *Pipeline) ResolveLabel(ctx context.Context, profile Profile) (string, error) {
	highest, ok := profile.MaxElevationSample()
	if !ok {
		return "", fmt.Errorf("profile has no elevations")
	}
	placeName, err := p.geocoder.ReverseGeocode(ctx, highest.Coord)
	if err != nil {
		return "", err
	}
	return placeName.Label()
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	profile "github.com/twpayne/go-elevation-profile"
)

func run() error {
	elevationURL := flag.String("elevation-url", envOr("ELEVATION_URL", profile.DefaultTerrainURL), "terrain elevation service URL")
	nominatimURL := flag.String("nominatim-url", envOr("NOMINATIM_URL", profile.NominatimBaseURL), "Nominatim base URL")
	flag.Parse()

	if flag.NArg() < 4 || flag.NArg() > 6 {
		return errors.New("syntax: elevation-profile [flags] start_lon start_lat end_lon end_lat [output_path] [terrain_name]")
	}
	coords := make([]float64, 4)
	for i := range coords {
		coord, err := strconv.ParseFloat(flag.Arg(i), 64)
		if err != nil || math.IsNaN(coord) || math.IsInf(coord, 0) {
			return fmt.Errorf("argument %d: %q is not a finite decimal degree value", i+1, flag.Arg(i))
		}
		coords[i] = coord
	}
	outputPath := "elevation_profile.png"
	if flag.NArg() >= 5 {
		outputPath = flag.Arg(4)
	}
	var label string
	if flag.NArg() == 6 {
		label = flag.Arg(5)
	}

	renderer, err := profile.NewRenderer()
	if err != nil {
		return err
	}
	pipeline := profile.NewPipeline(
		profile.NewPathSampler(),
		profile.NewTerrainElevationService(profile.WithTerrainBaseURL(*elevationURL)),
		profile.NewNominatimGeocoder(profile.WithNominatimBaseURL(*nominatimURL)),
		renderer,
		profile.WithWarnf(func(format string, args ...any) {
			fmt.Printf(format+"\n", args...)
		}),
	)

	fmt.Printf("sampling %d points along the path\n", profile.SampleCount)
	result, err := pipeline.Run(context.Background(), profile.Request{
		Start:      profile.Coord{Lon: coords[0], Lat: coords[1]},
		End:        profile.Coord{Lon: coords[2], Lat: coords[3]},
		OutputPath: outputPath,
		Label:      label,
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s: %.2f km, %d samples, label %q\n", outputPath, result.Distance/1000, len(result.Profile), result.Label)
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	elevationRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_elevation_requests_total",
		Help: "The total number of elevation batch requests.",
	})
	elevationRequestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_elevation_request_errors_total",
		Help: "The total number of failed elevation batch requests.",
	})
	elevationShapeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_elevation_shape_errors_total",
		Help: "The total number of malformed elevation responses.",
	})
)

const (
	// DefaultTerrainURL is the default elevation endpoint of a locally
	// hosted terrain-tile service.
	DefaultTerrainURL = "http://localhost:5000/v1/elevation"

	// DefaultTerrainSource is the Mapzen/AWS terrain tile dataset.
	DefaultTerrainSource = "mapzen"

	// DefaultTerrainZoom is the tile zoom level elevations are read at.
	DefaultTerrainZoom = 14

	terrainCRS = "EPSG:4326"

	defaultHTTPTimeout = 30 * time.Second
)

// A TerrainElevationService returns elevations from a remote terrain-tile
// service with a single batched request per call.
type TerrainElevationService struct {
	baseURL    string
	source     string
	zoom       int
	userAgent  string
	httpClient *http.Client
}

// A TerrainElevationServiceOption sets an option on a
// TerrainElevationService.
type TerrainElevationServiceOption func(*TerrainElevationService)

// WithTerrainBaseURL sets the elevation endpoint URL.
func WithTerrainBaseURL(baseURL string) TerrainElevationServiceOption {
	return func(s *TerrainElevationService) {
		s.baseURL = baseURL
	}
}

// WithTerrainHTTPClient sets the HTTP client.
func WithTerrainHTTPClient(httpClient *http.Client) TerrainElevationServiceOption {
	return func(s *TerrainElevationService) {
		s.httpClient = httpClient
	}
}

// WithTerrainSource sets the dataset the service reads elevations from.
func WithTerrainSource(source string) TerrainElevationServiceOption {
	return func(s *TerrainElevationService) {
		s.source = source
	}
}

// WithTerrainUserAgent sets the User-Agent header.
func WithTerrainUserAgent(userAgent string) TerrainElevationServiceOption {
	return func(s *TerrainElevationService) {
		s.userAgent = userAgent
	}
}

// WithTerrainZoom sets the tile zoom level.
func WithTerrainZoom(zoom int) TerrainElevationServiceOption {
	return func(s *TerrainElevationService) {
		s.zoom = zoom
	}
}

// NewTerrainElevationService returns a new TerrainElevationService with the
// given options.
func NewTerrainElevationService(options ...TerrainElevationServiceOption) *TerrainElevationService {
	s := &TerrainElevationService{
		baseURL:   DefaultTerrainURL,
		source:    DefaultTerrainSource,
		zoom:      DefaultTerrainZoom,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

type terrainLocation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type terrainRequest struct {
	Locations []terrainLocation `json:"locations"`
	CRS       string            `json:"crs"`
	Source    string            `json:"source"`
	Zoom      int               `json:"z"`
}

// Elevations returns one elevation in meters per coordinate, in the same
// order, fetched with a single batched request. Elevations the provider has
// no value for are NaN. The response must contain exactly one row per
// coordinate: a count mismatch is an error because distance and elevation
// values must stay index-aligned.
func (s *TerrainElevationService) Elevations(ctx context.Context, coords []Coord) ([]float64, error) {
	request := terrainRequest{
		Locations: make([]terrainLocation, len(coords)),
		CRS:       terrainCRS,
		Source:    s.source,
		Zoom:      s.zoom,
	}
	for i, coord := range coords {
		request.Locations[i] = terrainLocation{
			X: coord.Lon,
			Y: coord.Lat,
		}
	}
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("User-Agent", s.userAgent)

	elevationRequests.Inc()
	httpResponse, err := s.httpClient.Do(httpRequest)
	if err != nil {
		elevationRequestErrors.Inc()
		return nil, fmt.Errorf("fetch elevations from %s: %w", s.baseURL, err)
	}
	defer httpResponse.Body.Close()
	if httpResponse.StatusCode != http.StatusOK {
		elevationRequestErrors.Inc()
		return nil, fmt.Errorf("fetch elevations from %s: status %s", s.baseURL, httpResponse.Status)
	}

	var response struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.NewDecoder(httpResponse.Body).Decode(&response); err != nil {
		elevationShapeErrors.Inc()
		return nil, fmt.Errorf("decode elevation response: %w", err)
	}
	if len(response.Results) != len(coords) {
		elevationShapeErrors.Inc()
		return nil, fmt.Errorf("expected %d elevation rows, got %d", len(coords), len(response.Results))
	}
	if len(response.Results) == 0 {
		return nil, nil
	}

	field, err := elevationField(response.Results[0])
	if err != nil {
		elevationShapeErrors.Inc()
		return nil, err
	}
	elevations := make([]float64, len(response.Results))
	for i, row := range response.Results {
		elevation, err := elevationValue(row, field)
		if err != nil {
			elevationShapeErrors.Inc()
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		elevations[i] = elevation
	}
	return elevations, nil
}

// elevationField returns the name of the elevation field in a result row. If
// no field is named elevation, a single field whose name contains "elev"
// case-insensitively is adopted instead; zero or several candidates are an
// error, never a guess.
func elevationField(row map[string]any) (string, error) {
	if _, ok := row["elevation"]; ok {
		return "elevation", nil
	}
	var candidates []string
	for field := range row {
		if strings.Contains(strings.ToLower(field), "elev") {
			candidates = append(candidates, field)
		}
	}
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("no elevation field in result row with fields %v", slices.Sorted(maps.Keys(row)))
	case 1:
		return candidates[0], nil
	default:
		slices.Sort(candidates)
		return "", fmt.Errorf("ambiguous elevation fields %v in result row", candidates)
	}
}

func elevationValue(row map[string]any, field string) (float64, error) {
	value, ok := row[field]
	if !ok || value == nil {
		return math.NaN(), nil
	}
	elevation, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("elevation field %q is %T, not a number", field, value)
	}
	return elevation, nil
}

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var (
	geocodeRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_geocode_requests_total",
		Help: "The total number of reverse geocode requests.",
	})
	geocodeRequestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_geocode_request_errors_total",
		Help: "The total number of failed reverse geocode requests.",
	})
)

// NominatimBaseURL is the public Nominatim endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org"

// userAgent identifies this module to providers. Nominatim's usage policy
// requires a meaningful User-Agent.
const userAgent = "go-elevation-profile/1.0 (+https://github.com/twpayne/go-elevation-profile)"

// A PlaceName is the structured result of a reverse geocode. Any field may be
// empty.
type PlaceName struct {
	Natural string
	Amenity string
	Name    string
}

// ErrNoPlaceName is returned by PlaceName.Label when no field carries a
// usable name.
var ErrNoPlaceName = errors.New("no usable place name")

// Label returns the display label for p, preferring a natural feature name,
// then an amenity name, then the generic name.
func (p PlaceName) Label() (string, error) {
	switch {
	case p.Natural != "":
		return p.Natural, nil
	case p.Amenity != "":
		return p.Amenity, nil
	case p.Name != "":
		return p.Name, nil
	default:
		return "", ErrNoPlaceName
	}
}

// A NominatimGeocoder reverse geocodes coordinates with Nominatim.
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// A NominatimGeocoderOption sets an option on a NominatimGeocoder.
type NominatimGeocoderOption func(*NominatimGeocoder)

// WithNominatimBaseURL sets the Nominatim base URL.
func WithNominatimBaseURL(baseURL string) NominatimGeocoderOption {
	return func(g *NominatimGeocoder) {
		g.baseURL = baseURL
	}
}

// WithNominatimHTTPClient sets the HTTP client.
func WithNominatimHTTPClient(httpClient *http.Client) NominatimGeocoderOption {
	return func(g *NominatimGeocoder) {
		g.httpClient = httpClient
	}
}

// WithNominatimLimiter sets the request rate limiter.
func WithNominatimLimiter(limiter *rate.Limiter) NominatimGeocoderOption {
	return func(g *NominatimGeocoder) {
		g.limiter = limiter
	}
}

// WithNominatimUserAgent sets the User-Agent header.
func WithNominatimUserAgent(userAgent string) NominatimGeocoderOption {
	return func(g *NominatimGeocoder) {
		g.userAgent = userAgent
	}
}

// NewNominatimGeocoder returns a new NominatimGeocoder with the given
// options. By default requests are limited to one per second, per Nominatim's
// usage policy.
func NewNominatimGeocoder(options ...NominatimGeocoderOption) *NominatimGeocoder {
	g := &NominatimGeocoder{
		baseURL:   NominatimBaseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		limiter: rate.NewLimiter(1, 1),
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// ReverseGeocode resolves coord to a structured place name.
func (g *NominatimGeocoder) ReverseGeocode(ctx context.Context, coord Coord) (PlaceName, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return PlaceName{}, err
	}

	query := url.Values{
		"lat":            {strconv.FormatFloat(coord.Lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(coord.Lon, 'f', -1, 64)},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"namedetails":    {"1"},
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return PlaceName{}, err
	}
	httpRequest.Header.Set("User-Agent", g.userAgent)

	geocodeRequests.Inc()
	httpResponse, err := g.httpClient.Do(httpRequest)
	if err != nil {
		geocodeRequestErrors.Inc()
		return PlaceName{}, fmt.Errorf("reverse geocode (%v, %v): %w", coord.Lon, coord.Lat, err)
	}
	defer httpResponse.Body.Close()
	if httpResponse.StatusCode != http.StatusOK {
		geocodeRequestErrors.Inc()
		return PlaceName{}, fmt.Errorf("reverse geocode (%v, %v): status %s", coord.Lon, coord.Lat, httpResponse.Status)
	}

	var response struct {
		Name    string `json:"name"`
		Address struct {
			Natural string `json:"natural"`
			Amenity string `json:"amenity"`
		} `json:"address"`
		NameDetails struct {
			Name string `json:"name"`
		} `json:"namedetails"`
	}
	if err := json.NewDecoder(httpResponse.Body).Decode(&response); err != nil {
		geocodeRequestErrors.Inc()
		return PlaceName{}, fmt.Errorf("decode reverse geocode response: %w", err)
	}

	name := response.Name
	if name == "" {
		name = response.NameDetails.Name
	}
	return PlaceName{
		Natural: response.Address.Natural,
		Amenity: response.Address.Amenity,
		Name:    name,
	}, nil
}

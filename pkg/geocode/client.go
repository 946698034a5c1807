// Package geocode provides address geocoding and reverse geocoding via
// the Nominatim API, with in-memory caching and client-side rate
// limiting to honor the usage policy.
package geocode

import (
	"context"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/sells-group/pricing-cli/internal/model"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Client resolves free-form addresses to coordinates and coordinates
// back to place details.
type Client interface {
	// Geocode resolves a single free-form address. An address the
	// provider cannot place returns Matched=false, not an error.
	Geocode(ctx context.Context, address string) (*Result, error)

	// ReverseGeocode resolves coordinates to place details.
	ReverseGeocode(ctx context.Context, coords model.Coordinates) (*ReverseResult, error)
}

// Result holds the geocoding output for an address.
type Result struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
	Matched     bool
}

// Coordinates returns the result as a model point.
func (r *Result) Coordinates() model.Coordinates {
	return model.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithBaseURL points the client at a different Nominatim instance.
func WithBaseURL(baseURL string) Option {
	return func(g *geocoder) {
		g.baseURL = baseURL
	}
}

// WithUserAgent sets the User-Agent header. Nominatim rejects requests
// without an identifying agent.
func WithUserAgent(ua string) Option {
	return func(g *geocoder) {
		g.userAgent = ua
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithCacheTTL sets how long results are cached in memory.
func WithCacheTTL(ttl time.Duration) Option {
	return func(g *geocoder) {
		g.cache = gocache.New(ttl, 2*ttl)
	}
}

type geocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	cache      *gocache.Cache
}

// NewClient creates a geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		userAgent:  "pricing-cli",
		limiter:    rate.NewLimiter(1, 1), // Nominatim policy: 1 req/s
		cache:      gocache.New(24*time.Hour, 48*time.Hour),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

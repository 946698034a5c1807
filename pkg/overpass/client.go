// Package overpass queries the Overpass API for coworking spaces
// around a point.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricing-cli/internal/model"
	"github.com/sells-group/pricing-cli/internal/poi"
)

const defaultBaseURL = "https://overpass-api.de/api/interpreter"

type overpassResponse struct {
	Elements []struct {
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL points the client at a different Overpass instance.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// Client posts Overpass QL queries for coworking office nodes. Its
// Query method satisfies the poi.QueryFunc contract.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an Overpass client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query returns the coworking office nodes within radius meters of the
// center. Unnamed nodes are returned too; the caller decides what to
// keep.
func (c *Client) Query(ctx context.Context, center model.Coordinates, radius int) ([]poi.Point, error) {
	ql := fmt.Sprintf(`[out:json];node["office"="coworking"](around:%d,%f,%f);out;`,
		radius, center.Latitude, center.Longitude)

	form := url.Values{}
	form.Set("data", ql)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("overpass: unexpected status %d", resp.StatusCode)
	}

	var body overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "overpass: decode response")
	}

	points := make([]poi.Point, 0, len(body.Elements))
	for _, el := range body.Elements {
		points = append(points, poi.Point{
			Name:      el.Tags["name"],
			Latitude:  el.Lat,
			Longitude: el.Lon,
		})
	}

	zap.L().Debug("overpass: query complete",
		zap.Int("radius_m", radius),
		zap.Int("nodes", len(points)),
	)
	return points, nil
}

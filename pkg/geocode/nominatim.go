package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type searchResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a free-form address via the Nominatim search API.
func (g *geocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	key := searchCacheKey(address)
	if cached, ok := g.checkCache(key); ok {
		return cached.(*Result), nil
	}

	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	var hits []searchResponse
	if err := g.get(ctx, "/search", params, &hits); err != nil {
		return nil, eris.Wrap(err, "geocode: search")
	}

	if len(hits) == 0 {
		// Not an error, just unmatched.
		result := &Result{Matched: false}
		g.storeCache(key, result)
		return result, nil
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: parse latitude %q", hits[0].Lat)
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: parse longitude %q", hits[0].Lon)
	}

	result := &Result{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: hits[0].DisplayName,
		Matched:     true,
	}
	g.storeCache(key, result)

	zap.L().Debug("geocode: address resolved",
		zap.String("address", address),
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
	)
	return result, nil
}

// get performs a rate-limited GET against the Nominatim instance and
// decodes the JSON body into out.
func (g *geocoder) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "geocode: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("geocode: unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "geocode: decode response")
	}
	return nil
}

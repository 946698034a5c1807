package geocode

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricing-cli/internal/model"
)

// ReverseResult holds the result of a reverse geocode operation.
type ReverseResult struct {
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	DisplayName string `json:"display_name"`
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		County  string `json:"county"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// ReverseGeocode resolves coordinates to place details via the
// Nominatim reverse API. The city falls back through town, village and
// county when the point sits outside a city boundary.
func (g *geocoder) ReverseGeocode(ctx context.Context, coords model.Coordinates) (*ReverseResult, error) {
	key := reverseCacheKey(coords)
	if cached, ok := g.checkCache(key); ok {
		return cached.(*ReverseResult), nil
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("format", "json")

	var resp reverseResponse
	if err := g.get(ctx, "/reverse", params, &resp); err != nil {
		return nil, eris.Wrap(err, "geocode: reverse")
	}

	result := &ReverseResult{
		City:        firstNonEmpty(resp.Address.City, resp.Address.Town, resp.Address.Village, resp.Address.County),
		State:       resp.Address.State,
		Country:     resp.Address.Country,
		DisplayName: resp.DisplayName,
	}
	g.storeCache(key, result)

	zap.L().Debug("geocode: point resolved",
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lon", coords.Longitude),
		zap.String("city", result.City),
	)
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

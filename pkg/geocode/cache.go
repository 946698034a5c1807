package geocode

import (
	"fmt"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/sells-group/pricing-cli/internal/model"
)

// searchCacheKey normalizes a free-form address for cache lookup.
func searchCacheKey(address string) string {
	return "search:" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func reverseCacheKey(coords model.Coordinates) string {
	return fmt.Sprintf("reverse:%.6f,%.6f", coords.Latitude, coords.Longitude)
}

// checkCache returns a previously stored result. Non-matches are cached
// too so repeated lookups of a bad address skip the network.
func (g *geocoder) checkCache(key string) (any, bool) {
	if g.cache == nil {
		return nil, false
	}
	v, ok := g.cache.Get(key)
	if ok {
		zap.L().Debug("geocode: cache hit", zap.String("key", key))
	}
	return v, ok
}

func (g *geocoder) storeCache(key string, value any) {
	if g.cache == nil {
		return
	}
	g.cache.Set(key, value, gocache.DefaultExpiration)
}

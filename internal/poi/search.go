// Package poi finds the nearest named points of interest (coworking
// spaces) around a location via an expanding-radius query loop.
package poi

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/pricing-cli/internal/geo"
	"github.com/sells-group/pricing-cli/internal/model"
)

// NoSpaceFound is the sentinel name used to pad the result list when the
// search exhausts every radius without enough named results.
const NoSpaceFound = "No coworking space found"

const (
	defaultStartRadius = 10000
	defaultStep        = 10000
	defaultMaxRadius   = 50000
	defaultTarget      = 2
)

// Point is one named point returned by the backing query service.
type Point struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// QueryFunc issues one point-of-interest lookup at the given radius. The
// radius unit is whatever the backing service expects (meters for
// Overpass); the finder treats it as opaque.
type QueryFunc func(ctx context.Context, center model.Coordinates, radius int) ([]Point, error)

// Options controls the radius schedule and result size.
type Options struct {
	StartRadius int // first query radius (default 10000)
	Step        int // radius increment per round (default 10000)
	MaxRadius   int // cap; the search stops once the radius exceeds it (default 50000)
	Target      int // number of spaces returned (default 2)
}

func (o Options) withDefaults() Options {
	if o.StartRadius <= 0 {
		o.StartRadius = defaultStartRadius
	}
	if o.Step <= 0 {
		o.Step = defaultStep
	}
	if o.MaxRadius <= 0 {
		o.MaxRadius = defaultMaxRadius
	}
	if o.Target <= 0 {
		o.Target = defaultTarget
	}
	return o
}

// Space is one found (or sentinel) coworking space, nearest first.
type Space struct {
	Name      string  `json:"name"`
	Distance  float64 `json:"distance"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Found     bool    `json:"found"`
}

// Find queries at progressively larger radii until Target named spaces
// are known or the radius cap is exceeded. Results are deduplicated by
// name, keeping the closest occurrence. A query error counts as zero
// results for that radius and never aborts the search. Exactly Target
// spaces are returned, nearest first, padded with NoSpaceFound sentinels.
func Find(ctx context.Context, center model.Coordinates, query QueryFunc, opts Options) []Space {
	opts = opts.withDefaults()

	seen := map[string]Space{}
	for radius := opts.StartRadius; radius <= opts.MaxRadius; radius += opts.Step {
		points, err := query(ctx, center, radius)
		if err != nil {
			zap.L().Debug("poi: query failed, treating as empty",
				zap.Int("radius", radius),
				zap.Error(err),
			)
			points = nil
		}

		seen = merge(center, seen, points)
		if len(seen) >= opts.Target {
			break
		}
	}

	spaces := ranked(seen)
	if len(spaces) > opts.Target {
		spaces = spaces[:opts.Target]
	}
	for len(spaces) < opts.Target {
		spaces = append(spaces, Space{Name: NoSpaceFound})
	}
	return spaces
}

// merge folds one round of query results into the accumulated map,
// keeping the minimum distance per name. The input map is not mutated.
func merge(center model.Coordinates, acc map[string]Space, points []Point) map[string]Space {
	out := make(map[string]Space, len(acc)+len(points))
	for k, v := range acc {
		out[k] = v
	}
	for _, p := range points {
		if p.Name == "" {
			continue
		}
		dist := geo.Miles(center, model.Coordinates{Latitude: p.Latitude, Longitude: p.Longitude})
		if prev, ok := out[p.Name]; ok && prev.Distance <= dist {
			continue
		}
		out[p.Name] = Space{
			Name:      p.Name,
			Distance:  dist,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Found:     true,
		}
	}
	return out
}

// ranked rebuilds the sorted result list from the accumulated map.
// Distance ties order by name so the result is deterministic.
func ranked(acc map[string]Space) []Space {
	spaces := make([]Space, 0, len(acc))
	for _, s := range acc {
		spaces = append(spaces, s)
	}
	sort.Slice(spaces, func(i, j int) bool {
		if spaces[i].Distance != spaces[j].Distance {
			return spaces[i].Distance < spaces[j].Distance
		}
		return spaces[i].Name < spaces[j].Name
	})
	return spaces
}

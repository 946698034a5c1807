// Package comps selects the nearest comparable centres from the reference
// pricing dataset and scores each against the local average price.
package comps

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricing-cli/internal/geo"
	"github.com/sells-group/pricing-cli/internal/model"
)

// Quality labels for a comparable relative to the window average.
// Polarity: a higher price than the local average means higher quality.
const (
	QualityHigher = "Higher Quality"
	QualityLesser = "Lesser Quality"
	QualitySame   = "Same Quality"
)

// DiffSameAsAverage is the diff label when a comparable's price equals
// the window average exactly.
const DiffSameAsAverage = "Same as average"

const (
	defaultWindow = 5
	defaultReport = 2
)

// ErrNoReferenceData is returned when no reference record survives
// filtering, so no comparison window can be formed.
var ErrNoReferenceData = eris.New("comps: no valid reference data")

// Options controls the window and report sizes.
type Options struct {
	Window int // comparison window used for the average price (default 5)
	Report int // number of comparables reported (default 2)
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = defaultWindow
	}
	if o.Report <= 0 {
		o.Report = defaultReport
	}
	return o
}

// Entry is one reported comparable. Exactly Report entries are always
// returned; an unpopulated entry carries empty strings in every label so
// callers can write it straight into the template.
type Entry struct {
	CentreID      string  `json:"centre_id"`
	Distance      float64 `json:"distance"`
	DistanceLabel string  `json:"distance_label"`
	Quality       string  `json:"quality"`
	DiffLabel     string  `json:"diff_label"`
	Populated     bool    `json:"populated"`
}

// Result holds the reported comparables and the window average.
type Result struct {
	Entries      []Entry `json:"entries"`
	AveragePrice float64 `json:"average_price"`
	WindowSize   int     `json:"window_size"`
}

type candidate struct {
	record   model.CentreRecord
	distance float64
}

// Find returns the Report nearest comparables to user, scored against the
// mean price of the Window nearest. Records missing coordinates or price,
// or carrying the (0, _)/(_, 0) unknown-location sentinel, are excluded.
// Distances are rounded to 2 decimals before sorting, so rounding governs
// ordering; ties keep dataset order.
func Find(user model.Coordinates, refs []model.CentreRecord, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	candidates := make([]candidate, 0, len(refs))
	for _, r := range refs {
		if !r.HasLocation() || r.Price == nil {
			continue
		}
		candidates = append(candidates, candidate{
			record:   r,
			distance: geo.Miles(user, model.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}),
		})
	}

	if len(candidates) == 0 {
		return nil, ErrNoReferenceData
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	window := candidates
	if len(window) > opts.Window {
		window = window[:opts.Window]
	}

	var sum float64
	for _, c := range window {
		sum += *c.record.Price
	}
	avg := sum / float64(len(window))

	entries := make([]Entry, opts.Report)
	for i := range entries {
		if i >= len(window) {
			break
		}
		c := window[i]
		entries[i] = Entry{
			CentreID:      c.record.CentreID,
			Distance:      c.distance,
			DistanceLabel: geo.FormatMiles(c.distance),
			Quality:       qualityLabel(*c.record.Price, avg),
			DiffLabel:     diffLabel(*c.record.Price, avg),
			Populated:     true,
		}
	}

	zap.L().Debug("comps: window computed",
		zap.Int("candidates", len(candidates)),
		zap.Int("window", len(window)),
		zap.Float64("average_price", avg),
	)

	return &Result{
		Entries:      entries,
		AveragePrice: avg,
		WindowSize:   len(window),
	}, nil
}

func qualityLabel(price, avg float64) string {
	switch {
	case price > avg:
		return QualityHigher
	case price < avg:
		return QualityLesser
	default:
		return QualitySame
	}
}

func diffLabel(price, avg float64) string {
	pct := geo.Round2((price - avg) / avg * 100)
	switch {
	case pct > 0:
		return geo.FormatNumber(pct) + "% higher"
	case pct < 0:
		return geo.FormatNumber(-pct) + "% lower"
	default:
		return DiffSameAsAverage
	}
}

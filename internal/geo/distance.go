// Package geo provides the distance and number-formatting helpers shared
// by the comps and coworking finders.
package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/umahmood/haversine"

	"github.com/sells-group/pricing-cli/internal/model"
)

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Miles returns the great-circle distance between two points in statute
// miles, rounded to 2 decimal places. Rounding happens here, before any
// sorting or averaging downstream, so it governs tie-breaks and output
// precision.
func Miles(a, b model.Coordinates) float64 {
	mi, _ := haversine.Distance(
		haversine.Coord{Lat: a.Latitude, Lon: a.Longitude},
		haversine.Coord{Lat: b.Latitude, Lon: b.Longitude},
	)
	return Round2(mi)
}

// FormatNumber prints a 2-rounded value the way the pricing workbook
// expects: at most two decimals, at least one ("1.0", "20.5", "20.05").
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(Round2(v), 'f', 2, 64)
	if strings.HasSuffix(s, "0") {
		s = s[:len(s)-1]
	}
	return s
}

// FormatMiles renders a distance label, e.g. "2.35 mi".
func FormatMiles(v float64) string {
	return FormatNumber(v) + " mi"
}

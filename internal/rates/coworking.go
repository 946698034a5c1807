// Package rates estimates nearby coworking pricing from a flat
// city-to-rate table.
package rates

import (
	"os"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/pricing-cli/internal/model"
)

// sqFtPerSqM converts per-square-foot rates to per-square-metre.
const sqFtPerSqM = 10.7639

// defaultRates holds monthly coworking rates per square foot for the
// markets the pricing team quotes most often. Cities resolved by reverse
// geocoding are matched case- and accent-insensitively.
var defaultRates = map[string]float64{
	"new york":      6.5,
	"san francisco": 6.0,
	"boston":        5.5,
	"washington":    5.0,
	"chicago":       4.5,
	"los angeles":   4.5,
	"miami":         4.0,
	"toronto":       4.5,
	"vancouver":     4.0,
	"montreal":      3.5,
	"calgary":       3.0,
}

// Estimator computes a capped monthly coworking price estimate for a
// resolved city and area-unit mode.
type Estimator struct {
	table       map[string]float64
	defaultRate float64
	officeSize  float64
	ceiling     float64
}

// Config holds the estimator's tunables. Table entries override the
// built-in defaults; TableFile, when set, points to a YAML file of
// city: rate pairs layered on top of both.
type Config struct {
	DefaultRate float64            `yaml:"default_rate" mapstructure:"default_rate"`
	OfficeSize  float64            `yaml:"office_size" mapstructure:"office_size"`
	Ceiling     float64            `yaml:"ceiling" mapstructure:"ceiling"`
	Table       map[string]float64 `yaml:"table" mapstructure:"table"`
	TableFile   string             `yaml:"table_file" mapstructure:"table_file"`
}

// NewEstimator builds an Estimator from cfg, layering the built-in table,
// cfg.Table, and cfg.TableFile (in that order of precedence, later wins).
func NewEstimator(cfg Config) (*Estimator, error) {
	table := make(map[string]float64, len(defaultRates))
	for city, rate := range defaultRates {
		table[city] = rate
	}
	for city, rate := range cfg.Table {
		table[NormalizeCity(city)] = rate
	}

	if cfg.TableFile != "" {
		fileRates, err := loadTableFile(cfg.TableFile)
		if err != nil {
			return nil, err
		}
		for city, rate := range fileRates {
			table[NormalizeCity(city)] = rate
		}
	}

	e := &Estimator{
		table:       table,
		defaultRate: cfg.DefaultRate,
		officeSize:  cfg.OfficeSize,
		ceiling:     cfg.Ceiling,
	}
	if e.defaultRate <= 0 {
		e.defaultRate = 3.0
	}
	if e.officeSize <= 0 {
		e.officeSize = 1000
	}
	if e.ceiling <= 0 {
		e.ceiling = 15000
	}
	return e, nil
}

// Estimate returns the monthly coworking price estimate for the given
// city. Rates are stored per square foot; in SqM mode the rate is scaled
// and the assumed office size is read in square metres. The result is
// capped at the configured ceiling. An unknown or empty city uses the
// default rate.
func (e *Estimator) Estimate(city string, unit model.AreaUnit) float64 {
	rate := e.defaultRate
	if r, ok := e.table[NormalizeCity(city)]; ok {
		rate = r
	} else if city != "" {
		zap.L().Debug("rates: city not in table, using default",
			zap.String("city", city),
			zap.Float64("default_rate", e.defaultRate),
		)
	}

	if unit == model.AreaSqM {
		rate *= sqFtPerSqM
	}

	estimate := rate * e.officeSize
	if estimate > e.ceiling {
		estimate = e.ceiling
	}
	return estimate
}

// Rate returns the per-square-foot rate for a city, falling back to the
// default. Exported for testing.
func (e *Estimator) Rate(city string) float64 {
	if r, ok := e.table[NormalizeCity(city)]; ok {
		return r
	}
	return e.defaultRate
}

// NormalizeCity lowercases, trims, and strips diacritics so that
// reverse-geocoded names like "Montréal" match table keys.
func NormalizeCity(city string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, city)
	if err != nil {
		folded = city
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

func loadTableFile(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rates: read table file %s", path)
	}
	var table map[string]float64
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, eris.Wrapf(err, "rates: parse table file %s", path)
	}
	return table, nil
}

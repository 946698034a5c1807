// Package dataset loads the reference pricing workbook: the region
// sheets merged into one record list, plus the market rent sheet.
package dataset

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/pricing-cli/internal/model"
)

// Column headers recognized after normalization.
const (
	colCentreID   = "Centre #"
	colAddress    = "Address"
	colLatitude   = "Latitude"
	colLongitude  = "Longitude"
	colPrice      = "Price"
	colMarketRate = "Market Rate"
)

// Options configures which sheets are read.
type Options struct {
	RegionSheets    []string // default ["USA", "Canada"]
	MarketRentSheet string   // default "Market Rent"
}

func (o Options) withDefaults() Options {
	if len(o.RegionSheets) == 0 {
		o.RegionSheets = []string{"USA", "Canada"}
	}
	if o.MarketRentSheet == "" {
		o.MarketRentSheet = "Market Rent"
	}
	return o
}

// Dataset is an immutable snapshot of the reference workbook, loaded
// once at startup and passed into the finders by reference.
type Dataset struct {
	Records []model.CentreRecord

	marketRates map[string][]float64
}

// Load reads the pricing workbook at path. Region sheets are merged in
// order into one record list tagged with the sheet name. Malformed
// numeric cells leave the field unset; the row stays and is excluded
// later by the comps filter.
func Load(path string, opts Options) (*Dataset, error) {
	opts = opts.withDefaults()

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open workbook %s", path)
	}

	d := &Dataset{marketRates: map[string][]float64{}}
	for _, name := range opts.RegionSheets {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("dataset: sheet %q not found", name)
		}
		records := parseRegionSheet(sheet, name)
		d.Records = append(d.Records, records...)
		zap.L().Debug("dataset: region sheet loaded",
			zap.String("sheet", name),
			zap.Int("records", len(records)),
		)
	}

	if rentSheet, ok := f.Sheet[opts.MarketRentSheet]; ok {
		d.loadMarketRents(rentSheet)
	} else {
		zap.L().Warn("dataset: market rent sheet missing, rent averages will be zero",
			zap.String("sheet", opts.MarketRentSheet),
		)
	}

	return d, nil
}

// AverageMarketRent returns the mean Market Rate across the rows matched
// by the given centre ids. Empty ids are skipped; no matches yields 0.
func (d *Dataset) AverageMarketRent(centreIDs []string) float64 {
	var rents []float64
	for _, id := range centreIDs {
		if id == "" {
			continue
		}
		rents = append(rents, d.marketRates[id]...)
	}
	if len(rents) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rents {
		sum += r
	}
	return sum / float64(len(rents))
}

func parseRegionSheet(sheet *xlsx.Sheet, region string) []model.CentreRecord {
	cols := headerIndex(sheet)
	idCol, ok := cols[colCentreID]
	if !ok {
		return nil
	}

	var records []model.CentreRecord
	for i, row := range sheet.Rows {
		if i == 0 {
			continue
		}
		id := strings.TrimSpace(cellString(row, idCol))
		if id == "" {
			continue
		}
		rec := model.CentreRecord{
			CentreID:  id,
			Region:    region,
			Address:   strings.TrimSpace(cellStringByName(row, cols, colAddress)),
			Latitude:  cellFloat(row, cols, colLatitude),
			Longitude: cellFloat(row, cols, colLongitude),
			Price:     cellFloat(row, cols, colPrice),
		}
		if rate := cellFloat(row, cols, colMarketRate); rate != nil {
			rec.MarketRate = rate
		}
		records = append(records, rec)
	}
	return records
}

func (d *Dataset) loadMarketRents(sheet *xlsx.Sheet) {
	cols := headerIndex(sheet)
	idCol, idOK := cols[colCentreID]
	rateCol, rateOK := cols[colMarketRate]
	if !idOK || !rateOK {
		return
	}

	for i, row := range sheet.Rows {
		if i == 0 {
			continue
		}
		id := strings.TrimSpace(cellString(row, idCol))
		if id == "" {
			continue
		}
		if rate, err := parseNumber(cellString(row, rateCol)); err == nil {
			d.marketRates[id] = append(d.marketRates[id], rate)
		}
	}
}

// headerIndex maps normalized header names to column indices. Headers in
// the source workbook occasionally carry stray whitespace or embedded
// newlines.
func headerIndex(sheet *xlsx.Sheet) map[string]int {
	cols := map[string]int{}
	if len(sheet.Rows) == 0 {
		return cols
	}
	for i, cell := range sheet.Rows[0].Cells {
		name := normalizeHeader(cell.String())
		if name != "" {
			cols[name] = i
		}
	}
	return cols
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\n", "")
	h = strings.ReplaceAll(h, "\r", "")
	return strings.TrimSpace(h)
}

func cellStringByName(row *xlsx.Row, cols map[string]int, name string) string {
	col, ok := cols[name]
	if !ok {
		return ""
	}
	return cellString(row, col)
}

func cellString(row *xlsx.Row, col int) string {
	if col < 0 || col >= len(row.Cells) {
		return ""
	}
	return row.Cells[col].String()
}

func cellFloat(row *xlsx.Row, cols map[string]int, name string) *float64 {
	col, ok := cols[name]
	if !ok {
		return nil
	}
	v, err := parseNumber(cellString(row, col))
	if err != nil {
		return nil
	}
	return &v
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, eris.New("dataset: empty cell")
	}
	return strconv.ParseFloat(s, 64)
}

package dataset

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/pricing-cli/internal/model"
)

// WriteWorkbook writes records back out as a pricing workbook with one
// sheet per region, in the normalized column layout. Used by the
// backfill command to persist geocoded coordinates.
func WriteWorkbook(path string, records []model.CentreRecord) error {
	f := xlsx.NewFile()

	byRegion := map[string][]model.CentreRecord{}
	var regions []string
	for _, r := range records {
		if _, seen := byRegion[r.Region]; !seen {
			regions = append(regions, r.Region)
		}
		byRegion[r.Region] = append(byRegion[r.Region], r)
	}

	for _, region := range regions {
		sheet, err := f.AddSheet(region)
		if err != nil {
			return eris.Wrapf(err, "dataset: add sheet %s", region)
		}

		header := sheet.AddRow()
		for _, h := range []string{colCentreID, colAddress, colLatitude, colLongitude, colPrice} {
			header.AddCell().SetString(h)
		}

		for _, rec := range byRegion[region] {
			row := sheet.AddRow()
			row.AddCell().SetString(rec.CentreID)
			row.AddCell().SetString(rec.Address)
			addFloatCell(row, rec.Latitude)
			addFloatCell(row, rec.Longitude)
			addFloatCell(row, rec.Price)
		}
	}

	return eris.Wrapf(f.Save(path), "dataset: save workbook %s", path)
}

func addFloatCell(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloat(*v)
	}
}

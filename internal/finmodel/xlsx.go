package finmodel

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

const modelSheetName = "10Yr Model"

// ExtractWorkbook reads a financial model workbook. It scans the
// "10Yr Model" sheet, or the first sheet when that one is absent, for
// the labelled rows and takes the first numeric cell on each.
func ExtractWorkbook(path string) (Model, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return Model{}, eris.Wrapf(err, "finmodel: open workbook %s", path)
	}

	sheet, ok := f.Sheet[modelSheetName]
	if !ok {
		if len(f.Sheets) == 0 {
			return Model{}, eris.Errorf("finmodel: workbook %s has no sheets", path)
		}
		sheet = f.Sheets[0]
	}

	m := Model{Currency: detectCurrency(sheetText(sheet))}
	var cashflow float64
	for _, row := range sheet.Rows {
		label := strings.ToLower(rowText(row))
		switch {
		case strings.Contains(label, "gross area (sqft)"):
			m.TotalArea = firstNumericCell(row)
		case strings.Contains(label, "market rent value"):
			m.MonthlyRent = firstNumericCell(row)
		case strings.Contains(label, "net partner cashflow") && strings.Contains(label, "year 1"):
			cashflow = firstNumericCell(row)
		}
	}
	m.MonthlyCashflow = monthly(cashflow)
	return m, nil
}

func sheetText(sheet *xlsx.Sheet) string {
	var b strings.Builder
	for _, row := range sheet.Rows {
		b.WriteString(rowText(row))
		b.WriteByte(' ')
	}
	return b.String()
}

func rowText(row *xlsx.Row) string {
	parts := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		parts = append(parts, cell.String())
	}
	return strings.Join(parts, " ")
}

func firstNumericCell(row *xlsx.Row) float64 {
	for _, cell := range row.Cells {
		if cell.Type() != xlsx.CellTypeNumeric {
			continue
		}
		if v, err := cell.Float(); err == nil {
			return v
		}
	}
	return 0
}

package finmodel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeModelWorkbook(t *testing.T, sheetName string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)

	title := sheet.AddRow()
	title.AddCell().SetString("10 Year Model (CAD)")

	area := sheet.AddRow()
	area.AddCell().SetString("Gross Area (SqFt)")
	area.AddCell().SetFloat(15000)

	rent := sheet.AddRow()
	rent.AddCell().SetString("Market Rent Value")
	rent.AddCell().SetString("see below")
	rent.AddCell().SetFloat(9600)

	cashflow := sheet.AddRow()
	cashflow.AddCell().SetString("Net Partner Cashflow Year 1")
	cashflow.AddCell().SetFloat(60000)

	path := filepath.Join(t.TempDir(), "model.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestExtractWorkbook(t *testing.T) {
	m, err := ExtractWorkbook(writeModelWorkbook(t, modelSheetName))
	require.NoError(t, err)

	assert.Equal(t, "CAD", m.Currency)
	assert.Equal(t, 15000.0, m.TotalArea)
	// First numeric cell on the row wins, string cells are skipped.
	assert.Equal(t, 9600.0, m.MonthlyRent)
	assert.Equal(t, 5000.0, m.MonthlyCashflow)
}

func TestExtractWorkbook_FallsBackToFirstSheet(t *testing.T) {
	m, err := ExtractWorkbook(writeModelWorkbook(t, "Summary"))
	require.NoError(t, err)

	assert.Equal(t, 15000.0, m.TotalArea)
}

func TestExtractWorkbook_MissingFile(t *testing.T) {
	_, err := ExtractWorkbook(filepath.Join(t.TempDir(), "absent.xlsx"))
	require.Error(t, err)
}

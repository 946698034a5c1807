// Package finmodel extracts pricing inputs from an uploaded financial
// model, either a 10-year model workbook or its PDF export.
package finmodel

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Model holds the values auto-extracted from a financial model. Missing
// values are zero; the caller treats them as "not provided" and falls
// back to manual input.
type Model struct {
	Currency        string  `json:"currency"`
	TotalArea       float64 `json:"total_area"`
	MonthlyRent     float64 `json:"monthly_rent"`
	MonthlyCashflow float64 `json:"monthly_cashflow"`
}

// Extractor pulls a Model out of a file on disk, dispatching on the
// extension. PDFs go through the pdftotext CLI; anything else is read
// as a workbook.
type Extractor struct {
	pdf *PDFExtractor
}

func NewExtractor(pdfBinPath string) *Extractor {
	return &Extractor{pdf: NewPDFExtractor(pdfBinPath)}
}

func (e *Extractor) Extract(ctx context.Context, path string) (Model, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return e.pdf.Extract(ctx, path)
	}
	return ExtractWorkbook(path)
}

// detectCurrency scans free text for a currency token. USD wins over
// CAD when both appear, and is the default when neither does.
func detectCurrency(text string) string {
	if strings.Contains(text, "USD") {
		return "USD"
	}
	if strings.Contains(text, "CAD") {
		return "CAD"
	}
	return "USD"
}

// parseAmount parses a comma-grouped number, returning 0 on failure so
// a garbled model field degrades to "not provided" instead of aborting
// the whole extraction.
func parseAmount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func monthly(annual float64) float64 {
	if annual == 0 {
		return 0
	}
	return annual / 12
}

var errNoText = eris.New("finmodel: no text extracted")

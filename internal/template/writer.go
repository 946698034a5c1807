// Package template fills a copy of the pricing template workbook with
// the computed centre and market details.
package template

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/sells-group/pricing-cli/internal/model"
)

// SheetName is the tab of the pricing template that receives the
// computed values.
const SheetName = "Centre & Market Details"

// Record carries everything written into the template. The paired
// fields hold exactly two slots; empty strings leave the cell blank.
type Record struct {
	CentreID       string
	Address        string
	Currency       string
	AreaUnits      model.AreaUnit
	TotalArea      float64
	MonthlyRent    float64
	RentSource     string
	ServiceCharges float64
	PropertyTax    float64

	CompIDs       [2]string
	CompDistances [2]string
	CompQualities [2]string
	CompDiffs     [2]string

	CoworkingNames     [2]string
	CoworkingDistances [2]string

	MonthlyCashflow float64
}

// Writer fills copies of the template workbook at templatePath and
// drops them into outDir. An empty outDir falls back to the system
// temp directory.
type Writer struct {
	templatePath string
	outDir       string
}

func NewWriter(templatePath, outDir string) *Writer {
	return &Writer{templatePath: templatePath, outDir: outDir}
}

// Write copies the template, fills in the record, and returns the path
// of the filled workbook.
func (w *Writer) Write(rec Record) (string, error) {
	f, err := excelize.OpenFile(w.templatePath)
	if err != nil {
		return "", eris.Wrapf(err, "template: open %s", w.templatePath)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return "", eris.Wrapf(err, "template: look up sheet %q", SheetName)
	}
	if idx == -1 {
		return "", eris.Errorf("template: sheet %q not found in %s", SheetName, w.templatePath)
	}

	cells := map[string]interface{}{
		"C2":  rec.CentreID,
		"C3":  rec.Address,
		"D5":  rec.Currency,
		"D6":  string(rec.AreaUnits),
		"D7":  rec.TotalArea,
		"D8":  rec.TotalArea * 0.5,
		"D10": rec.MonthlyRent,
		"D11": rec.RentSource,
		"D12": rec.ServiceCharges,
		"D13": rec.PropertyTax,

		"D17": rec.CompIDs[0],
		"E17": rec.CompIDs[1],
		"D18": rec.CompDistances[0],
		"E18": rec.CompDistances[1],
		"D19": rec.CompQualities[0],
		"E19": rec.CompQualities[1],
		"D20": rec.CompDiffs[0],
		"E20": rec.CompDiffs[1],

		"D30": rec.CoworkingNames[0],
		"E30": rec.CoworkingNames[1],
		"D31": rec.CoworkingDistances[0],
		"E31": rec.CoworkingDistances[1],

		// Daily rate rows derive from the monthly rent.
		"D33": rec.MonthlyRent * 30,
		"E33": rec.MonthlyRent * 30,
		"D35": rec.MonthlyCashflow,
	}
	for cell, value := range cells {
		if err := f.SetCellValue(SheetName, cell, value); err != nil {
			return "", eris.Wrapf(err, "template: set cell %s", cell)
		}
	}

	outPath, err := w.outputPath(rec.CentreID)
	if err != nil {
		return "", err
	}
	if err := f.SaveAs(outPath); err != nil {
		return "", eris.Wrapf(err, "template: save %s", outPath)
	}
	return outPath, nil
}

func (w *Writer) outputPath(centreID string) (string, error) {
	dir := w.outDir
	if dir == "" {
		dir = os.TempDir()
	}
	pattern := "pricing-" + sanitize(centreID) + "-*.xlsx"
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", eris.Wrap(err, "template: create output file")
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		return "", eris.Wrap(err, "template: close output file")
	}
	return filepath.Clean(path), nil
}

// sanitize keeps the centre id safe to embed in a filename.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

package finmodel

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"

	"github.com/rotisserie/eris"
)

var (
	totalAreaRe  = regexp.MustCompile(`(?i)Total Area Contracted.*?([\d,\.]+)`)
	marketRentRe = regexp.MustCompile(`(?i)Market Rent Value.*?([\d,\.]+)`)
	cashflowRe   = regexp.MustCompile(`(?i)Net Partner Cashflow.*?Year 1.*?([\d,\.]+)`)
	grossAreaRe  = regexp.MustCompile(`(?i)Gross\s+Area\s+sq\s?ft\s*[:\s]\s*([\d,]+)`)
)

// PDFExtractor extracts financial model values from PDF exports using
// the pdftotext CLI.
type PDFExtractor struct {
	binPath string
}

// NewPDFExtractor creates a PDFExtractor. If binPath is empty,
// "pdftotext" is resolved from PATH.
func NewPDFExtractor(binPath string) *PDFExtractor {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PDFExtractor{binPath: binPath}
}

// Extract runs pdftotext -layout on the PDF and parses the result.
func (p *PDFExtractor) Extract(ctx context.Context, pdfPath string) (Model, error) {
	text, err := p.extractText(ctx, pdfPath)
	if err != nil {
		return Model{}, err
	}
	if text == "" {
		return Model{}, errNoText
	}
	return ParsePDFText(text), nil
}

func (p *PDFExtractor) extractText(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "finmodel: pdftotext failed for %s: %s", pdfPath, stderr.String())
	}

	return stdout.String(), nil
}

// ParsePDFText extracts model values from PDF text. A label that never
// appears, or a number that fails to parse, yields a zero field. The
// "Gross Area sq ft" figure, when present, overrides the contracted
// total area.
func ParsePDFText(text string) Model {
	m := Model{
		Currency:        detectCurrency(text),
		TotalArea:       matchAmount(totalAreaRe, text),
		MonthlyRent:     matchAmount(marketRentRe, text),
		MonthlyCashflow: monthly(matchAmount(cashflowRe, text)),
	}
	if gross := matchAmount(grossAreaRe, text); gross > 0 {
		m.TotalArea = gross
	}
	return m
}

func matchAmount(re *regexp.Regexp, text string) float64 {
	groups := re.FindStringSubmatch(text)
	if groups == nil {
		return 0
	}
	return parseAmount(groups[1])
}

package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

const pdfFontFamily = "events"

// PDFExporter renders datasets into a landscape tabular PDF using UTF-8
// TrueType fonts, Go Regular unless WithFont supplies another.
type PDFExporter struct {
	now   func() time.Time
	fonts map[string][]byte
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{
		now:   time.Now,
		fonts: map[string][]byte{"": goregular.TTF, "B": gobold.TTF, "I": goitalic.TTF},
	}
}

// WithFont replaces every style with a single TrueType font, e.g. a CJK font
// so Hangul titles are printed. CFF-flavoured OpenType and collections are
// rejected.
func (e *PDFExporter) WithFont(data []byte) error {
	if !isTrueType(data) {
		return fmt.Errorf("load pdf font: not a TrueType font")
	}
	trial := gofpdf.New("P", "mm", "A4", "")
	trial.AddUTF8FontFromBytes(pdfFontFamily, "", data)
	trial.SetFont(pdfFontFamily, "", 10)
	if err := trial.Error(); err != nil {
		return fmt.Errorf("load pdf font: %w", err)
	}
	e.fonts = map[string][]byte{"": data, "B": data, "I": data}
	return nil
}

func isTrueType(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	return bytes.Equal(data[:4], []byte{0, 1, 0, 0}) || string(data[:4]) == "true"
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	for style, ttf := range e.fonts {
		pdf.AddUTF8FontFromBytes(pdfFontFamily, style, ttf)
	}
	pdf.SetMargins(10, 15, 10)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(pdfFontFamily, "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Generated %s - page %d", e.now().UTC().Format(time.RFC3339), pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	if title != "" {
		pdf.SetFont(pdfFontFamily, "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(data.Headers))

	pdf.SetFont(pdfFontFamily, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(pdfFontFamily, "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, truncate(row[header], 48), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if max <= 1 || len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "~"
}

package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/money"
)

// PDFExporter writes reports as PDF tables using gofpdf
type PDFExporter struct {
	pageSize string
}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{pageSize: "A4"}
}

func (p *PDFExporter) Export(report *Report, w io.Writer) error {
	orientation := "P"
	if report.Style.Landscape {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "mm", p.pageSize, "")
	// core fonts are cp1252, so accents need translating
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	fontSize := report.Style.FontSize
	if fontSize <= 0 {
		fontSize = 9
	}

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	usable := pageW - left - right

	widths := report.widths()
	var totalW float64
	for _, w := range widths {
		totalW += w
	}
	for i := range widths {
		widths[i] = usable * widths[i] / totalW
	}

	header := func() {
		r, g, b := hexToRGB(report.Style.HeaderColor)
		pdf.SetFillColor(r, g, b)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", fontSize)
		for i, col := range report.Columns {
			pdf.CellFormat(widths[i], 7, tr(col.Title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "", fontSize)
	}

	pdf.AddPage()
	if report.Title != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.Cell(0, 10, tr(report.Title))
		pdf.Ln(10)
	}
	if report.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, tr(report.Subtitle))
		pdf.Ln(6)
	}
	if !report.GeneratedAt.IsZero() {
		pdf.SetFont("Arial", "I", 8)
		pdf.Cell(0, 5, tr("Gerado em "+report.GeneratedAt.Format("02/01/2006 15:04")))
		pdf.Ln(8)
	}

	header()
	sr, sg, sb := hexToRGB(report.Style.StripeColor)
	for r, values := range report.Rows {
		if pdf.GetY() > pageH-bottom-10 {
			pdf.AddPage()
			header()
		}
		pdf.SetFillColor(sr, sg, sb)
		for i, v := range values {
			if i >= len(widths) {
				break
			}
			align := string(report.Columns[i].Align)
			if align == "" {
				align = string(AlignLeft)
			}
			pdf.CellFormat(widths[i], 6, tr(cellText(v)), "1", 0, align, r%2 == 1, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(report.Totals) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", fontSize+1)
		for _, t := range report.Totals {
			pdf.CellFormat(60, 6, tr(t.Label), "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, tr(money.FormatBRL(t.Amount)), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (p *PDFExporter) ContentType() string {
	return "application/pdf"
}

func (p *PDFExporter) Extension() string {
	return ".pdf"
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return money.FormatBRL(val)
	case time.Time:
		return money.FormatDate(val)
	case *time.Time:
		if val == nil {
			return ""
		}
		return money.FormatDate(*val)
	case string:
		return val
	}
	return fmt.Sprintf("%v", v)
}

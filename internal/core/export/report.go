package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Format is the file type of an exported report
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

// ParseFormat accepts the values clients send in ?format=.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "excel", "xlsx":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// Exporter renders a report into one file format
type Exporter interface {
	Export(report *Report, w io.Writer) error
	ContentType() string
	Extension() string
}

// Align of a column's cells
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Column describes one report column. Money columns hold decimal.Decimal
// values and are rendered as R$ amounts.
type Column struct {
	Title string
	Width float64 // relative width, 0 means 1
	Align Align
	Money bool
}

// Total is a labelled amount printed under the table
type Total struct {
	Label  string
	Amount decimal.Decimal
}

// Report is a single-table financial report
type Report struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Columns     []Column
	Rows        [][]any
	Totals      []Total
	Style       Style
}

// Style holds the colors and fonts shared by both exporters
type Style struct {
	HeaderColor string // hex
	StripeColor string // hex, every other row
	FontSize    float64
	Landscape   bool
}

// DefaultStyle is the green FinanceiroMax palette
func DefaultStyle() Style {
	return Style{
		HeaderColor: "#1E7B4F",
		StripeColor: "#EEF6F1",
		FontSize:    9,
		Landscape:   true,
	}
}

func (r *Report) widths() []float64 {
	w := make([]float64, len(r.Columns))
	for i, c := range r.Columns {
		w[i] = c.Width
		if w[i] <= 0 {
			w[i] = 1
		}
	}
	return w
}

// hexToRGB converts #RRGGBB, falling back to white
func hexToRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 255, 255, 255
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return 255, 255, 255
	}
	return r, g, b
}

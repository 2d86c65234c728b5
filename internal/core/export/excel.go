package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	brlNumFmt  = `"R$" #,##0.00`
	dateNumFmt = "dd/mm/yyyy"
)

// ExcelExporter writes reports as .xlsx using excelize
type ExcelExporter struct {
	sheetName string
}

func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{sheetName: "Relatorio"}
}

type excelStyles struct {
	title, header, money, date, text int
	stripedMoney, stripedDate, striped int
}

func (e *ExcelExporter) Export(report *Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.sheetName); err != nil {
		return err
	}

	st, err := e.styles(f, report.Style)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	row := 1
	if report.Title != "" {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellValue(e.sheetName, cell, report.Title)
		f.SetCellStyle(e.sheetName, cell, cell, st.title)
		row++
	}
	if report.Subtitle != "" {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellValue(e.sheetName, cell, report.Subtitle)
		row++
	}
	if row > 1 {
		row++
	}

	headerRow := row
	widths := report.widths()
	for i, col := range report.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(e.sheetName, cell, col.Title)
		f.SetCellStyle(e.sheetName, cell, cell, st.header)

		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(e.sheetName, name, name, 12*widths[i])
	}
	row++

	for r, values := range report.Rows {
		striped := r%2 == 1
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			style := st.text
			if striped {
				style = st.striped
			}

			switch val := v.(type) {
			case decimal.Decimal:
				amount, _ := val.Round(2).Float64()
				f.SetCellValue(e.sheetName, cell, amount)
				style = pick(striped, st.stripedMoney, st.money)
			case time.Time:
				f.SetCellValue(e.sheetName, cell, val)
				style = pick(striped, st.stripedDate, st.date)
			case *time.Time:
				if val != nil {
					f.SetCellValue(e.sheetName, cell, *val)
					style = pick(striped, st.stripedDate, st.date)
				}
			default:
				f.SetCellValue(e.sheetName, cell, v)
			}
			f.SetCellStyle(e.sheetName, cell, cell, style)
		}
		row++
	}

	if len(report.Rows) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(report.Columns), headerRow+len(report.Rows))
		first, _ := excelize.CoordinatesToCellName(1, headerRow)
		if err := f.AutoFilter(e.sheetName, first+":"+last, nil); err != nil {
			return fmt.Errorf("failed to add filter: %w", err)
		}
	}
	f.SetPanes(e.sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
		ActivePane:  "bottomLeft",
	})

	if len(report.Totals) > 0 {
		row++
		for _, t := range report.Totals {
			label, _ := excelize.CoordinatesToCellName(1, row)
			value, _ := excelize.CoordinatesToCellName(2, row)
			amount, _ := t.Amount.Round(2).Float64()
			f.SetCellValue(e.sheetName, label, t.Label)
			f.SetCellStyle(e.sheetName, label, label, st.header)
			f.SetCellValue(e.sheetName, value, amount)
			f.SetCellStyle(e.sheetName, value, value, st.money)
			row++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func (e *ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *ExcelExporter) Extension() string {
	return ".xlsx"
}

func (e *ExcelExporter) styles(f *excelize.File, style Style) (excelStyles, error) {
	var st excelStyles
	font := &excelize.Font{Size: style.FontSize + 1, Family: "Calibri"}
	stripe := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(style.StripeColor, "#")}}
	brl, date := brlNumFmt, dateNumFmt

	defs := []struct {
		target *int
		style  *excelize.Style
	}{
		{&st.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14, Family: "Calibri"}}},
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: font.Size, Family: font.Family, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(style.HeaderColor, "#")}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&st.text, &excelize.Style{Font: font}},
		{&st.money, &excelize.Style{Font: font, CustomNumFmt: &brl}},
		{&st.date, &excelize.Style{Font: font, CustomNumFmt: &date}},
		{&st.striped, &excelize.Style{Font: font, Fill: stripe}},
		{&st.stripedMoney, &excelize.Style{Font: font, Fill: stripe, CustomNumFmt: &brl}},
		{&st.stripedDate, &excelize.Style{Font: font, Fill: stripe, CustomNumFmt: &date}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return st, err
		}
		*d.target = id
	}
	return st, nil
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}

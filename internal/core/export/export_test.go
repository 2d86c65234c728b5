package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *Report {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return &Report{
		Title:       "Contas a Receber",
		Subtitle:    "Situação: todas",
		GeneratedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		Columns: []Column{
			{Title: "Descrição", Width: 3},
			{Title: "Cliente", Width: 2},
			{Title: "Valor", Align: AlignRight, Money: true},
			{Title: "Vencimento", Align: AlignCenter},
			{Title: "Status"},
		},
		Rows: [][]any{
			{"Venda - Parcela 1/2", "João", decimal.RequireFromString("1234.56"), due, "pending"},
			{"Venda - Parcela 2/2", "João", decimal.RequireFromString("10"), (*time.Time)(nil), "paid"},
		},
		Totals: []Total{{Label: "Total", Amount: decimal.RequireFromString("1244.56")}},
		Style:  DefaultStyle(),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatExcel, false},
		{"xlsx", FormatExcel, false},
		{"Excel", FormatExcel, false},
		{"pdf", FormatPDF, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_ExportExcel(t *testing.T) {
	data, contentType, ext, err := NewService().Export(sampleReport(), FormatExcel)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)
	assert.Contains(t, contentType, "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Relatorio", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Contas a Receber", title)

	// title, subtitle, blank, header
	header, err := f.GetCellValue("Relatorio", "A4")
	require.NoError(t, err)
	assert.Equal(t, "Descrição", header)

	desc, err := f.GetCellValue("Relatorio", "A5")
	require.NoError(t, err)
	assert.Equal(t, "Venda - Parcela 1/2", desc)
}

func TestService_ExportPDF(t *testing.T) {
	data, contentType, ext, err := NewService().Export(sampleReport(), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, ".pdf", ext)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestService_ExportRejects(t *testing.T) {
	svc := NewService()

	_, _, _, err := svc.Export(sampleReport(), Format("csv"))
	assert.Error(t, err)

	_, _, _, err = svc.Export(&Report{Title: "empty"}, FormatPDF)
	assert.Error(t, err)
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", cellText(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "10/03/2025", cellText(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", cellText((*time.Time)(nil)))
	assert.Equal(t, "3", cellText(3))
}

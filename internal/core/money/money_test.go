package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int
		want  []string
	}{
		{"even", "300.00", 3, []string{"100", "100", "100"}},
		{"remainder goes to last", "100.00", 3, []string{"33.33", "33.33", "33.34"}},
		{"single", "59.90", 1, []string{"59.9"}},
		{"cents smaller than parts", "0.05", 6, []string{"0", "0", "0", "0", "0", "0.05"}},
		{"twelve installments", "1000.00", 12, []string{
			"83.33", "83.33", "83.33", "83.33", "83.33", "83.33",
			"83.33", "83.33", "83.33", "83.33", "83.33", "83.37",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			parts, err := Split(total, tt.n)
			require.NoError(t, err)
			require.Len(t, parts, tt.n)

			for i, want := range tt.want {
				assert.True(t, decimal.RequireFromString(want).Equal(parts[i]), "part %d: want %s got %s", i, want, parts[i])
			}
			assert.True(t, total.Equal(Sum(parts...)))
		})
	}
}

func TestSplit_Invalid(t *testing.T) {
	_, err := Split(decimal.NewFromInt(10), 0)
	assert.Error(t, err)

	_, err = Split(decimal.NewFromInt(-10), 2)
	assert.Error(t, err)
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatBRL(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "R$ 0,50", FormatBRL(decimal.RequireFromString("0.5")))
}

func TestDates(t *testing.T) {
	in := time.Date(2026, 3, 9, 22, 45, 0, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), DateOnly(in))
	assert.Equal(t, "09/03/2026", FormatDate(in))

	d, err := ParseDate("2026-12-01")
	require.NoError(t, err)
	assert.Equal(t, time.December, d.Month())

	_, err = ParseDate("01/12/2026")
	assert.Error(t, err)
}

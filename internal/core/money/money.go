package money

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// Split divides total into n parts rounded down to cents. The cents lost
// to rounding go to the last part so the parts always sum to total.
func Split(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("installments must be positive, got %d", n)
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}

	total = total.Round(2)
	part := total.Div(decimal.NewFromInt(int64(n))).RoundDown(2)

	parts := make([]decimal.Decimal, n)
	sum := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = part
		sum = sum.Add(part)
	}
	parts[n-1] = total.Sub(sum)
	return parts, nil
}

// Sum adds up amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, amounts...)
}

// FormatBRL renders an amount the way Brazilian customers read it: R$ 1.234,56
func FormatBRL(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return "R$ " + brPrinter.Sprintf("%.2f", f)
}

// FormatDate renders dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is DateOnly(time.Now()).
func Today() time.Time {
	return DateOnly(time.Now())
}

// ParseDate accepts yyyy-mm-dd.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/money"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

const installmentInterval = 30 // days

// scheduleLine is one row of a generated receivable or payable batch
type scheduleLine struct {
	Number      int
	Total       int
	Description string
	Amount      decimal.Decimal
	DueDate     time.Time
}

// installmentSchedule splits total into n parts due every 30 days from first.
// The rounding remainder lands on the last part.
func installmentSchedule(description string, total decimal.Decimal, n int, first time.Time) ([]scheduleLine, error) {
	parts, err := money.Split(total, n)
	if err != nil {
		return nil, invalid("%v", err)
	}

	first = money.DateOnly(first)
	lines := make([]scheduleLine, n)
	for i := range lines {
		lines[i] = scheduleLine{
			Number:      i + 1,
			Total:       n,
			Description: fmt.Sprintf("%s - Parcela %d/%d", description, i+1, n),
			Amount:      parts[i],
			DueDate:     first.AddDate(0, 0, installmentInterval*i),
		}
	}
	return lines, nil
}

// recurringSchedule repeats amount monthly for n months.
func recurringSchedule(description string, amount decimal.Decimal, n int, first time.Time) ([]scheduleLine, error) {
	if n <= 0 {
		return nil, invalid("recurrence must be at least one month")
	}

	first = money.DateOnly(first)
	lines := make([]scheduleLine, n)
	for i := range lines {
		lines[i] = scheduleLine{
			Number:      i + 1,
			Total:       n,
			Description: fmt.Sprintf("%s - Mês %d/%d", description, i+1, n),
			Amount:      amount.Round(2),
			DueDate:     first.AddDate(0, i, 0),
		}
	}
	return lines, nil
}

// accountSchedule picks the schedule for a creation type.
func accountSchedule(kind, description string, amount decimal.Decimal, installments, months int, due time.Time) ([]scheduleLine, error) {
	switch kind {
	case "", models.TypeSimple:
		return []scheduleLine{{Description: description, Amount: amount.Round(2), DueDate: money.DateOnly(due)}}, nil
	case models.TypeInstallment:
		if installments < 1 {
			return nil, invalid("installments is required for installment accounts")
		}
		return installmentSchedule(description, amount, installments, due)
	case models.TypeRecurring:
		if months < 1 {
			months = installments
		}
		return recurringSchedule(description, amount, months, due)
	}
	return nil, invalid("unknown account type %q", kind)
}

func intPtr(v int) *int {
	return &v
}

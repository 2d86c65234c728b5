package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/money"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
)

// MonthTotal is the paid amount of one calendar month
type MonthTotal struct {
	Month string          `json:"month"` // YYYY-MM
	Total decimal.Decimal `json:"total"`
}

type StatusSummary struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type AccountsSummary struct {
	ByStatus     map[string]StatusSummary `json:"by_status"`
	OverdueCount int64                    `json:"overdue_count"`
	DueThisMonth decimal.Decimal          `json:"due_this_month"`
}

type Dashboard struct {
	Clients           int64                    `json:"clients"`
	Receivables       AccountsSummary          `json:"receivables"`
	Payables          AccountsSummary          `json:"payables"`
	Balance           decimal.Decimal          `json:"balance"` // received minus paid out
	RecentReceivables []models.Receivable      `json:"recent_receivables"`
	RecentPayables    []models.Payable         `json:"recent_payables"`
	PendingSales      []models.InstallmentSale `json:"pending_sales"`
	Revenue           []MonthTotal             `json:"revenue"`
	Overdue           *OverdueResult           `json:"overdue_updated"`
}

type DashboardService struct {
	clients     repositories.ClientRepo
	receivables repositories.ReceivableRepo
	payables    repositories.PayableRepo
	sales       repositories.SaleRepo
	overdue     *OverdueService
	now         func() time.Time
}

func NewDashboardService(db *gorm.DB, overdue *OverdueService) *DashboardService {
	return &DashboardService{
		clients:     repositories.NewClientRepo(db),
		receivables: repositories.NewReceivableRepo(db),
		payables:    repositories.NewPayableRepo(db),
		sales:       repositories.NewSaleRepo(db),
		overdue:     overdue,
		now:         time.Now,
	}
}

func (s *DashboardService) Summary(ctx context.Context, userID string) (*Dashboard, error) {
	updated, err := s.overdue.MarkOverdue(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Overdue: updated}

	if d.Clients, err = s.clients.Count(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	rTotals, err := s.receivables.Totals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum receivables: %w", err)
	}
	pTotals, err := s.payables.Totals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payables: %w", err)
	}
	d.Receivables = summarize(rTotals)
	d.Payables = summarize(pTotals)
	d.Balance = d.Receivables.ByStatus[models.StatusPaid].Total.Sub(d.Payables.ByStatus[models.StatusPaid].Total)

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	open := []string{models.StatusPending, models.StatusOverdue}
	dueFilter := repositories.AccountFilter{UserID: userID, Statuses: open, DueFrom: &monthStart, DueTo: &monthEnd}

	dueReceivables, err := s.receivables.List(ctx, dueFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list receivables: %w", err)
	}
	for _, r := range dueReceivables {
		d.Receivables.DueThisMonth = d.Receivables.DueThisMonth.Add(r.Amount)
	}
	duePayables, err := s.payables.List(ctx, dueFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payables: %w", err)
	}
	for _, p := range duePayables {
		d.Payables.DueThisMonth = d.Payables.DueThisMonth.Add(p.Amount)
	}

	recent := repositories.AccountFilter{UserID: userID, Limit: 5, NewestFirst: true}
	if d.RecentReceivables, err = s.receivables.List(ctx, recent); err != nil {
		return nil, fmt.Errorf("failed to list receivables: %w", err)
	}
	if d.RecentPayables, err = s.payables.List(ctx, recent); err != nil {
		return nil, fmt.Errorf("failed to list payables: %w", err)
	}
	if d.PendingSales, err = s.sales.List(ctx, userID, models.SalePending, models.SaleConfirmed); err != nil {
		return nil, fmt.Errorf("failed to list installment sales: %w", err)
	}

	// month grouping happens here because date functions differ per dialect
	from := monthStart.AddDate(0, -5, 0)
	paid, err := s.receivables.List(ctx, repositories.AccountFilter{
		UserID:   userID,
		Statuses: []string{models.StatusPaid},
		PaidFrom: &from,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list paid receivables: %w", err)
	}
	d.Revenue = monthlyTotals(paidReceivables(paid), now, 6)
	return d, nil
}

func summarize(totals []repositories.StatusTotal) AccountsSummary {
	summary := AccountsSummary{ByStatus: map[string]StatusSummary{}}
	for _, status := range []string{models.StatusPending, models.StatusOverdue, models.StatusPaid, models.StatusCancelled} {
		summary.ByStatus[status] = StatusSummary{Total: decimal.Zero}
	}
	for _, t := range totals {
		summary.ByStatus[t.Status] = StatusSummary{Count: t.Count, Total: t.Total}
		if t.Status == models.StatusOverdue {
			summary.OverdueCount = t.Count
		}
	}
	return summary
}

type paidEntry struct {
	When   time.Time
	Amount decimal.Decimal
}

func paidReceivables(receivables []models.Receivable) []paidEntry {
	var entries []paidEntry
	for _, r := range receivables {
		if r.Status != models.StatusPaid {
			continue
		}
		when := r.DueDate
		if r.PaidAt != nil {
			when = *r.PaidAt
		}
		entries = append(entries, paidEntry{When: when, Amount: r.Amount})
	}
	return entries
}

func paidPayables(payables []models.Payable) []paidEntry {
	var entries []paidEntry
	for _, p := range payables {
		if p.Status != models.StatusPaid {
			continue
		}
		when := p.DueDate
		if p.PaidAt != nil {
			when = *p.PaidAt
		}
		entries = append(entries, paidEntry{When: when, Amount: p.Amount})
	}
	return entries
}

// monthlyTotals buckets entries into the last n calendar months, oldest
// first, with empty months reported as zero.
func monthlyTotals(entries []paidEntry, now time.Time, n int) []MonthTotal {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)

	months := make([]MonthTotal, n)
	index := make(map[string]int, n)
	for i := range months {
		key := start.AddDate(0, i, 0).Format("2006-01")
		months[i] = MonthTotal{Month: key, Total: decimal.Zero}
		index[key] = i
	}
	for _, e := range entries {
		if i, ok := index[money.DateOnly(e.When).Format("2006-01")]; ok {
			months[i].Total = months[i].Total.Add(e.Amount)
		}
	}
	return months
}

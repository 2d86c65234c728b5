package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

func TestDashboardService_Summary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.client(t, "Maria", "")

	paid := env.simpleReceivable(t, client.ID.String(), "2026-03-05", "300.00")
	_, err := env.receivables.MarkPaid(ctx, env.userID, paid.ID.String())
	require.NoError(t, err)
	env.simpleReceivable(t, client.ID.String(), "2026-03-01", "100.00")
	env.simpleReceivable(t, client.ID.String(), "2026-03-25", "50.00")
	env.simpleReceivable(t, client.ID.String(), "2026-04-25", "70.00")

	bills, err := env.payables.Create(ctx, env.userID, &models.CreatePayableRequest{
		Description: "Aluguel", Amount: decimal.NewFromInt(120), DueDate: "2026-03-08",
	})
	require.NoError(t, err)
	_, err = env.payables.MarkPaid(ctx, env.userID, bills[0].ID.String())
	require.NoError(t, err)

	createSale(t, env, client.ID.String(), "600.00", 3)

	d, err := env.dashboard.Summary(ctx, env.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Clients)
	assert.Equal(t, int64(1), d.Overdue.Receivables)
	assert.Equal(t, int64(1), d.Receivables.OverdueCount)
	assert.Equal(t, int64(2), d.Receivables.ByStatus[models.StatusPending].Count)
	assert.Equal(t, "120", d.Receivables.ByStatus[models.StatusPending].Total.String())
	assert.Equal(t, "150", d.Receivables.DueThisMonth.String())
	assert.Equal(t, "180", d.Balance.String())
	assert.True(t, d.Receivables.ByStatus[models.StatusCancelled].Total.IsZero())
	assert.Len(t, d.RecentReceivables, 4)
	assert.Len(t, d.RecentPayables, 1)
	assert.Len(t, d.PendingSales, 1)

	require.Len(t, d.Revenue, 6)
	assert.Equal(t, "2025-10", d.Revenue[0].Month)
	assert.Equal(t, "2026-03", d.Revenue[5].Month)
	assert.Equal(t, "300", d.Revenue[5].Total.String())
	assert.True(t, d.Revenue[4].Total.IsZero())
}

func TestMonthlyTotals(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	entries := []paidEntry{
		{When: time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(10)},
		{When: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(5)},
		{When: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(5)},
		{When: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(99)},
	}

	months := monthlyTotals(entries, now, 3)
	require.Len(t, months, 3)
	assert.Equal(t, []string{"2025-11", "2025-12", "2026-01"}, []string{months[0].Month, months[1].Month, months[2].Month})
	assert.True(t, months[0].Total.IsZero())
	assert.Equal(t, "10", months[1].Total.String())
	assert.Equal(t, "10", months[2].Total.String())
}

func TestExportService_Receivables(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.client(t, "Maria", "")
	env.simpleReceivable(t, client.ID.String(), "2026-03-01", "100.00")
	env.simpleReceivable(t, client.ID.String(), "2026-04-01", "50.00")

	file, err := env.exports.Receivables(ctx, env.userID, "", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "contas_a_receber_20260310.xlsx", file.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", file.ContentType)

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()
	assert.NotEmpty(t, book.GetSheetList())

	overdue, err := env.exports.Receivables(ctx, env.userID, models.StatusOverdue, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "contas_a_receber_20260310.pdf", overdue.Filename)
	assert.True(t, bytes.HasPrefix(overdue.Data, []byte("%PDF")))
}

func TestExportService_Payables(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.payables.Create(ctx, env.userID, &models.CreatePayableRequest{
		Description: "Luz", Amount: decimal.NewFromInt(200), DueDate: "2026-03-11", Category: "fixas",
	})
	require.NoError(t, err)

	file, err := env.exports.Payables(ctx, env.userID, models.StatusPending, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "contas_a_pagar_20260310.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
}

func TestExportService_RejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.exports.Receivables(context.Background(), env.userID, "lost", "pdf")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.exports.Payables(context.Background(), env.userID, "", "docx")
	assert.ErrorIs(t, err, ErrValidation)
}

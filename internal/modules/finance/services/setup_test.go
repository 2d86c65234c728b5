package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/database"
)

type sentText struct{ instance, phone, text string }

type fakeSender struct {
	mu   sync.Mutex
	sent []sentText
	err  error
}

func (f *fakeSender) SendText(_ context.Context, instance, phone, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentText{instance, phone, text})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) last() sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

// testEnv wires every service against one in-memory database
type testEnv struct {
	db          *gorm.DB
	sender      *fakeSender
	notifier    *notification.Service
	plans       *PlanService
	overdue     *OverdueService
	clients     *ClientService
	suppliers   *SupplierService
	sales       *SaleService
	receivables *ReceivableService
	payables    *PayableService
	reminders   *ReminderService
	dashboard   *DashboardService
	exports     *ExportService
	userID      string
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := database.Open("sqlite::memory:", database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	db := conn.GORM
	require.NoError(t, db.AutoMigrate(models.All()...))

	provider, err := upload.NewLocalProvider(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	sender := &fakeSender{}
	msgLog := NewMessageLog(db)
	notifier := notification.NewService(sender,
		notification.WithInstanceResolver(msgLog),
		notification.WithRecorder(msgLog),
	)

	env := &testEnv{db: db, sender: sender, notifier: notifier, userID: uuid.NewString()}
	env.plans = NewPlanService(db, decimal.RequireFromString("29.90"), "5511988887777", notifier)
	env.overdue = NewOverdueService(db, time.UTC)
	env.clients = NewClientService(db, env.plans)
	env.suppliers = NewSupplierService(db)
	env.sales = NewSaleService(db, env.plans, notifier, upload.NewService(provider), "https://app.financeiromax.com.br/", time.UTC)
	env.receivables = NewReceivableService(db, env.plans, env.sales, env.overdue)
	env.payables = NewPayableService(db, env.plans, env.overdue)
	env.reminders = NewReminderService(db, notifier, time.UTC)
	env.dashboard = NewDashboardService(db, env.overdue)
	env.exports = NewExportService(db, export.NewService(), env.overdue)
	env.setNow(testNow)
	return env
}

func (e *testEnv) setNow(now time.Time) {
	clock := func() time.Time { return now }
	e.plans.now = clock
	e.overdue.now = clock
	e.sales.now = clock
	e.receivables.now = clock
	e.payables.now = clock
	e.reminders.now = clock
	e.dashboard.now = clock
	e.exports.now = clock
}

func (e *testEnv) client(t *testing.T, name, phone string) *models.Client {
	t.Helper()
	client, err := e.clients.Create(context.Background(), e.userID, &models.ClientRequest{Name: name, WhatsApp: phone})
	require.NoError(t, err)
	return client
}

func (e *testEnv) setReceivableLimit(t *testing.T, max int) {
	t.Helper()
	_, _, err := e.plans.Current(context.Background(), e.userID)
	require.NoError(t, err)
	require.NoError(t, e.db.Model(&models.UserPlan{}).
		Where("user_id = ?", e.userID).
		Update("max_receivables", max).Error)
}

func (e *testEnv) countReceivables(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Receivable{}).Where("user_id = ?", e.userID).Count(&n).Error)
	return n
}

func (e *testEnv) messages(t *testing.T) []models.WhatsAppMessage {
	t.Helper()
	var messages []models.WhatsAppMessage
	require.NoError(t, e.db.Where("user_id = ?", e.userID).Order("created_at ASC").Find(&messages).Error)
	return messages
}

func (e *testEnv) simpleReceivable(t *testing.T, clientID, due string, amount string) models.Receivable {
	t.Helper()
	res, err := e.receivables.Create(context.Background(), e.userID, &models.CreateReceivableRequest{
		ClientID:    clientID,
		Description: "Serviço",
		Amount:      decimal.RequireFromString(amount),
		DueDate:     due,
	})
	require.NoError(t, err)
	require.Len(t, res.Receivables, 1)
	return res.Receivables[0]
}

// otherUser shares the database and services under a fresh user ID.
func (e *testEnv) otherUser() *testEnv {
	other := *e
	other.userID = uuid.NewString()
	return &other
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/database"
)

type recordingSender struct {
	mu    sync.Mutex
	texts []string
}

func (s *recordingSender) SendText(_ context.Context, _, _, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

type testApp struct {
	app    *fiber.App
	auth   *auth.Service
	sender *recordingSender
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	conn, err := database.Open("sqlite::memory:", database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	db := conn.GORM
	require.NoError(t, db.AutoMigrate(append([]interface{}{&auth.User{}}, models.All()...)...))

	provider, err := upload.NewLocalProvider(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	sender := &recordingSender{}
	msgLog := services.NewMessageLog(db)
	notifier := notification.NewService(sender,
		notification.WithInstanceResolver(msgLog),
		notification.WithRecorder(msgLog),
	)

	plans := services.NewPlanService(db, decimal.RequireFromString("29.90"), "5511988887777", notifier)
	overdue := services.NewOverdueService(db, time.UTC)
	sales := services.NewSaleService(db, plans, notifier, upload.NewService(provider), "https://app.financeiromax.com.br", time.UTC)
	authService := auth.NewService(db, "test-secret", plans.CreateFreePlan)

	h := &Handlers{
		Clients:   NewClientHandler(services.NewClientService(db, plans), services.NewSupplierService(db)),
		Accounts:  NewAccountHandler(services.NewReceivableService(db, plans, sales, overdue), services.NewPayableService(db, plans, overdue)),
		Sales:     NewSaleHandler(sales),
		Plans:     NewPlanHandler(plans, authService),
		Tasks:     NewTaskHandler(overdue, services.NewReminderService(db, notifier, time.UTC)),
		WhatsApp:  NewWhatsAppHandler(services.NewWhatsAppService(db, nil, notifier)),
		Insights:  NewInsightHandler(services.NewInsightService(db, nil, "", plans, overdue)),
		Dashboard: NewDashboardHandler(services.NewDashboardService(db, overdue), services.NewExportService(db, export.NewService(), overdue)),
		Health:    NewHealthHandler(conn.DB, "none"),
		Audit:     NewAuditHandler(audit.NewService(db)),
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h.RegisterRoutes(app, auth.AuthMiddleware(authService), auth.RequireAdmin())
	return &testApp{app: app, auth: authService, sender: sender}
}

// user registers an account and returns its ID and access token.
func (a *testApp) user(t *testing.T, email string) (string, string) {
	t.Helper()
	resp, err := a.auth.Register(context.Background(), &auth.RegisterRequest{
		Name: "Maria", Email: email, Password: "secret123",
	})
	require.NoError(t, err)
	return resp.User.ID, resp.AccessToken
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func (a *testApp) client(t *testing.T, token string) string {
	t.Helper()
	status, body := a.do(t, http.MethodPost, "/clients", token, fiber.Map{
		"name": "João Silva", "whatsapp": "11999998888",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decode(t, body)["id"].(string)
}

func TestRoutes_RequireAuth(t *testing.T) {
	a := newTestApp(t)

	status, _ := a.do(t, http.MethodGet, "/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := a.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", decode(t, body)["database"])

	status, body = a.do(t, http.MethodGet, "/plans", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "Premium")
}

func TestClientHandler_Validation(t *testing.T) {
	a := newTestApp(t)
	_, token := a.user(t, "maria@example.com")

	status, body := a.do(t, http.MethodPost, "/clients", token, fiber.Map{"name": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode(t, body)["error"], "name is required")

	status, body = a.do(t, http.MethodPost, "/clients", token, fiber.Map{"name": "X", "document": "111.111.111-11"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode(t, body)["error"], "CPF/CNPJ")

	status, _ = a.do(t, http.MethodGet, "/clients/8a6e0804-2bd0-4672-b79d-d97027f9071a", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAccountHandler_PlanLimit(t *testing.T) {
	a := newTestApp(t)
	_, token := a.user(t, "maria@example.com")
	clientID := a.client(t, token)

	// 21 installments do not fit the Free plan's 20 receivables
	status, body := a.do(t, http.MethodPost, "/receivables", token, fiber.Map{
		"client_id":    clientID,
		"description":  "Notebook",
		"amount":       "2100.00",
		"due_date":     time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		"type":         "installment",
		"installments": 21,
	})
	require.Equal(t, http.StatusForbidden, status, string(body))
	res := decode(t, body)
	assert.Equal(t, "receivables", res["resource"])
	assert.Equal(t, float64(20), res["limit"])

	status, body = a.do(t, http.MethodGet, "/receivables", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(body))

	status, body = a.do(t, http.MethodGet, "/plans/limits", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Free", decode(t, body)["plan"].(map[string]interface{})["plan_name"])
}

func TestSaleHandler_Workflow(t *testing.T) {
	a := newTestApp(t)
	_, token := a.user(t, "maria@example.com")
	clientID := a.client(t, token)

	status, body := a.do(t, http.MethodPost, "/installment-sales", token, fiber.Map{
		"client_id":    clientID,
		"total_amount": "100.00",
		"installments": 3,
		"description":  "Geladeira",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode(t, body)
	sale := created["sale"].(map[string]interface{})
	saleID := sale["id"].(string)
	token1 := sale["confirmation_token"].(string)
	assert.Equal(t, "pending", sale["status"])
	assert.Equal(t, true, created["whatsapp_sent"])
	assert.True(t, strings.HasSuffix(created["confirmation_url"].(string), "/public/sales/"+token1))

	// approving before the client confirms is a conflict
	status, _ = a.do(t, http.MethodPost, "/installment-sales/"+saleID+"/approve", token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = a.do(t, http.MethodGet, "/public/sales/"+token1, "", nil)
	require.Equal(t, http.StatusOK, status)
	view := decode(t, body)
	assert.Equal(t, "João Silva", view["client_name"])
	assert.Equal(t, true, view["can_confirm"])
	assert.Equal(t, "33.33", view["installment_amount"])
	assert.NotContains(t, string(body), token1)

	status, body = a.do(t, http.MethodPost, "/public/sales/"+token1+"/confirm", "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	status, _ = a.do(t, http.MethodPost, "/public/sales/"+token1+"/confirm", "", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = a.do(t, http.MethodPost, "/installment-sales/"+saleID+"/approve", token, fiber.Map{"notes": "ok"})
	require.Equal(t, http.StatusOK, status, string(body))
	approved := decode(t, body)
	assert.Equal(t, "approved", approved["sale"].(map[string]interface{})["status"])
	assert.Len(t, approved["receivables"], 3)

	status, body = a.do(t, http.MethodGet, "/installment-sales/"+saleID+"/qr", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	status, body = a.do(t, http.MethodGet, "/installment-sales/"+saleID+"/history", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var history []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &history))
	actions := make([]interface{}, len(history))
	for i, entry := range history {
		actions[i] = entry["action"]
	}
	assert.ElementsMatch(t, []interface{}{"create", "confirm", "approve"}, actions)

	status, body = a.do(t, http.MethodGet, "/audit-logs?entity=installment_sale&action=confirm", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	page := decode(t, body)
	assert.Equal(t, float64(1), page["total_count"])
	assert.Equal(t, "client", page["logs"].([]interface{})[0].(map[string]interface{})["actor"])

	status, _ = a.do(t, http.MethodGet, "/audit-logs?start_date=10/03/2026", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.do(t, http.MethodGet, "/public/sales/unknown-token", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSaleHandler_RejectWithoutNotes(t *testing.T) {
	a := newTestApp(t)
	_, token := a.user(t, "maria@example.com")

	status, _ := a.do(t, http.MethodPost, "/installment-sales/8a6e0804-2bd0-4672-b79d-d97027f9071a/reject", token, fiber.Map{})
	assert.Equal(t, http.StatusNotFound, status)

	status, body := a.do(t, http.MethodPost, "/installment-sales/8a6e0804-2bd0-4672-b79d-d97027f9071a/reject", token,
		fiber.Map{"notes": strings.Repeat("x", 1001)})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode(t, body)["error"], "notes")
}

func TestPlanHandler_Admin(t *testing.T) {
	a := newTestApp(t)
	_, adminToken := a.user(t, "admin@example.com")
	userID, userToken := a.user(t, "maria@example.com")

	status, _ := a.do(t, http.MethodGet, "/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := a.do(t, http.MethodGet, "/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &users))
	assert.Len(t, users, 2)

	// Free users cannot use AI insights
	status, _ = a.do(t, http.MethodPost, "/insights/cash-flow", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.do(t, http.MethodPut, "/admin/users/8a6e0804-2bd0-4672-b79d-d97027f9071a/plan", adminToken, fiber.Map{"plan_name": "Premium"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = a.do(t, http.MethodPut, "/admin/users/"+userID+"/plan", adminToken, fiber.Map{"plan_name": "Premium"})
	require.Equal(t, http.StatusOK, status, string(body))
	plan := decode(t, body)
	assert.Equal(t, "Premium", plan["plan_name"])
	assert.NotEmpty(t, plan["expires_at"])

	// Premium now, but no AI provider is configured in tests
	status, _ = a.do(t, http.MethodPost, "/insights/cash-flow", userToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, body = a.do(t, http.MethodPost, "/plans/upgrade-request", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasPrefix(decode(t, body)["whatsapp_url"].(string), "https://wa.me/5511988887777?text="))
}

func TestDashboardHandler_Export(t *testing.T) {
	a := newTestApp(t)
	_, token := a.user(t, "maria@example.com")

	req := httptest.NewRequest(http.MethodGet, "/export/receivables?format=pdf", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")

	status, _ := a.do(t, http.MethodGet, "/export/payables?format=doc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := a.do(t, http.MethodGet, "/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, status, string(body))
}

func TestWhatsAppHandler_Unconfigured(t *testing.T) {
	a := newTestApp(t)
	_, token := a.user(t, "maria@example.com")

	status, _ := a.do(t, http.MethodPost, "/whatsapp/instances", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	clientID := a.client(t, token)
	status, body := a.do(t, http.MethodPost, "/whatsapp/messages", token, fiber.Map{"client_id": clientID, "message": "Olá"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, true, decode(t, body)["whatsapp_sent"])

	status, body = a.do(t, http.MethodGet, "/whatsapp/messages", token, nil)
	require.Equal(t, http.StatusOK, status)
	var messages []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "sent", messages[0]["status"])
}

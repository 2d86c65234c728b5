package handlers

import "github.com/gofiber/fiber/v2"

// Handlers groups every finance handler so main can mount them at once.
type Handlers struct {
	Clients   *ClientHandler
	Accounts  *AccountHandler
	Sales     *SaleHandler
	Plans     *PlanHandler
	Tasks     *TaskHandler
	WhatsApp  *WhatsAppHandler
	Insights  *InsightHandler
	Dashboard *DashboardHandler
	Health    *HealthHandler
	Audit     *AuditHandler
}

// RegisterRoutes mounts the public routes as-is and everything else behind
// requireAuth. /admin additionally needs requireAdmin.
func (h *Handlers) RegisterRoutes(router fiber.Router, requireAuth, requireAdmin fiber.Handler) {
	router.Get("/health", h.Health.GetHealth)
	router.Get("/plans", h.Plans.Catalog)

	public := router.Group("/public/sales")
	public.Get("/:token", h.Sales.PublicView)
	public.Post("/:token/confirm", h.Sales.PublicConfirm)

	clients := router.Group("/clients", requireAuth)
	clients.Get("/", h.Clients.ListClients)
	clients.Post("/", h.Clients.CreateClient)
	clients.Get("/:id", h.Clients.GetClient)
	clients.Put("/:id", h.Clients.UpdateClient)
	clients.Delete("/:id", h.Clients.DeleteClient)

	suppliers := router.Group("/suppliers", requireAuth)
	suppliers.Get("/", h.Clients.ListSuppliers)
	suppliers.Post("/", h.Clients.CreateSupplier)
	suppliers.Get("/:id", h.Clients.GetSupplier)
	suppliers.Put("/:id", h.Clients.UpdateSupplier)
	suppliers.Delete("/:id", h.Clients.DeleteSupplier)

	receivables := router.Group("/receivables", requireAuth)
	receivables.Get("/", h.Accounts.ListReceivables)
	receivables.Post("/", h.Accounts.CreateReceivable)
	receivables.Get("/:id", h.Accounts.GetReceivable)
	receivables.Put("/:id", h.Accounts.UpdateReceivable)
	receivables.Post("/:id/pay", h.Accounts.PayReceivable)
	receivables.Delete("/:id", h.Accounts.DeleteReceivable)

	payables := router.Group("/payables", requireAuth)
	payables.Get("/", h.Accounts.ListPayables)
	payables.Post("/", h.Accounts.CreatePayable)
	payables.Get("/:id", h.Accounts.GetPayable)
	payables.Put("/:id", h.Accounts.UpdatePayable)
	payables.Post("/:id/pay", h.Accounts.PayPayable)
	payables.Delete("/:id", h.Accounts.DeletePayable)

	sales := router.Group("/installment-sales", requireAuth)
	sales.Get("/", h.Sales.ListSales)
	sales.Post("/", h.Sales.CreateSale)
	sales.Get("/:id", h.Sales.GetSale)
	sales.Get("/:id/qr", h.Sales.SaleQRCode)
	sales.Get("/:id/history", h.Sales.SaleHistory)
	sales.Post("/:id/approve", h.Sales.ApproveSale)
	sales.Post("/:id/reject", h.Sales.RejectSale)
	sales.Post("/:id/regenerate-token", h.Sales.RegenerateToken)
	sales.Post("/:id/resend", h.Sales.ResendSale)
	sales.Delete("/:id", h.Sales.DeleteSale)

	plans := router.Group("/plans", requireAuth)
	plans.Get("/limits", h.Plans.Limits)
	plans.Post("/upgrade-request", h.Plans.UpgradeRequest)

	admin := router.Group("/admin", requireAuth, requireAdmin)
	admin.Get("/users", h.Plans.ListUsers)
	admin.Put("/users/:id/plan", h.Plans.SetUserPlan)

	tasks := router.Group("/tasks", requireAuth)
	tasks.Post("/update-overdue", h.Tasks.UpdateOverdue)
	tasks.Get("/due-soon", h.Tasks.DueSoon)

	reminders := router.Group("/reminders", requireAuth)
	reminders.Post("/run", h.Tasks.RunReminders)
	reminders.Get("/config", h.Tasks.GetReminderConfig)
	reminders.Put("/config", h.Tasks.UpdateReminderConfig)
	reminders.Get("/templates", h.Tasks.ListTemplates)
	reminders.Post("/templates", h.Tasks.CreateTemplate)
	reminders.Put("/templates/:id", h.Tasks.UpdateTemplate)
	reminders.Delete("/templates/:id", h.Tasks.DeleteTemplate)

	wa := router.Group("/whatsapp", requireAuth)
	wa.Get("/instances", h.WhatsApp.ListInstances)
	wa.Post("/instances", h.WhatsApp.CreateInstance)
	wa.Get("/instances/:id/status", h.WhatsApp.InstanceStatus)
	wa.Get("/instances/:id/qr", h.WhatsApp.InstanceQRCode)
	wa.Delete("/instances/:id", h.WhatsApp.DeleteInstance)
	wa.Get("/messages", h.WhatsApp.ListMessages)
	wa.Post("/messages", h.WhatsApp.SendMessage)

	insights := router.Group("/insights", requireAuth)
	insights.Get("/", h.Insights.ListInsights)
	insights.Post("/cash-flow", h.Insights.CashFlow)
	insights.Post("/client-risk", h.Insights.ClientRisk)
	insights.Post("/business", h.Insights.Business)
	insights.Post("/report", h.Insights.Report)

	router.Get("/audit-logs", requireAuth, h.Audit.ListLogs)
	router.Get("/dashboard", requireAuth, h.Dashboard.GetDashboard)
	exports := router.Group("/export", requireAuth)
	exports.Get("/receivables", h.Dashboard.ExportReceivables)
	exports.Get("/payables", h.Dashboard.ExportPayables)
}

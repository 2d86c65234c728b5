package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	exportService    *services.ExportService
}

func NewDashboardHandler(dashboardService *services.DashboardService, exportService *services.ExportService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		exportService:    exportService,
	}
}

// GetDashboard godoc
// @Summary Financial overview
// @Description Totals by status, amounts due this month, recent items, open sales and six months of revenue
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.Dashboard
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	dashboard, err := h.dashboardService.Summary(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, err, "load dashboard")
	}
	return c.JSON(dashboard)
}

// ExportReceivables godoc
// @Summary Download receivables
// @Tags Export
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "excel or pdf" default(excel)
// @Param status query string false "Filter by status"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{}
// @Router /export/receivables [get]
func (h *DashboardHandler) ExportReceivables(c *fiber.Ctx) error {
	return h.download(c, h.exportService.Receivables)
}

// ExportPayables godoc
// @Summary Download payables
// @Tags Export
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "excel or pdf" default(excel)
// @Param status query string false "Filter by status"
// @Success 200 {file} binary
// @Router /export/payables [get]
func (h *DashboardHandler) ExportPayables(c *fiber.Ctx) error {
	return h.download(c, h.exportService.Payables)
}

type exportFunc func(ctx context.Context, userID, status, format string) (*services.ExportFile, error)

func (h *DashboardHandler) download(c *fiber.Ctx, export exportFunc) error {
	file, err := export(c.UserContext(), auth.UserID(c), c.Query("status"), c.Query("format", "excel"))
	if err != nil {
		return respondError(c, err, "export report")
	}
	c.Attachment(file.Filename)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Data)
}

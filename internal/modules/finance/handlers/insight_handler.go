package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
)

// InsightHandler serves the Premium AI analyses.
type InsightHandler struct {
	insightService *services.InsightService
}

func NewInsightHandler(insightService *services.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

func (h *InsightHandler) generate(c *fiber.Ctx, kind string) error {
	insight, err := h.insightService.Generate(c.UserContext(), auth.UserID(c), kind)
	if err != nil {
		return respondError(c, err, "generate insight")
	}
	return c.Status(fiber.StatusCreated).JSON(insight)
}

// CashFlow godoc
// @Summary Cash flow forecast
// @Tags Insights
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.AIInsight
// @Failure 403 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /insights/cash-flow [post]
func (h *InsightHandler) CashFlow(c *fiber.Ctx) error {
	return h.generate(c, models.InsightCashFlow)
}

// ClientRisk godoc
// @Summary Client default risk analysis
// @Tags Insights
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.AIInsight
// @Failure 403 {object} map[string]interface{}
// @Router /insights/client-risk [post]
func (h *InsightHandler) ClientRisk(c *fiber.Ctx) error {
	return h.generate(c, models.InsightClientRisk)
}

// Business godoc
// @Summary Business recommendations
// @Tags Insights
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.AIInsight
// @Failure 403 {object} map[string]interface{}
// @Router /insights/business [post]
func (h *InsightHandler) Business(c *fiber.Ctx) error {
	return h.generate(c, models.InsightBusiness)
}

// Report godoc
// @Summary All three analyses at once
// @Tags Insights
// @Produce json
// @Security BearerAuth
// @Success 201 {array} models.AIInsight
// @Failure 403 {object} map[string]interface{}
// @Router /insights/report [post]
func (h *InsightHandler) Report(c *fiber.Ctx) error {
	insights, err := h.insightService.Report(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, err, "generate report")
	}
	return c.Status(fiber.StatusCreated).JSON(insights)
}

// ListInsights godoc
// @Summary Stored insights
// @Tags Insights
// @Produce json
// @Security BearerAuth
// @Param type query string false "cash_flow, client_risk or business"
// @Success 200 {array} models.AIInsight
// @Router /insights [get]
func (h *InsightHandler) ListInsights(c *fiber.Ctx) error {
	insights, err := h.insightService.List(c.UserContext(), auth.UserID(c), c.Query("type"))
	if err != nil {
		return respondError(c, err, "list insights")
	}
	return c.JSON(insights)
}

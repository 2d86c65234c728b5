package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
)

type AuditHandler struct {
	auditService *audit.Service
}

func NewAuditHandler(auditService *audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListLogs godoc
// @Summary List the audit trail of the current user
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param entity query string false "installment_sale or user_plan"
// @Param entity_id query string false "Entity ID"
// @Param action query string false "Action"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(50)
// @Success 200 {object} audit.AuditLogResponse
// @Router /audit-logs [get]
func (h *AuditHandler) ListLogs(c *fiber.Ctx) error {
	filter := audit.AuditFilter{
		UserID:   auth.UserID(c),
		Entity:   c.Query("entity"),
		EntityID: c.Query("entity_id"),
		Action:   c.Query("action"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}

	var err error
	if filter.StartDate, err = queryDate(c, "start_date", false); err != nil {
		return err
	}
	if filter.EndDate, err = queryDate(c, "end_date", true); err != nil {
		return err
	}

	logs, err := h.auditService.GetLogs(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "list audit logs")
	}
	return c.JSON(logs)
}

// queryDate parses an optional YYYY-MM-DD; endOfDay makes the bound inclusive.
func queryDate(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" must be YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

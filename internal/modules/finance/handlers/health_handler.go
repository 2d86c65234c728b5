package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db       Pinger
	provider string
}

// NewHealthHandler takes the WhatsApp provider name to report, "none"
// when messaging is disabled.
func NewHealthHandler(db Pinger, provider string) *HealthHandler {
	return &HealthHandler{db: db, provider: provider}
}

// GetHealth godoc
// @Summary Service health check
// @Description Pings the database and reports the WhatsApp provider
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, code, database := "ok", fiber.StatusOK, "up"
	if err := h.db.PingContext(ctx); err != nil {
		status, code, database = "degraded", fiber.StatusServiceUnavailable, "down"
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"service":  "financeiro-max-api",
		"database": database,
		"provider": h.provider,
	})
}

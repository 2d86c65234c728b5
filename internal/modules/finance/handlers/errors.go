package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/validation"
)

// respondError maps service errors to HTTP statuses. Anything unexpected
// is logged and answered with a generic message.
func respondError(c *fiber.Ctx, err error, action string) error {
	var status int
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound), errors.Is(err, auth.ErrUserNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrAlreadyProcessed),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInUse):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrPlanLimitReached), errors.Is(err, services.ErrPremiumRequired):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrUnavailable):
		status = fiber.StatusServiceUnavailable
	default:
		log.Printf("❌ Failed to %s: %v", action, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to " + action,
		})
	}

	body := fiber.Map{"error": err.Error()}
	var limit *services.PlanLimitError
	if errors.As(err, &limit) {
		body["resource"] = limit.Resource
		body["plan"] = limit.Plan
		body["limit"] = limit.Limit
		body["used"] = limit.Used
	}
	return c.Status(status).JSON(body)
}

// bind parses the JSON body into req and validates it. The returned
// *fiber.Error is rendered by ErrorHandler.
func bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// ErrorHandler is the app-wide fiber error handler. It keeps the
// {"error": ...} shape for errors handlers return instead of rendering.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	log.Printf("❌ Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

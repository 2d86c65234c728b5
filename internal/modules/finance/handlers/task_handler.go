package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
)

// TaskHandler exposes the overdue and reminder jobs on demand, plus the
// reminder settings they read.
type TaskHandler struct {
	overdueService  *services.OverdueService
	reminderService *services.ReminderService
}

func NewTaskHandler(overdueService *services.OverdueService, reminderService *services.ReminderService) *TaskHandler {
	return &TaskHandler{
		overdueService:  overdueService,
		reminderService: reminderService,
	}
}

// UpdateOverdue godoc
// @Summary Mark past-due accounts as overdue
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.OverdueResult
// @Router /tasks/update-overdue [post]
func (h *TaskHandler) UpdateOverdue(c *fiber.Ctx) error {
	result, err := h.overdueService.MarkOverdue(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, err, "update overdue accounts")
	}
	return c.JSON(result)
}

// DueSoon godoc
// @Summary Pending accounts due in the next days
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days" default(3)
// @Success 200 {object} services.DueSoon
// @Router /tasks/due-soon [get]
func (h *TaskHandler) DueSoon(c *fiber.Ctx) error {
	result, err := h.overdueService.DueSoon(c.UserContext(), auth.UserID(c), queryInt(c, "days", 3))
	if err != nil {
		return respondError(c, err, "list accounts due soon")
	}
	return c.JSON(result)
}

// RunReminders godoc
// @Summary Send the caller's reminders now
// @Description Ignores the preferred hour
// @Tags Reminders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.ReminderStats
// @Router /reminders/run [post]
func (h *TaskHandler) RunReminders(c *fiber.Ctx) error {
	stats, err := h.reminderService.RunUser(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, err, "send reminders")
	}
	return c.JSON(stats)
}

// GetReminderConfig godoc
// @Summary Automatic reminder settings
// @Tags Reminders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AutoReminderConfig
// @Router /reminders/config [get]
func (h *TaskHandler) GetReminderConfig(c *fiber.Ctx) error {
	config, err := h.reminderService.Config(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, err, "load reminder config")
	}
	return c.JSON(config)
}

// UpdateReminderConfig godoc
// @Summary Change automatic reminder settings
// @Tags Reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ReminderConfigRequest true "Settings"
// @Success 200 {object} models.AutoReminderConfig
// @Failure 400 {object} map[string]interface{}
// @Router /reminders/config [put]
func (h *TaskHandler) UpdateReminderConfig(c *fiber.Ctx) error {
	var req models.ReminderConfigRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	config, err := h.reminderService.UpdateConfig(c.UserContext(), auth.UserID(c), &req)
	if err != nil {
		return respondError(c, err, "update reminder config")
	}
	return c.JSON(config)
}

// ListTemplates godoc
// @Summary Reminder templates
// @Tags Reminders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.PaymentReminder
// @Router /reminders/templates [get]
func (h *TaskHandler) ListTemplates(c *fiber.Ctx) error {
	templates, err := h.reminderService.Templates(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, err, "list reminder templates")
	}
	return c.JSON(templates)
}

// CreateTemplate godoc
// @Summary Create a reminder template
// @Description Placeholders: {cliente}, {descricao}, {valor}, {vencimento}, {dias}
// @Tags Reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ReminderRequest true "Template"
// @Success 201 {object} models.PaymentReminder
// @Router /reminders/templates [post]
func (h *TaskHandler) CreateTemplate(c *fiber.Ctx) error {
	var req models.ReminderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	template, err := h.reminderService.CreateTemplate(c.UserContext(), auth.UserID(c), &req)
	if err != nil {
		return respondError(c, err, "create reminder template")
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

// UpdateTemplate godoc
// @Summary Update a reminder template
// @Tags Reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Param request body models.ReminderRequest true "Template"
// @Success 200 {object} models.PaymentReminder
// @Router /reminders/templates/{id} [put]
func (h *TaskHandler) UpdateTemplate(c *fiber.Ctx) error {
	var req models.ReminderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	template, err := h.reminderService.UpdateTemplate(c.UserContext(), auth.UserID(c), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err, "update reminder template")
	}
	return c.JSON(template)
}

// DeleteTemplate godoc
// @Summary Delete a reminder template
// @Tags Reminders
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 204
// @Router /reminders/templates/{id} [delete]
func (h *TaskHandler) DeleteTemplate(c *fiber.Ctx) error {
	if err := h.reminderService.DeleteTemplate(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err, "delete reminder template")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
)

// AccountHandler serves receivables and payables.
type AccountHandler struct {
	receivableService *services.ReceivableService
	payableService    *services.PayableService
}

func NewAccountHandler(receivableService *services.ReceivableService, payableService *services.PayableService) *AccountHandler {
	return &AccountHandler{
		receivableService: receivableService,
		payableService:    payableService,
	}
}

// CreateReceivable godoc
// @Summary Create receivables
// @Description simple, installment or recurring. An installment receivable with
// @Description needs_confirmation becomes an installment sale awaiting the client.
// @Tags Receivables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param receivable body models.CreateReceivableRequest true "Receivable data"
// @Success 201 {object} services.CreateReceivableResult
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /receivables [post]
func (h *AccountHandler) CreateReceivable(c *fiber.Ctx) error {
	var req models.CreateReceivableRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.receivableService.Create(c.UserContext(), auth.UserID(c), &req)
	if err != nil {
		return respondError(c, err, "create receivable")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// ListReceivables godoc
// @Summary List receivables
// @Description Pending receivables past due are marked overdue first
// @Tags Receivables
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, paid, overdue or cancelled"
// @Param client_id query string false "Filter by client"
// @Success 200 {array} models.Receivable
// @Router /receivables [get]
func (h *AccountHandler) ListReceivables(c *fiber.Ctx) error {
	receivables, err := h.receivableService.List(c.UserContext(), auth.UserID(c), c.Query("status"), c.Query("client_id"))
	if err != nil {
		return respondError(c, err, "list receivables")
	}
	return c.JSON(receivables)
}

// GetReceivable godoc
// @Summary Get receivable by ID
// @Tags Receivables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receivable ID"
// @Success 200 {object} models.Receivable
// @Failure 404 {object} map[string]interface{}
// @Router /receivables/{id} [get]
func (h *AccountHandler) GetReceivable(c *fiber.Ctx) error {
	receivable, err := h.receivableService.Get(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "get receivable")
	}
	return c.JSON(receivable)
}

// UpdateReceivable godoc
// @Summary Update a receivable
// @Tags Receivables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receivable ID"
// @Param receivable body models.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} models.Receivable
// @Router /receivables/{id} [put]
func (h *AccountHandler) UpdateReceivable(c *fiber.Ctx) error {
	var req models.UpdateAccountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	receivable, err := h.receivableService.Update(c.UserContext(), auth.UserID(c), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err, "update receivable")
	}
	return c.JSON(receivable)
}

// PayReceivable godoc
// @Summary Mark a receivable as paid
// @Tags Receivables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receivable ID"
// @Success 200 {object} models.Receivable
// @Router /receivables/{id}/pay [post]
func (h *AccountHandler) PayReceivable(c *fiber.Ctx) error {
	receivable, err := h.receivableService.MarkPaid(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "mark receivable as paid")
	}
	return c.JSON(receivable)
}

// DeleteReceivable godoc
// @Summary Delete a receivable
// @Tags Receivables
// @Security BearerAuth
// @Param id path string true "Receivable ID"
// @Success 204
// @Router /receivables/{id} [delete]
func (h *AccountHandler) DeleteReceivable(c *fiber.Ctx) error {
	if err := h.receivableService.Delete(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err, "delete receivable")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreatePayable godoc
// @Summary Create payables
// @Tags Payables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payable body models.CreatePayableRequest true "Payable data"
// @Success 201 {array} models.Payable
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /payables [post]
func (h *AccountHandler) CreatePayable(c *fiber.Ctx) error {
	var req models.CreatePayableRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	payables, err := h.payableService.Create(c.UserContext(), auth.UserID(c), &req)
	if err != nil {
		return respondError(c, err, "create payable")
	}
	return c.Status(fiber.StatusCreated).JSON(payables)
}

// ListPayables godoc
// @Summary List payables
// @Tags Payables
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, paid, overdue or cancelled"
// @Param supplier_id query string false "Filter by supplier"
// @Success 200 {array} models.Payable
// @Router /payables [get]
func (h *AccountHandler) ListPayables(c *fiber.Ctx) error {
	payables, err := h.payableService.List(c.UserContext(), auth.UserID(c), c.Query("status"), c.Query("supplier_id"))
	if err != nil {
		return respondError(c, err, "list payables")
	}
	return c.JSON(payables)
}

// GetPayable godoc
// @Summary Get payable by ID
// @Tags Payables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payable ID"
// @Success 200 {object} models.Payable
// @Router /payables/{id} [get]
func (h *AccountHandler) GetPayable(c *fiber.Ctx) error {
	payable, err := h.payableService.Get(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "get payable")
	}
	return c.JSON(payable)
}

// UpdatePayable godoc
// @Summary Update a payable
// @Tags Payables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payable ID"
// @Param payable body models.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} models.Payable
// @Router /payables/{id} [put]
func (h *AccountHandler) UpdatePayable(c *fiber.Ctx) error {
	var req models.UpdateAccountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	payable, err := h.payableService.Update(c.UserContext(), auth.UserID(c), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err, "update payable")
	}
	return c.JSON(payable)
}

// PayPayable godoc
// @Summary Mark a payable as paid
// @Tags Payables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payable ID"
// @Success 200 {object} models.Payable
// @Router /payables/{id}/pay [post]
func (h *AccountHandler) PayPayable(c *fiber.Ctx) error {
	payable, err := h.payableService.MarkPaid(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "mark payable as paid")
	}
	return c.JSON(payable)
}

// DeletePayable godoc
// @Summary Delete a payable
// @Tags Payables
// @Security BearerAuth
// @Param id path string true "Payable ID"
// @Success 204
// @Router /payables/{id} [delete]
func (h *AccountHandler) DeletePayable(c *fiber.Ctx) error {
	if err := h.payableService.Delete(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err, "delete payable")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

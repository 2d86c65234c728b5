package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/money"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
)

type SaleHandler struct {
	saleService *services.SaleService
}

func NewSaleHandler(saleService *services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// PublicSale is what the client sees on the confirmation page. It never
// carries the token, notes or the stored document.
type PublicSale struct {
	Description       string            `json:"description"`
	ClientName        string            `json:"client_name"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	TotalFormatted    string            `json:"total_formatted"`
	Installments      int               `json:"installments"`
	InstallmentAmount decimal.Decimal   `json:"installment_amount"`
	Status            models.SaleStatus `json:"status"`
	CanConfirm        bool              `json:"can_confirm"`
	ConfirmedAt       *time.Time        `json:"confirmed_at,omitempty"`
}

func publicSale(sale *models.InstallmentSale) *PublicSale {
	view := &PublicSale{
		Description:    sale.Description,
		TotalAmount:    sale.TotalAmount,
		TotalFormatted: money.FormatBRL(sale.TotalAmount),
		Installments:   sale.Installments,
		Status:         sale.Status,
		CanConfirm:     sale.Status == models.SalePending,
		ConfirmedAt:    sale.ConfirmedAt,
	}
	if sale.Client != nil {
		view.ClientName = sale.Client.Name
	}
	if parts, err := money.Split(sale.TotalAmount, sale.Installments); err == nil {
		view.InstallmentAmount = parts[0]
	}
	return view
}

// ListSales godoc
// @Summary List installment sales
// @Tags Installment Sales
// @Produce json
// @Security BearerAuth
// @Param status query string false "Comma separated statuses, e.g. pending,confirmed"
// @Success 200 {array} models.InstallmentSale
// @Router /installment-sales [get]
func (h *SaleHandler) ListSales(c *fiber.Ctx) error {
	var statuses []models.SaleStatus
	for _, s := range strings.Split(c.Query("status"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			statuses = append(statuses, models.SaleStatus(s))
		}
	}

	sales, err := h.saleService.List(c.UserContext(), auth.UserID(c), statuses...)
	if err != nil {
		return respondError(c, err, "list installment sales")
	}
	return c.JSON(sales)
}

// CreateSale godoc
// @Summary Create an installment sale
// @Description Starts pending and, unless notify is false, sends the client the confirmation link
// @Tags Installment Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sale body models.CreateSaleRequest true "Sale data"
// @Success 201 {object} services.SaleResult
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /installment-sales [post]
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req models.CreateSaleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.saleService.Create(c.UserContext(), auth.UserID(c), &req)
	if err != nil {
		return respondError(c, err, "create installment sale")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetSale godoc
// @Summary Get installment sale by ID
// @Tags Installment Sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Success 200 {object} services.SaleResult
// @Failure 404 {object} map[string]interface{}
// @Router /installment-sales/{id} [get]
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	result, err := h.saleService.Get(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "get installment sale")
	}
	return c.JSON(result)
}

// SaleHistory godoc
// @Summary Transitions of an installment sale
// @Tags Installment Sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Success 200 {array} audit.AuditLog
// @Failure 404 {object} map[string]interface{}
// @Router /installment-sales/{id}/history [get]
func (h *SaleHandler) SaleHistory(c *fiber.Ctx) error {
	history, err := h.saleService.History(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "get sale history")
	}
	return c.JSON(history)
}

// ApproveSale godoc
// @Summary Approve a confirmed sale
// @Description Generates one receivable per installment and notifies the client
// @Tags Installment Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Param request body models.ApproveSaleRequest false "Approval notes"
// @Success 200 {object} services.SaleResult
// @Failure 409 {object} map[string]interface{}
// @Router /installment-sales/{id}/approve [post]
func (h *SaleHandler) ApproveSale(c *fiber.Ctx) error {
	var req models.ApproveSaleRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}

	result, err := h.saleService.Approve(c.UserContext(), auth.UserID(c), c.Params("id"), req.Notes)
	if err != nil {
		return respondError(c, err, "approve installment sale")
	}
	return c.JSON(result)
}

// RejectSale godoc
// @Summary Reject a confirmed sale
// @Description With resend the sale goes back to pending under a new link
// @Tags Installment Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Param request body models.RejectSaleRequest true "Reason and resend flag"
// @Success 200 {object} services.SaleResult
// @Failure 409 {object} map[string]interface{}
// @Router /installment-sales/{id}/reject [post]
func (h *SaleHandler) RejectSale(c *fiber.Ctx) error {
	var req models.RejectSaleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.saleService.Reject(c.UserContext(), auth.UserID(c), c.Params("id"), req.Notes, req.Resend)
	if err != nil {
		return respondError(c, err, "reject installment sale")
	}
	return c.JSON(result)
}

// RegenerateToken godoc
// @Summary Issue a new confirmation link
// @Description Resets the sale to pending and clears the previous confirmation
// @Tags Installment Sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Success 200 {object} services.SaleResult
// @Router /installment-sales/{id}/regenerate-token [post]
func (h *SaleHandler) RegenerateToken(c *fiber.Ctx) error {
	result, err := h.saleService.RegenerateToken(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "regenerate confirmation token")
	}
	return c.JSON(result)
}

// ResendSale godoc
// @Summary Send the confirmation link again
// @Tags Installment Sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Success 200 {object} services.SaleResult
// @Router /installment-sales/{id}/resend [post]
func (h *SaleHandler) ResendSale(c *fiber.Ctx) error {
	result, err := h.saleService.Resend(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "resend confirmation link")
	}
	return c.JSON(result)
}

// DeleteSale godoc
// @Summary Delete an installment sale and its receivables
// @Tags Installment Sales
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Success 204
// @Router /installment-sales/{id} [delete]
func (h *SaleHandler) DeleteSale(c *fiber.Ctx) error {
	if err := h.saleService.Delete(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err, "delete installment sale")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SaleQRCode godoc
// @Summary QR code of the confirmation link
// @Tags Installment Sales
// @Produce png
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Param size query int false "Image size in pixels" default(256)
// @Success 200 {file} binary
// @Router /installment-sales/{id}/qr [get]
func (h *SaleHandler) SaleQRCode(c *fiber.Ctx) error {
	png, err := h.saleService.QRCode(c.UserContext(), auth.UserID(c), c.Params("id"), queryInt(c, "size", 256))
	if err != nil {
		return respondError(c, err, "generate QR code")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// PublicView godoc
// @Summary Sale summary for the client
// @Tags Public
// @Produce json
// @Param token path string true "Confirmation token"
// @Success 200 {object} PublicSale
// @Failure 404 {object} map[string]interface{}
// @Router /public/sales/{token} [get]
func (h *SaleHandler) PublicView(c *fiber.Ctx) error {
	sale, err := h.saleService.PublicView(c.UserContext(), c.Params("token"))
	if err != nil {
		return respondError(c, err, "load installment sale")
	}
	return c.JSON(publicSale(sale))
}

// PublicConfirm godoc
// @Summary Confirm a sale
// @Description The client confirms the purchase, optionally attaching an identity document
// @Tags Public
// @Accept mpfd
// @Produce json
// @Param token path string true "Confirmation token"
// @Param document formData file false "Identity document (jpg, png, webp or pdf)"
// @Success 200 {object} PublicSale
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /public/sales/{token}/confirm [post]
func (h *SaleHandler) PublicConfirm(c *fiber.Ctx) error {
	// the document is optional, so a missing file or a non-multipart body just means none
	document, err := c.FormFile("document")
	if err != nil {
		document = nil
	}

	sale, err := h.saleService.Confirm(c.UserContext(), c.Params("token"), document)
	if err != nil {
		return respondError(c, err, "confirm installment sale")
	}
	return c.JSON(fiber.Map{
		"message": "Compra confirmada! Aguarde a aprovação do vendedor.",
		"sale":    publicSale(sale),
	})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
)

type WhatsAppHandler struct {
	whatsappService *services.WhatsAppService
}

func NewWhatsAppHandler(whatsappService *services.WhatsAppService) *WhatsAppHandler {
	return &WhatsAppHandler{whatsappService: whatsappService}
}

// CreateInstance godoc
// @Summary Create a WhatsApp instance
// @Description Registers an instance on the gateway and returns the QR code to pair it
// @Tags WhatsApp
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateInstanceRequest false "Phone number"
// @Success 201 {object} services.InstanceResult
// @Failure 503 {object} map[string]interface{}
// @Router /whatsapp/instances [post]
func (h *WhatsAppHandler) CreateInstance(c *fiber.Ctx) error {
	var req models.CreateInstanceRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}

	result, err := h.whatsappService.CreateInstance(c.UserContext(), auth.UserID(c), &req)
	if err != nil {
		return respondError(c, err, "create WhatsApp instance")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// ListInstances godoc
// @Summary List WhatsApp instances
// @Tags WhatsApp
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.WhatsAppInstance
// @Router /whatsapp/instances [get]
func (h *WhatsAppHandler) ListInstances(c *fiber.Ctx) error {
	instances, err := h.whatsappService.ListInstances(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, err, "list WhatsApp instances")
	}
	return c.JSON(instances)
}

// InstanceStatus godoc
// @Summary Refresh an instance's connection state
// @Tags WhatsApp
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instance ID"
// @Success 200 {object} models.WhatsAppInstance
// @Router /whatsapp/instances/{id}/status [get]
func (h *WhatsAppHandler) InstanceStatus(c *fiber.Ctx) error {
	instance, err := h.whatsappService.RefreshStatus(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "refresh WhatsApp instance")
	}
	return c.JSON(instance)
}

// InstanceQRCode godoc
// @Summary Pairing QR code
// @Tags WhatsApp
// @Produce png
// @Security BearerAuth
// @Param id path string true "Instance ID"
// @Success 200 {file} binary
// @Router /whatsapp/instances/{id}/qr [get]
func (h *WhatsAppHandler) InstanceQRCode(c *fiber.Ctx) error {
	png, err := h.whatsappService.QRCode(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "fetch WhatsApp QR code")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// DeleteInstance godoc
// @Summary Delete a WhatsApp instance
// @Tags WhatsApp
// @Security BearerAuth
// @Param id path string true "Instance ID"
// @Success 204
// @Router /whatsapp/instances/{id} [delete]
func (h *WhatsAppHandler) DeleteInstance(c *fiber.Ctx) error {
	if err := h.whatsappService.DeleteInstance(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err, "delete WhatsApp instance")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SendMessage godoc
// @Summary Send a WhatsApp message to a client
// @Description Delivery is best-effort; the outcome is logged and returned as whatsapp_sent
// @Tags WhatsApp
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SendMessageRequest true "Client and text"
// @Success 200 {object} map[string]interface{}
// @Router /whatsapp/messages [post]
func (h *WhatsAppHandler) SendMessage(c *fiber.Ctx) error {
	var req models.SendMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sent, err := h.whatsappService.Send(c.UserContext(), auth.UserID(c), &req)
	if err != nil {
		return respondError(c, err, "send WhatsApp message")
	}
	return c.JSON(fiber.Map{"whatsapp_sent": sent})
}

// ListMessages godoc
// @Summary WhatsApp message log
// @Tags WhatsApp
// @Produce json
// @Security BearerAuth
// @Param client_id query string false "Filter by client"
// @Param status query string false "sent or failed"
// @Param limit query int false "Max rows" default(100)
// @Success 200 {array} models.WhatsAppMessage
// @Router /whatsapp/messages [get]
func (h *WhatsAppHandler) ListMessages(c *fiber.Ctx) error {
	messages, err := h.whatsappService.Messages(c.UserContext(), repositories.MessageFilter{
		UserID:   auth.UserID(c),
		ClientID: c.Query("client_id"),
		Status:   c.Query("status"),
		Limit:    queryInt(c, "limit", 100),
	})
	if err != nil {
		return respondError(c, err, "list WhatsApp messages")
	}
	return c.JSON(messages)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
)

type ClientHandler struct {
	clientService   *services.ClientService
	supplierService *services.SupplierService
}

func NewClientHandler(clientService *services.ClientService, supplierService *services.SupplierService) *ClientHandler {
	return &ClientHandler{
		clientService:   clientService,
		supplierService: supplierService,
	}
}

// CreateClient godoc
// @Summary Create a client
// @Description Counts against the plan's client limit
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body models.ClientRequest true "Client data"
// @Success 201 {object} models.Client
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var req models.ClientRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client, err := h.clientService.Create(c.UserContext(), auth.UserID(c), &req)
	if err != nil {
		return respondError(c, err, "create client")
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

// ListClients godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name, document or WhatsApp"
// @Success 200 {array} models.Client
// @Router /clients [get]
func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	clients, err := h.clientService.List(c.UserContext(), auth.UserID(c), c.Query("search"))
	if err != nil {
		return respondError(c, err, "list clients")
	}
	return c.JSON(clients)
}

// GetClient godoc
// @Summary Get client by ID
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} models.Client
// @Failure 404 {object} map[string]interface{}
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	client, err := h.clientService.Get(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "get client")
	}
	return c.JSON(client)
}

// UpdateClient godoc
// @Summary Update a client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param client body models.ClientRequest true "Client data"
// @Success 200 {object} models.Client
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *fiber.Ctx) error {
	var req models.ClientRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client, err := h.clientService.Update(c.UserContext(), auth.UserID(c), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err, "update client")
	}
	return c.JSON(client)
}

// DeleteClient godoc
// @Summary Delete a client
// @Description Fails with 409 while the client still has receivables or installment sales
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *fiber.Ctx) error {
	if err := h.clientService.Delete(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err, "delete client")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateSupplier godoc
// @Summary Create a supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param supplier body models.SupplierRequest true "Supplier data"
// @Success 201 {object} models.Supplier
// @Failure 400 {object} map[string]interface{}
// @Router /suppliers [post]
func (h *ClientHandler) CreateSupplier(c *fiber.Ctx) error {
	var req models.SupplierRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	supplier, err := h.supplierService.Create(c.UserContext(), auth.UserID(c), &req)
	if err != nil {
		return respondError(c, err, "create supplier")
	}
	return c.Status(fiber.StatusCreated).JSON(supplier)
}

// ListSuppliers godoc
// @Summary List suppliers
// @Tags Suppliers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Supplier
// @Router /suppliers [get]
func (h *ClientHandler) ListSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.supplierService.List(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, err, "list suppliers")
	}
	return c.JSON(suppliers)
}

// GetSupplier godoc
// @Summary Get supplier by ID
// @Tags Suppliers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Supplier ID"
// @Success 200 {object} models.Supplier
// @Failure 404 {object} map[string]interface{}
// @Router /suppliers/{id} [get]
func (h *ClientHandler) GetSupplier(c *fiber.Ctx) error {
	supplier, err := h.supplierService.Get(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "get supplier")
	}
	return c.JSON(supplier)
}

// UpdateSupplier godoc
// @Summary Update a supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Supplier ID"
// @Param supplier body models.SupplierRequest true "Supplier data"
// @Success 200 {object} models.Supplier
// @Router /suppliers/{id} [put]
func (h *ClientHandler) UpdateSupplier(c *fiber.Ctx) error {
	var req models.SupplierRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	supplier, err := h.supplierService.Update(c.UserContext(), auth.UserID(c), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err, "update supplier")
	}
	return c.JSON(supplier)
}

// DeleteSupplier godoc
// @Summary Delete a supplier
// @Description Payables that referenced it are kept without a supplier
// @Tags Suppliers
// @Security BearerAuth
// @Param id path string true "Supplier ID"
// @Success 204
// @Router /suppliers/{id} [delete]
func (h *ClientHandler) DeleteSupplier(c *fiber.Ctx) error {
	if err := h.supplierService.Delete(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err, "delete supplier")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

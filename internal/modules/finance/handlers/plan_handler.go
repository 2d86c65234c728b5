package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
)

type PlanHandler struct {
	planService *services.PlanService
	authService *auth.Service
}

func NewPlanHandler(planService *services.PlanService, authService *auth.Service) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		authService: authService,
	}
}

// AdminUser is a row of the admin user listing
type AdminUser struct {
	*auth.UserInfo
	IsActive bool             `json:"is_active"`
	Plan     *models.UserPlan `json:"plan,omitempty"`
}

// Catalog godoc
// @Summary Available plans
// @Tags Plans
// @Produce json
// @Success 200 {array} models.PlanSpec
// @Router /plans [get]
func (h *PlanHandler) Catalog(c *fiber.Ctx) error {
	return c.JSON(h.planService.Catalog())
}

// Limits godoc
// @Summary Current plan and usage
// @Description An expired Premium plan is downgraded to Free before counting
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.PlanUsage
// @Router /plans/limits [get]
func (h *PlanHandler) Limits(c *fiber.Ctx) error {
	usage, err := h.planService.Limits(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, err, "load plan limits")
	}
	return c.JSON(usage)
}

// UpgradeRequest godoc
// @Summary Ask the admin for a Premium upgrade
// @Description Returns a wa.me link with a pre-filled message to the admin
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /plans/upgrade-request [post]
func (h *PlanHandler) UpgradeRequest(c *fiber.Ctx) error {
	user, err := h.authService.Me(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, err, "load user")
	}

	link, err := h.planService.UpgradeRequest(c.UserContext(), user)
	if err != nil {
		return respondError(c, err, "request upgrade")
	}
	return c.JSON(fiber.Map{"whatsapp_url": link})
}

// ListUsers godoc
// @Summary List users with their plan
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} AdminUser
// @Failure 403 {object} map[string]interface{}
// @Router /admin/users [get]
func (h *PlanHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.authService.Users(c.UserContext())
	if err != nil {
		return respondError(c, err, "list users")
	}

	ids := make([]string, len(users))
	for i := range users {
		ids[i] = users[i].ID.String()
	}
	plans, err := h.planService.PlansFor(c.UserContext(), ids)
	if err != nil {
		return respondError(c, err, "list plans")
	}

	result := make([]AdminUser, 0, len(users))
	for i := range users {
		row := AdminUser{UserInfo: users[i].Info(), IsActive: users[i].IsActive}
		if plan, ok := plans[row.ID]; ok {
			row.Plan = &plan
		}
		result = append(result, row)
	}
	return c.JSON(result)
}

// SetUserPlan godoc
// @Summary Change a user's plan
// @Description Premium runs for 30 days from now
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body models.SetPlanRequest true "Plan name"
// @Success 200 {object} models.UserPlan
// @Failure 404 {object} map[string]interface{}
// @Router /admin/users/{id}/plan [put]
func (h *PlanHandler) SetUserPlan(c *fiber.Ctx) error {
	var req models.SetPlanRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Me(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "load user")
	}

	plan, err := h.planService.SetPlan(c.UserContext(), user.ID.String(), req.PlanName)
	if err != nil {
		return respondError(c, err, "change plan")
	}
	return c.JSON(plan)
}

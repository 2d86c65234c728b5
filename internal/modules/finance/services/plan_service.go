package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/money"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/validation"
)

// Resource is something a plan caps
type Resource string

const (
	ResourceClients     Resource = "clients"
	ResourceReceivables Resource = "receivables"
	ResourcePayables    Resource = "payables"
)

// ResourceUsage is one line of GET /plans/limits
type ResourceUsage struct {
	Used     int64 `json:"used"`
	Limit    int   `json:"limit"`
	Exceeded bool  `json:"limits_exceeded"`
}

type PlanUsage struct {
	Plan        *models.UserPlan           `json:"plan"`
	PlanExpired bool                       `json:"plan_expired"`
	Usage       map[Resource]ResourceUsage `json:"usage"`
}

type PlanService struct {
	db           *gorm.DB
	plans        repositories.PlanRepo
	clients      repositories.ClientRepo
	receivables  repositories.ReceivableRepo
	payables     repositories.PayableRepo
	notifier     *notification.Service
	audit        *audit.Service
	premiumPrice decimal.Decimal
	adminPhone   string
	now          func() time.Time
}

func NewPlanService(db *gorm.DB, premiumPrice decimal.Decimal, adminPhone string, notifier *notification.Service) *PlanService {
	return &PlanService{
		db:           db,
		plans:        repositories.NewPlanRepo(db),
		clients:      repositories.NewClientRepo(db),
		receivables:  repositories.NewReceivableRepo(db),
		payables:     repositories.NewPayableRepo(db),
		notifier:     notifier,
		audit:        audit.NewService(db),
		premiumPrice: premiumPrice,
		adminPhone:   adminPhone,
		now:          time.Now,
	}
}

// Catalog lists the plans a user can be on.
func (s *PlanService) Catalog() []models.PlanSpec {
	return []models.PlanSpec{models.FreeSpec, models.PremiumSpec(s.premiumPrice)}
}

func (s *PlanService) spec(name string) (models.PlanSpec, error) {
	for _, spec := range s.Catalog() {
		if spec.Name == name {
			return spec, nil
		}
	}
	return models.PlanSpec{}, invalid("unknown plan %q", name)
}

// CreateFreePlan is the registration hook that gives every new user a Free plan.
func (s *PlanService) CreateFreePlan(ctx context.Context, tx *gorm.DB, user *auth.User) error {
	plan := &models.UserPlan{UserID: user.ID}
	plan.Apply(models.FreeSpec, s.now())
	return s.plans.WithTx(tx).Create(ctx, plan)
}

// loadCurrent returns the user's plan inside tx, creating a Free one when
// missing and downgrading an expired one. The bool reports a downgrade.
func (s *PlanService) loadCurrent(ctx context.Context, tx *gorm.DB, userID string) (*models.UserPlan, bool, error) {
	repo := s.plans.WithTx(tx)
	plan, err := repo.GetByUserForUpdate(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.createFree(ctx, repo, userID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load plan: %w", err)
	}

	now := s.now()
	if !plan.Expired(now) {
		return plan, false, nil
	}

	expired := plan.PlanName
	plan.Apply(models.FreeSpec, now)
	if err := repo.Save(ctx, plan); err != nil {
		return nil, false, fmt.Errorf("failed to downgrade plan: %w", err)
	}
	if err := s.recordPlan(ctx, tx, plan, audit.ActorSystem, audit.ActionPlanExpire, expired); err != nil {
		return nil, false, err
	}
	log.Printf("⬇️  Plan %s of user %s expired, downgraded to %s", expired, userID, plan.PlanName)
	return plan, true, nil
}

func (s *PlanService) createFree(ctx context.Context, repo repositories.PlanRepo, userID string) (*models.UserPlan, bool, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, false, err
	}
	plan := &models.UserPlan{UserID: uid}
	plan.Apply(models.FreeSpec, s.now())
	if err := repo.Create(ctx, plan); err != nil {
		return nil, false, fmt.Errorf("failed to create plan: %w", err)
	}
	return plan, false, nil
}

// Current returns the user's effective plan, persisting an expiry downgrade.
func (s *PlanService) Current(ctx context.Context, userID string) (*models.UserPlan, bool, error) {
	var (
		plan       *models.UserPlan
		downgraded bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		plan, downgraded, err = s.loadCurrent(ctx, tx, userID)
		return err
	})
	return plan, downgraded, err
}

func (s *PlanService) IsPremium(ctx context.Context, userID string) (bool, error) {
	plan, _, err := s.Current(ctx, userID)
	if err != nil {
		return false, err
	}
	return plan.IsPremium(s.now()), nil
}

// WithinLimit runs fn in a transaction that holds the user's plan row,
// after checking that n more rows of resource fit under the plan.
// Concurrent creations for the same user queue on the plan row.
func (s *PlanService) WithinLimit(ctx context.Context, userID string, resource Resource, n int, fn func(tx *gorm.DB) error) error {
	// Persist a pending downgrade first so it survives a rejected creation.
	if _, _, err := s.Current(ctx, userID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, _, err := s.loadCurrent(ctx, tx, userID)
		if err != nil {
			return err
		}

		used, err := s.count(ctx, tx, userID, resource)
		if err != nil {
			return err
		}
		limit := planLimit(plan, resource)
		if used+int64(n) > int64(limit) {
			return &PlanLimitError{Resource: resource, Plan: plan.PlanName, Limit: limit, Used: used}
		}
		return fn(tx)
	})
}

func (s *PlanService) count(ctx context.Context, tx *gorm.DB, userID string, resource Resource) (int64, error) {
	var (
		n   int64
		err error
	)
	switch resource {
	case ResourceClients:
		n, err = s.clients.WithTx(tx).Count(ctx, userID)
	case ResourceReceivables:
		n, err = s.receivables.WithTx(tx).Count(ctx, userID)
	case ResourcePayables:
		n, err = s.payables.WithTx(tx).Count(ctx, userID)
	default:
		return 0, fmt.Errorf("unknown resource %s", resource)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", resource, err)
	}
	return n, nil
}

func planLimit(plan *models.UserPlan, resource Resource) int {
	switch resource {
	case ResourceClients:
		return plan.MaxClients
	case ResourceReceivables:
		return plan.MaxReceivables
	case ResourcePayables:
		return plan.MaxPayables
	}
	return 0
}

// Limits reports usage against the user's plan.
func (s *PlanService) Limits(ctx context.Context, userID string) (*PlanUsage, error) {
	plan, downgraded, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	usage := &PlanUsage{Plan: plan, PlanExpired: downgraded, Usage: map[Resource]ResourceUsage{}}
	for _, resource := range []Resource{ResourceClients, ResourceReceivables, ResourcePayables} {
		used, err := s.count(ctx, s.db, userID, resource)
		if err != nil {
			return nil, err
		}
		limit := planLimit(plan, resource)
		usage.Usage[resource] = ResourceUsage{Used: used, Limit: limit, Exceeded: used >= int64(limit)}
	}
	return usage, nil
}

// UpgradeRequest builds a wa.me link to the admin with a pre-filled
// upgrade message and pings the admin directly when WhatsApp is available.
func (s *PlanService) UpgradeRequest(ctx context.Context, user *auth.User) (string, error) {
	phone := validation.OnlyDigits(s.adminPhone)
	if phone == "" {
		return "", fmt.Errorf("%w: ADMIN_PHONE", ErrUnavailable)
	}

	text := fmt.Sprintf(
		"Olá! Gostaria de fazer upgrade para o plano Premium (%s/mês).\n\nNome: %s\nEmail: %s\nID: %s",
		money.FormatBRL(s.premiumPrice), user.Name, user.Email, user.ID,
	)
	if s.notifier != nil {
		s.notifier.NotifyAdmin(ctx, "🚀 Pedido de upgrade\n\n"+text)
	}
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(text), nil
}

// SetPlan moves a user to the named plan. Premium runs for 30 days from now.
func (s *PlanService) SetPlan(ctx context.Context, userID, planName string) (*models.UserPlan, error) {
	spec, err := s.spec(planName)
	if err != nil {
		return nil, err
	}

	var plan *models.UserPlan
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		plan, _, err = s.loadCurrent(ctx, tx, userID)
		if err != nil {
			return err
		}
		previous := plan.PlanName
		plan.Apply(spec, s.now())
		if err := s.plans.WithTx(tx).Save(ctx, plan); err != nil {
			return err
		}
		return s.recordPlan(ctx, tx, plan, audit.ActorAdmin, audit.ActionPlanChange, previous)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User %s moved to plan %s", userID, plan.PlanName)
	return plan, nil
}

// EntityPlan names user plans in the audit trail
const EntityPlan = "user_plan"

func (s *PlanService) recordPlan(ctx context.Context, tx *gorm.DB, plan *models.UserPlan, actor, action, previous string) error {
	return s.audit.WithTx(tx).Record(ctx, audit.Entry{
		UserID:   plan.UserID,
		Actor:    actor,
		Action:   action,
		Entity:   EntityPlan,
		EntityID: plan.ID.String(),
		OldValue: map[string]string{"plan": previous},
		NewValue: map[string]interface{}{"plan": plan.PlanName, "expires_at": plan.ExpiresAt},
	})
}

// PlansFor maps user IDs to their stored plan for the admin listing.
func (s *PlanService) PlansFor(ctx context.Context, userIDs []string) (map[string]models.UserPlan, error) {
	plans, err := s.plans.ListByUsers(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	byUser := make(map[string]models.UserPlan, len(plans))
	for _, p := range plans {
		byUser[p.UserID.String()] = p
	}
	return byUser, nil
}

package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

func TestPlanService_CurrentCreatesFreePlan(t *testing.T) {
	env := newTestEnv(t)

	plan, downgraded, err := env.plans.Current(context.Background(), env.userID)
	require.NoError(t, err)
	assert.False(t, downgraded)
	assert.Equal(t, models.PlanFree, plan.PlanName)
	assert.Equal(t, models.FreeSpec.MaxReceivables, plan.MaxReceivables)
	assert.Nil(t, plan.ExpiresAt)

	again, _, err := env.plans.Current(context.Background(), env.userID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, again.ID)
}

func TestPlanService_CreateFreePlanHook(t *testing.T) {
	env := newTestEnv(t)
	user := &auth.User{ID: uuid.New()}

	err := env.db.Transaction(func(tx *gorm.DB) error {
		return env.plans.CreateFreePlan(context.Background(), tx, user)
	})
	require.NoError(t, err)

	plan, _, err := env.plans.Current(context.Background(), user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, plan.PlanName)
}

func TestPlanService_ReceivableLimit(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t, "Maria", "11999998888")
	env.setReceivableLimit(t, 2)

	env.simpleReceivable(t, client.ID.String(), "2026-04-01", "100.00")
	env.simpleReceivable(t, client.ID.String(), "2026-04-02", "100.00")

	_, err := env.receivables.Create(context.Background(), env.userID, &models.CreateReceivableRequest{
		ClientID: client.ID.String(), Description: "Terceira", Amount: decimal.NewFromInt(10), DueDate: "2026-04-03",
	})
	require.ErrorIs(t, err, ErrPlanLimitReached)

	var limitErr *PlanLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, ResourceReceivables, limitErr.Resource)
	assert.Equal(t, 2, limitErr.Limit)
	assert.Equal(t, int64(2), limitErr.Used)
	assert.Equal(t, int64(2), env.countReceivables(t))
}

func TestPlanService_LastSlotIsAccepted(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t, "Maria", "11999998888")
	env.setReceivableLimit(t, 2)

	env.simpleReceivable(t, client.ID.String(), "2026-04-01", "100.00")
	env.simpleReceivable(t, client.ID.String(), "2026-04-02", "100.00")
	assert.Equal(t, int64(2), env.countReceivables(t))
}

func TestPlanService_BatchMustFitWhole(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t, "Maria", "11999998888")
	env.setReceivableLimit(t, 3)
	env.simpleReceivable(t, client.ID.String(), "2026-04-01", "100.00")

	_, err := env.receivables.Create(context.Background(), env.userID, &models.CreateReceivableRequest{
		ClientID: client.ID.String(), Description: "Curso", Amount: decimal.NewFromInt(300),
		DueDate: "2026-04-10", Type: models.TypeInstallment, Installments: 3,
	})
	assert.ErrorIs(t, err, ErrPlanLimitReached)
	assert.Equal(t, int64(1), env.countReceivables(t))

	res, err := env.receivables.Create(context.Background(), env.userID, &models.CreateReceivableRequest{
		ClientID: client.ID.String(), Description: "Curso", Amount: decimal.NewFromInt(200),
		DueDate: "2026-04-10", Type: models.TypeInstallment, Installments: 2,
	})
	require.NoError(t, err)
	assert.Len(t, res.Receivables, 2)
	assert.Equal(t, int64(3), env.countReceivables(t))
}

func TestPlanService_ClientLimit(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < models.FreeSpec.MaxClients; i++ {
		env.client(t, "Cliente", "")
	}

	_, err := env.clients.Create(context.Background(), env.userID, &models.ClientRequest{Name: "Sexto"})
	assert.ErrorIs(t, err, ErrPlanLimitReached)

	_, err = env.plans.SetPlan(context.Background(), env.userID, models.PlanPremium)
	require.NoError(t, err)
	_, err = env.clients.Create(context.Background(), env.userID, &models.ClientRequest{Name: "Sexto"})
	assert.NoError(t, err)
}

func TestPlanService_ExpiredPremiumIsDowngraded(t *testing.T) {
	env := newTestEnv(t)

	plan, err := env.plans.SetPlan(context.Background(), env.userID, models.PlanPremium)
	require.NoError(t, err)
	require.NotNil(t, plan.ExpiresAt)
	assert.Equal(t, testNow.Add(30*24*time.Hour), plan.ExpiresAt.UTC())

	premium, err := env.plans.IsPremium(context.Background(), env.userID)
	require.NoError(t, err)
	assert.True(t, premium)

	env.setNow(testNow.AddDate(0, 0, 31))
	plan, downgraded, err := env.plans.Current(context.Background(), env.userID)
	require.NoError(t, err)
	assert.True(t, downgraded)
	assert.Equal(t, models.PlanFree, plan.PlanName)
	assert.Equal(t, models.FreeSpec.MaxClients, plan.MaxClients)

	var stored models.UserPlan
	require.NoError(t, env.db.Where("user_id = ?", env.userID).First(&stored).Error)
	assert.Equal(t, models.PlanFree, stored.PlanName)
	assert.Nil(t, stored.ExpiresAt)

	_, downgraded, err = env.plans.Current(context.Background(), env.userID)
	require.NoError(t, err)
	assert.False(t, downgraded)
}

func TestPlanService_ChangesAreAudited(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.plans.SetPlan(context.Background(), env.userID, models.PlanPremium)
	require.NoError(t, err)

	env.setNow(testNow.AddDate(0, 0, 31))
	_, _, err = env.plans.Current(context.Background(), env.userID)
	require.NoError(t, err)

	var logs []audit.AuditLog
	require.NoError(t, env.db.Where("user_id = ? AND entity = ?", env.userID, EntityPlan).Find(&logs).Error)
	require.Len(t, logs, 2)

	actors := map[string]string{}
	for _, l := range logs {
		actors[l.Action] = l.Actor
	}
	assert.Equal(t, map[string]string{
		audit.ActionPlanChange: audit.ActorAdmin,
		audit.ActionPlanExpire: audit.ActorSystem,
	}, actors)
}

func TestPlanService_DowngradeSurvivesRejectedCreation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.plans.SetPlan(context.Background(), env.userID, models.PlanPremium)
	require.NoError(t, err)
	for i := 0; i < models.FreeSpec.MaxClients; i++ {
		env.client(t, "Cliente", "")
	}

	env.setNow(testNow.AddDate(0, 2, 0))
	_, err = env.clients.Create(context.Background(), env.userID, &models.ClientRequest{Name: "Sexto"})
	assert.ErrorIs(t, err, ErrPlanLimitReached)

	var stored models.UserPlan
	require.NoError(t, env.db.Where("user_id = ?", env.userID).First(&stored).Error)
	assert.Equal(t, models.PlanFree, stored.PlanName)
}

func TestPlanService_Limits(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t, "Maria", "11999998888")
	env.setReceivableLimit(t, 1)
	env.simpleReceivable(t, client.ID.String(), "2026-04-01", "100.00")

	usage, err := env.plans.Limits(context.Background(), env.userID)
	require.NoError(t, err)
	assert.False(t, usage.PlanExpired)
	assert.Equal(t, ResourceUsage{Used: 1, Limit: models.FreeSpec.MaxClients}, usage.Usage[ResourceClients])
	assert.Equal(t, ResourceUsage{Used: 1, Limit: 1, Exceeded: true}, usage.Usage[ResourceReceivables])
	assert.Equal(t, ResourceUsage{Used: 0, Limit: models.FreeSpec.MaxPayables}, usage.Usage[ResourcePayables])
}

func TestPlanService_SetPlanUnknown(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.plans.SetPlan(context.Background(), env.userID, "Gold")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlanService_UpgradeRequest(t *testing.T) {
	env := newTestEnv(t)
	user := &auth.User{ID: uuid.New(), Name: "João", Email: "joao@example.com"}

	link, err := env.plans.UpgradeRequest(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/5511988887777?text="))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	text := parsed.Query().Get("text")
	assert.Contains(t, text, "Premium")
	assert.Contains(t, text, "R$ 29,90")
	assert.Contains(t, text, "joao@example.com")

	noAdmin := NewPlanService(env.db, decimal.NewFromInt(30), "", nil)
	_, err = noAdmin.UpgradeRequest(context.Background(), user)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPlanService_ConcurrentCreationsRespectLimit(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t, "Maria", "11999998888")
	env.setReceivableLimit(t, 3)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.receivables.Create(context.Background(), env.userID, &models.CreateReceivableRequest{
				ClientID: client.ID.String(), Description: "Paralelo", Amount: decimal.NewFromInt(10), DueDate: "2026-04-01",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
			} else if errors.Is(err, ErrPlanLimitReached) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	assert.Equal(t, 5, rejected)
	assert.Equal(t, int64(3), env.countReceivables(t))
}

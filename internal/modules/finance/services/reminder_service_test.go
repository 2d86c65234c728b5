package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

func TestReminderService_RunUser(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t, "Maria", "11999998888")
	ctx := context.Background()

	env.simpleReceivable(t, client.ID.String(), "2026-03-11", "10.00")
	env.simpleReceivable(t, client.ID.String(), "2026-03-13", "30.00")
	late := env.simpleReceivable(t, client.ID.String(), "2026-03-09", "90.00")
	env.simpleReceivable(t, client.ID.String(), "2026-03-05", "50.00")
	_, err := env.payables.Create(ctx, env.userID, &models.CreatePayableRequest{
		Description: "Aluguel", Amount: decimal.NewFromInt(900), DueDate: "2026-03-17",
	})
	require.NoError(t, err)

	stats, err := env.reminders.RunUser(ctx, env.userID)
	require.NoError(t, err)
	assert.Equal(t, &ReminderStats{Users: 1, DueSent: 2, OverdueSent: 1, PayablesDue: 1}, stats)
	assert.Equal(t, 3, env.sender.count())

	got, err := env.receivables.Get(ctx, env.userID, late.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.StatusOverdue, got.Status)

	kinds := map[string]int{}
	for _, m := range env.messages(t) {
		kinds[m.MessageType]++
		assert.Equal(t, notification.StatusSent, m.Status)
	}
	assert.Equal(t, map[string]int{string(notification.KindReminder): 2, string(notification.KindOverdue): 1}, kinds)
}

func TestReminderService_UsesActiveTemplate(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t, "Maria", "11999998888")
	ctx := context.Background()
	env.simpleReceivable(t, client.ID.String(), "2026-03-09", "90.00")

	_, err := env.reminders.CreateTemplate(ctx, env.userID, &models.ReminderRequest{
		Name: "cobrança", Message: "{cliente}, sua conta de {valor} venceu em {vencimento} ({dias} dia)",
		Days: 1, ReminderType: models.ReminderOverdue,
	})
	require.NoError(t, err)

	_, err = env.reminders.RunUser(ctx, env.userID)
	require.NoError(t, err)
	assert.Equal(t, "Maria, sua conta de R$ 90,00 venceu em 09/03/2026 (1 dia)", env.sender.last().text)

	messages := env.messages(t)
	require.Len(t, messages, 1)
	assert.Equal(t, "cobrança", messages[0].TemplateType)
}

func TestReminderService_FailuresAreCounted(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t, "Sem Zap", "")
	pending := env.simpleReceivable(t, client.ID.String(), "2026-03-09", "90.00")

	stats, err := env.reminders.RunUser(context.Background(), env.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.OverdueSent)

	got, err := env.receivables.Get(context.Background(), env.userID, pending.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestReminderService_RunHonoursPreferredHour(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t, "Maria", "11999998888")
	env.simpleReceivable(t, client.ID.String(), "2026-03-11", "10.00")

	other := env.otherUser()
	otherClient := other.client(t, "João", "11911112222")
	other.simpleReceivable(t, otherClient.ID.String(), "2026-03-11", "10.00")
	hour := 10
	_, err := env.reminders.UpdateConfig(context.Background(), other.userID, &models.ReminderConfigRequest{PreferredHour: &hour})
	require.NoError(t, err)

	require.NoError(t, env.reminders.Run(context.Background()))
	assert.Zero(t, env.sender.count())

	env.setNow(time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC))
	require.NoError(t, env.reminders.Run(context.Background()))
	require.Equal(t, 1, env.sender.count())
	assert.Equal(t, "11999998888", env.sender.last().phone)

	env.setNow(time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC))
	require.NoError(t, env.reminders.Run(context.Background()))
	require.Equal(t, 2, env.sender.count())
	assert.Equal(t, "11911112222", env.sender.last().phone)
}

func TestReminderService_Config(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	config, err := env.reminders.Config(ctx, env.userID)
	require.NoError(t, err)
	assert.Equal(t, "1,3,7", config.DaysBeforeDue)
	assert.Equal(t, 9, config.PreferredHour)

	off := false
	updated, err := env.reminders.UpdateConfig(ctx, env.userID, &models.ReminderConfigRequest{
		EnableDueReminders: &off, DaysAfterDue: "2, 5",
	})
	require.NoError(t, err)
	assert.False(t, updated.EnableDueReminders)
	assert.Equal(t, "2, 5", updated.DaysAfterDue)

	stored, err := env.reminders.Config(ctx, env.userID)
	require.NoError(t, err)
	assert.Equal(t, updated.ID, stored.ID)
	assert.False(t, stored.EnableDueReminders)

	_, err = env.reminders.UpdateConfig(ctx, env.userID, &models.ReminderConfigRequest{DaysBeforeDue: "x,-1"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReminderService_TemplateCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.reminders.CreateTemplate(ctx, env.userID, &models.ReminderRequest{Name: "padrão", Message: "Olá {cliente}", Days: 3})
	require.NoError(t, err)
	assert.Equal(t, models.ReminderDueDate, created.ReminderType)
	assert.True(t, created.IsActive)

	inactive := false
	updated, err := env.reminders.UpdateTemplate(ctx, env.userID, created.ID.String(), &models.ReminderRequest{
		Name: "padrão", Message: "Oi {cliente}", Days: 2, IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	list, err := env.reminders.Templates(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Oi {cliente}", list[0].Message)

	require.NoError(t, env.reminders.DeleteTemplate(ctx, env.userID, created.ID.String()))
	assert.ErrorIs(t, env.reminders.DeleteTemplate(ctx, env.userID, created.ID.String()), ErrNotFound)
}

func TestParseDays(t *testing.T) {
	assert.Equal(t, []int{1, 3, 7}, models.ParseDays("1, 3,7"))
	assert.Equal(t, []int{2}, models.ParseDays("0,x,2,2,-4"))
	assert.Nil(t, models.ParseDays(""))
}

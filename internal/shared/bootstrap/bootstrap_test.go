package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/database"
)

func testConfig() *config.Config {
	return &config.Config{
		ReminderCron: "0 0 * * * *",
		OverdueCron:  "0 5 0 * * *",
		Scheduler: config.SchedulerConfig{
			Enabled:            true,
			AuditCleanupCron:   "0 30 3 * * *",
			AuditRetentionDays: 365,
		},
		WhatsApp: config.WhatsAppConfig{Provider: "evolution"},
	}
}

func TestRegisterJobs(t *testing.T) {
	conn, err := database.Open("sqlite::memory:", database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, Migrate(conn.GORM))

	notifier := Notifier(conn.GORM, nil, "")
	jobs := Jobs{
		Reminders: services.NewReminderService(conn.GORM, notifier, time.UTC),
		Overdue:   services.NewOverdueService(conn.GORM, time.UTC),
		Audit:     audit.NewService(conn.GORM),
	}

	sched := scheduler.NewScheduler()
	require.NoError(t, RegisterJobs(sched, testConfig(), jobs))
	assert.Equal(t, []string{"audit-cleanup", "overdue-update", "payment-reminders"}, sched.Jobs())

	assert.NoError(t, sched.RunNow("overdue-update"))
	assert.NoError(t, sched.RunNow("audit-cleanup"))
	assert.NoError(t, sched.RunNow("payment-reminders"))

	cfg := testConfig()
	cfg.Scheduler.AuditCleanupCron = "every night"
	assert.Error(t, RegisterJobs(scheduler.NewScheduler(), cfg, jobs))
}

func TestWhatsApp_DisabledWithoutEvolutionURL(t *testing.T) {
	assert.Nil(t, WhatsApp(testConfig()))

	cfg := testConfig()
	cfg.WhatsApp.EvolutionURL = "https://evo.example.com"
	cfg.WhatsApp.EvolutionKey = "secret"
	waService := WhatsApp(cfg)
	require.NotNil(t, waService)
	assert.Equal(t, "EvolutionAPI", waService.GetProviderName())
}

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "WHATSAPP_PROVIDER", "REMINDER_CRON", "UPLOAD_PROVIDER", "DB_AUTO_MIGRATE", "SCHEDULER_ENABLED", "AUDIT_RETENTION_DAYS"} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite:financeiromax.db", cfg.DatabaseURL)
	assert.Equal(t, "evolution", cfg.WhatsApp.Provider)
	assert.Equal(t, "0 0 * * * *", cfg.ReminderCron)
	assert.Equal(t, "local", cfg.Upload.Provider)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 365, cfg.Scheduler.AuditRetentionDays)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/fin")
	t.Setenv("EVOLUTION_API_URL", "https://evo.example.com")
	t.Setenv("EVOLUTION_API_KEY", "secret")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("LLM_MAX_TOKENS", "900")
	t.Setenv("SCHEDULER_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "https://evo.example.com", cfg.WhatsApp.EvolutionURL)
	assert.Equal(t, "secret", cfg.WhatsApp.EvolutionKey)
	assert.Equal(t, 900, cfg.LLM.MaxTokens)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("DB_AUTO_MIGRATE", "maybe")

	_, err := Load()
	assert.Error(t, err)
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestConfig_Location(t *testing.T) {
	cfg := &Config{Timezone: "America/Sao_Paulo"}
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())

	cfg.Timezone = "Mars/Olympus"
	assert.Equal(t, "UTC", cfg.Location().String())
}

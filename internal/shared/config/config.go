package config

import (
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port         string `envconfig:"PORT" default:"8080"`
	Env          string `envconfig:"ENV" default:"development"`
	DatabaseURL  string `envconfig:"DATABASE_URL" default:"sqlite:financeiromax.db"`
	AutoMigrate  bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
	JWTSecret    string `envconfig:"JWT_SECRET" default:"change-me"`
	Domain       string `envconfig:"DOMAIN" default:"http://localhost:8080"`
	AdminPhone   string `envconfig:"ADMIN_PHONE"`
	PremiumPrice string `envconfig:"PREMIUM_PRICE" default:"29.90"`
	ReminderCron string `envconfig:"REMINDER_CRON" default:"0 0 * * * *"`
	OverdueCron  string `envconfig:"OVERDUE_CRON" default:"0 5 0 * * *"`
	Timezone     string `envconfig:"TIMEZONE" default:"America/Sao_Paulo"`
	RedisURL     string `envconfig:"REDIS_URL"`
	Scheduler    SchedulerConfig
	WhatsApp     WhatsAppConfig
	LLM          LLMConfig
	Upload       UploadConfig
}

// SchedulerConfig controls the background jobs. API replicas can turn them
// off and leave them to cmd/worker.
type SchedulerConfig struct {
	Enabled            bool   `envconfig:"SCHEDULER_ENABLED" default:"true"`
	AuditCleanupCron   string `envconfig:"AUDIT_CLEANUP_CRON" default:"0 30 3 * * *"`
	AuditRetentionDays int    `envconfig:"AUDIT_RETENTION_DAYS" default:"365"`
}

type WhatsAppConfig struct {
	Provider        string `envconfig:"WHATSAPP_PROVIDER" default:"evolution"`
	StoreURL        string `envconfig:"WHATSAPP_STORE_URL"`
	EvolutionURL    string `envconfig:"EVOLUTION_API_URL"`
	EvolutionKey    string `envconfig:"EVOLUTION_API_KEY"`
	DefaultInstance string `envconfig:"EVOLUTION_DEFAULT_INSTANCE"`
}

type LLMConfig struct {
	OpenAIKey string `envconfig:"OPENAI_API_KEY"`
	Model     string `envconfig:"LLM_MODEL" default:"gpt-4o"`
	MaxTokens int    `envconfig:"LLM_MAX_TOKENS" default:"1500"`
}

type UploadConfig struct {
	Provider  string `envconfig:"UPLOAD_PROVIDER" default:"local"`
	Dir       string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	AccessKey string `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	Region    string `envconfig:"AWS_REGION" default:"us-east-1"`
	Bucket    string `envconfig:"AWS_S3_BUCKET"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// LoadConfig is Load for binaries that cannot start without configuration.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location is where reminder hours are evaluated. Unknown zones fall back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("⚠️ Unknown TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// Package bootstrap holds the wiring shared by cmd/api and cmd/worker.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/database"
)

// Database connects and, when asked or on SQLite, auto-migrates.
func Database(cfg *config.Config) *database.DB {
	level := logger.Warn
	if cfg.IsDevelopment() {
		level = logger.Info
	}
	db := database.NewDB(cfg.DatabaseURL, database.Options{LogLevel: level})

	// SQLite has no SQL migrations, so it is always auto-migrated
	if cfg.AutoMigrate || db.GORM.Dialector.Name() == "sqlite" {
		log.Println("🔄 Running auto-migration...")
		if err := Migrate(db.GORM); err != nil {
			log.Fatalf("❌ Auto-migration failed: %v", err)
		}
		log.Println("✅ Auto-migration completed")
	}
	return db
}

// Migrate creates every table the API uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(append([]interface{}{&auth.User{}}, models.All()...)...)
}

// WhatsApp returns nil when no gateway is configured, so messages are
// logged as failed instead of sent.
func WhatsApp(cfg *config.Config) *whatsapp.Service {
	typ := whatsapp.ProviderType(cfg.WhatsApp.Provider)
	if typ != whatsapp.ProviderWhatsmeow && cfg.WhatsApp.EvolutionURL == "" {
		log.Println("⚠️  EVOLUTION_API_URL not set, WhatsApp disabled")
		return nil
	}

	waService, err := whatsapp.NewService(&whatsapp.ProviderConfig{
		Type:            typ,
		EvolutionURL:    cfg.WhatsApp.EvolutionURL,
		EvolutionKey:    cfg.WhatsApp.EvolutionKey,
		DefaultInstance: cfg.WhatsApp.DefaultInstance,
		Timeout:         15 * time.Second,
		StoreURL:        cfg.WhatsApp.StoreURL,
	})
	if err != nil {
		log.Printf("⚠️  WhatsApp disabled: %v", err)
		return nil
	}
	return waService
}

// Notifier sends through sender and records every attempt in the message log.
func Notifier(db *gorm.DB, sender notification.Sender, adminPhone string) *notification.Service {
	msgLog := services.NewMessageLog(db)
	return notification.NewService(sender,
		notification.WithInstanceResolver(msgLog),
		notification.WithRecorder(msgLog),
		notification.WithAdminPhone(adminPhone),
	)
}

// Scheduler shares a Redis lock between replicas when REDIS_URL is set.
func Scheduler(ctx context.Context, cfg *config.Config) *scheduler.Scheduler {
	if cfg.RedisURL == "" {
		return scheduler.NewScheduler()
	}

	locker, err := scheduler.NewRedisLocker(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️  Scheduler lock disabled: %v", err)
		return scheduler.NewScheduler()
	}
	log.Println("🔒 Scheduler jobs locked through Redis")
	return scheduler.NewScheduler(scheduler.WithLocker(locker, 10*time.Minute))
}

// Jobs are the services behind the background jobs
type Jobs struct {
	Reminders *services.ReminderService
	Overdue   *services.OverdueService
	Audit     *audit.Service
}

// RegisterJobs adds the reminder, overdue and audit cleanup jobs.
func RegisterJobs(sched *scheduler.Scheduler, cfg *config.Config, jobs Jobs) error {
	if err := sched.AddJob("payment-reminders", cfg.ReminderCron, jobs.Reminders.Run); err != nil {
		return fmt.Errorf("payment-reminders: %w", err)
	}
	if err := sched.AddJob("overdue-update", cfg.OverdueCron, jobs.Overdue.Run); err != nil {
		return fmt.Errorf("overdue-update: %w", err)
	}
	if err := sched.AddJob("audit-cleanup", cfg.Scheduler.AuditCleanupCron, jobs.Audit.Cleanup(cfg.Scheduler.AuditRetentionDays)); err != nil {
		return fmt.Errorf("audit-cleanup: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/bootstrap"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/utils"
)

// worker runs the reminder, overdue and audit cleanup jobs outside the API.
// Run API replicas with SCHEDULER_ENABLED=false when this is deployed.
//
//	worker              # run on schedule until SIGINT/SIGTERM
//	worker -run overdue-update
func main() {
	runOnce := flag.String("run", "", "run one job now and exit")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Println("🚀 Starting FinanceiroMax worker")

	// Init database
	db := bootstrap.Database(cfg)
	defer db.Close()

	// Init WhatsApp (optional, reminders are logged as failed without it)
	var sender notification.Sender
	if waService := bootstrap.WhatsApp(cfg); waService != nil {
		sender = waService
	}
	notifier := bootstrap.Notifier(db.GORM, sender, cfg.AdminPhone)

	loc := cfg.Location()
	sched := bootstrap.Scheduler(ctx, cfg)
	err := bootstrap.RegisterJobs(sched, cfg, bootstrap.Jobs{
		Reminders: services.NewReminderService(db.GORM, notifier, loc),
		Overdue:   services.NewOverdueService(db.GORM, loc),
		Audit:     audit.NewService(db.GORM),
	})
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	if *runOnce != "" {
		if err := sched.RunNow(*runOnce); err != nil {
			log.Fatalf("❌ Job %s failed: %v", *runOnce, err)
		}
		log.Printf("✅ Job %s finished", *runOnce)
		return
	}

	sched.Start()
	log.Printf("✅ Worker is running %v. Press Ctrl+C to stop.", sched.Jobs())

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("🛑 Shutting down worker...")
	cancel()
	sched.Stop()
	log.Println("👋 Goodbye!")
}

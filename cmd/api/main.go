package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/shopspring/decimal"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/handlers"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/services"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/bootstrap"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/financeiro-max-be/cmd/api/docs"
)

// @title FinanceiroMax API
// @version 1.0
// @description Receivables, payables and installment sales for small businesses, with WhatsApp reminders and AI insights.
// @contact.name API Support
// @contact.email suporte@financeiromax.com.br
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx := context.Background()

	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Printf("🚀 Starting FinanceiroMax API on port %s", cfg.Port)

	// Init database
	db := bootstrap.Database(cfg)
	defer db.Close()

	// Init WhatsApp (optional)
	var (
		sender  notification.Sender
		gateway services.Gateway
	)
	providerName := "none"
	if waService := bootstrap.WhatsApp(cfg); waService != nil {
		sender, gateway = waService, waService
		providerName = waService.GetProviderName()
	}
	notifier := bootstrap.Notifier(db.GORM, sender, cfg.AdminPhone)

	// Init LLM (optional, Premium insights only)
	var llmService *llm.Service
	if cfg.LLM.OpenAIKey != "" {
		svc, err := llm.NewService(&llm.ProviderConfig{
			Type:        llm.ProviderOpenAI,
			APIKey:      cfg.LLM.OpenAIKey,
			Model:       cfg.LLM.Model,
			Temperature: 0.3,
			MaxTokens:   cfg.LLM.MaxTokens,
		})
		if err != nil {
			log.Printf("⚠️  AI insights disabled: %v", err)
		} else {
			llmService = svc
			log.Printf("🤖 Using LLM provider: %s", llmService.GetProviderName())
		}
	} else {
		log.Println("⚠️  OPENAI_API_KEY not set, AI insights disabled")
	}

	// Init document storage
	uploads, uploadDir := newUploads(ctx, cfg)
	log.Printf("📁 Using upload provider: %s", uploads.GetProviderName())

	premiumPrice, err := decimal.NewFromString(cfg.PremiumPrice)
	if err != nil {
		log.Printf("⚠️  Invalid PREMIUM_PRICE %q, using 29.90", cfg.PremiumPrice)
		premiumPrice = decimal.RequireFromString("29.90")
	}

	// Init services
	loc := cfg.Location()
	plans := services.NewPlanService(db.GORM, premiumPrice, cfg.AdminPhone, notifier)
	overdue := services.NewOverdueService(db.GORM, loc)
	sales := services.NewSaleService(db.GORM, plans, notifier, uploads, cfg.Domain, loc)
	reminders := services.NewReminderService(db.GORM, notifier, loc)
	audits := audit.NewService(db.GORM)
	authService := auth.NewService(db.GORM, cfg.JWTSecret, plans.CreateFreePlan)

	// Init handlers
	authHandler := auth.NewHandler(authService)
	finance := &handlers.Handlers{
		Clients:   handlers.NewClientHandler(services.NewClientService(db.GORM, plans), services.NewSupplierService(db.GORM)),
		Accounts:  handlers.NewAccountHandler(services.NewReceivableService(db.GORM, plans, sales, overdue), services.NewPayableService(db.GORM, plans, overdue)),
		Sales:     handlers.NewSaleHandler(sales),
		Plans:     handlers.NewPlanHandler(plans, authService),
		Tasks:     handlers.NewTaskHandler(overdue, reminders),
		WhatsApp:  handlers.NewWhatsAppHandler(services.NewWhatsAppService(db.GORM, gateway, notifier)),
		Insights:  handlers.NewInsightHandler(services.NewInsightService(db.GORM, llmService, cfg.LLM.Model, plans, overdue)),
		Dashboard: handlers.NewDashboardHandler(services.NewDashboardService(db.GORM, overdue), services.NewExportService(db.GORM, export.NewService(), overdue)),
		Health:    handlers.NewHealthHandler(db.DB, providerName),
		Audit:     handlers.NewAuditHandler(audits),
	}

	// Init scheduler (off when cmd/worker runs the jobs)
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = bootstrap.Scheduler(ctx, cfg)
		if err := bootstrap.RegisterJobs(sched, cfg, bootstrap.Jobs{Reminders: reminders, Overdue: overdue, Audit: audits}); err != nil {
			log.Fatalf("❌ %v", err)
		}
		sched.Start()
	} else {
		log.Println("⏸️  Scheduler disabled, jobs run in cmd/worker")
	}

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "FinanceiroMax API",
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(utils.RequestLogger())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded documents (local storage only)
	if uploadDir != "" {
		app.Static("/uploads", uploadDir)
	}

	// Routes
	requireAuth := auth.AuthMiddleware(authService)
	authHandler.RegisterRoutes(app, requireAuth)
	finance.RegisterRoutes(app, requireAuth, auth.RequireAdmin())

	go func() {
		log.Printf("✅ FinanceiroMax API running at :%s", cfg.Port)
		log.Printf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("🛑 Shutting down...")
	if sched != nil {
		sched.Stop()
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("⚠️  Shutdown error: %v", err)
	}
	log.Println("👋 Bye")
}

// newUploads returns the storage for confirmation documents and, for local
// storage, the directory to serve under /uploads.
func newUploads(ctx context.Context, cfg *config.Config) (*upload.Service, string) {
	switch cfg.Upload.Provider {
	case "s3":
		provider, err := upload.NewS3Provider(ctx, cfg.Upload.AccessKey, cfg.Upload.SecretKey, cfg.Upload.Region, cfg.Upload.Bucket)
		if err != nil {
			log.Fatalf("❌ Failed to init S3 storage: %v", err)
		}
		return upload.NewService(provider), ""
	default:
		provider, err := upload.NewLocalProvider(cfg.Upload.Dir, cfg.Domain)
		if err != nil {
			log.Fatalf("❌ Failed to init local storage: %v", err)
		}
		return upload.NewService(provider), provider.Root()
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"airdrop-tracker/handlers"
	"airdrop-tracker/middleware"
	"airdrop-tracker/models"
	"airdrop-tracker/services"
	"airdrop-tracker/utils"
	"airdrop-tracker/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // import files are small JSON arrays
	})

	// 🔐 GLOBAL: Only Gateway requests allowed. Stream routes are the one
	// carve-out — they check the same token via query params.
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Task{},
		&models.Wallet{},
		&models.SocialAccount{},
		&models.AIProvider{},
		&models.Setting{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	taskFeed := services.NewFeed[models.Task]()
	walletFeed := services.NewFeed[models.Wallet]()
	fetcher := services.NewBalanceFetcher()

	taskService := services.NewTaskService(db, taskFeed)
	importService := services.NewImportService(db, taskService)
	walletService := services.NewWalletService(db, walletFeed, fetcher)
	aiService := services.NewAIService(db)
	socialService := services.NewSocialService(db)
	settingsService := services.NewSettingsService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background wallet balance refresh
	refreshInterval := 10 * time.Minute
	if raw := os.Getenv("BALANCE_REFRESH_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			refreshInterval = parsed
		} else {
			log.Printf("⚠️  Invalid BALANCE_REFRESH_INTERVAL %q, using %s", raw, refreshInterval)
		}
	}
	balanceClient := workers.NewBalanceRefreshClient(db, fetcher)
	go workers.PollBalances(ctx, balanceClient, refreshInterval)

	taskService.StartBackupScheduler()

	handlers.SetupTaskRoutes(app, taskService, importService)
	handlers.SetupWalletRoutes(app, walletService)
	handlers.SetupAIRoutes(app, aiService)
	handlers.SetupSocialRoutes(app, socialService, settingsService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Printf("✅ Wallet balance polling running (every %s)", refreshInterval)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}

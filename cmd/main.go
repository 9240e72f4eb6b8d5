package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"seedworks/internal/auth"
	"seedworks/internal/config"
	"seedworks/internal/database"
	"seedworks/internal/events"
	"seedworks/internal/handlers"
	"seedworks/internal/jobs"
	"seedworks/internal/lock"
	"seedworks/internal/repository"
	"seedworks/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.Database.Driver, cfg.GetDSN(), cfg.Database.LogLevel); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Postgres schemas are owned by cmd/migrate
	if cfg.Database.Driver != "postgres" {
		if err := database.AutoMigrate(database.GetDB()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Redis backs the account locks and rate limits when configured
	var redisClient *redis.Client
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		locker = lock.NewRedisLocker(redisClient)
		log.Printf("Redis connected at %s", cfg.Redis.Addr)
	} else {
		log.Println("REDIS_ADDR not set, using in-process locks and rate limits")
	}

	// Initialize repository and services
	repo := repository.NewRepository(database.GetDB())

	referralService := services.NewReferralService(repo, locker, cfg)
	svc := handlers.Services{
		Auth:     services.NewAuthService(repo, locker, cfg),
		Account:  services.NewAccountService(repo, locker, cfg),
		Referral: referralService,
		Reward:   services.NewRewardService(repo, locker, cfg, referralService.Resolver()),
		Product:  services.NewProductService(repo, locker, cfg),
		Wallet:   services.NewWalletService(repo, locker, cfg),
		Accrual:  services.NewAccrualService(repo, locker, cfg),
		Admin:    services.NewAdminService(repo, locker, cfg),
	}

	// Single-binary deployments run the background jobs here
	ctx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()

	var accrualJob *jobs.DailyAccrualJob
	if cfg.Worker.RunInProcess {
		publisher, err := events.New(cfg.Events)
		if err != nil {
			log.Fatalf("Failed to create event publisher: %v", err)
		}
		defer func() { _ = publisher.Close() }()

		accrualJob = jobs.NewDailyAccrualJob(svc.Accrual, cfg.Worker.AccrualInterval)
		go accrualJob.Start()

		sender := jobs.NewOutboxSender(repo, publisher, cfg.Worker.OutboxBatchSize, cfg.Worker.OutboxMaxRetries)
		go sender.Run(ctx, cfg.Worker.OutboxInterval)
		log.Println("In-process accrual and outbox jobs started")
	}

	router := handlers.NewRouter(cfg, svc, redisClient)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if accrualJob != nil {
		accrualJob.Stop()
	}
	stopJobs()

	// Graceful shutdown with 5 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Println("Server exited")
}

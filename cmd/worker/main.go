package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"seedworks/internal/config"
	"seedworks/internal/database"
	"seedworks/internal/events"
	"seedworks/internal/jobs"
	"seedworks/internal/lock"
	"seedworks/internal/repository"
	"seedworks/internal/services"
)

// accrualUniqueTTL keeps a rescheduled accrual from running twice in a day
const accrualUniqueTTL = 23 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Connect(cfg.Database.Driver, cfg.GetDSN(), cfg.Database.LogLevel); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	repo := repository.NewRepository(database.GetDB())

	publisher, err := events.New(cfg.Events)
	if err != nil {
		log.Fatalf("Failed to create event publisher: %v", err)
	}
	defer func() { _ = publisher.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := jobs.NewOutboxSender(repo, publisher, cfg.Worker.OutboxBatchSize, cfg.Worker.OutboxMaxRetries)
	go sender.Run(ctx, cfg.Worker.OutboxInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if !cfg.Redis.Enabled() {
		// Without redis there is no queue; fall back to the ticker
		log.Println("REDIS_ADDR not set, running accrual on a ticker")
		accrualJob := jobs.NewDailyAccrualJob(services.NewAccrualService(repo, lock.NewLocalLocker(), cfg), cfg.Worker.AccrualInterval)
		go accrualJob.Start()

		<-quit
		accrualJob.Stop()
		log.Println("Worker exited")
		return
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()

	accrualService := services.NewAccrualService(repo, lock.NewRedisLocker(redisClient), cfg)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Printf("[Worker] task %s failed: %v", task.Type(), err)
		}),
	})
	if err := srv.Start(jobs.NewServeMux(accrualService)); err != nil {
		log.Fatalf("Failed to start asynq server: %v", err)
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: cfg.App.Location})
	task, err := jobs.NewDailyAccrualTask(accrualUniqueTTL)
	if err != nil {
		log.Fatalf("Failed to build accrual task: %v", err)
	}
	entryID, err := scheduler.Register(cfg.Worker.AccrualCron, task)
	if err != nil {
		log.Fatalf("Failed to register accrual schedule %q: %v", cfg.Worker.AccrualCron, err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	log.Printf("Worker started: accrual %s (entry %s), outbox every %v", cfg.Worker.AccrualCron, entryID, cfg.Worker.OutboxInterval)

	<-quit
	log.Println("Shutting down worker...")

	scheduler.Shutdown()
	srv.Shutdown()
	cancel()

	log.Println("Worker exited")
}

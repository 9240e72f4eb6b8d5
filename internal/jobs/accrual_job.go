package jobs

import (
	"context"
	"log"
	"time"

	"seedworks/internal/services"
)

// DailyAccrualJob runs the daily accrual on a ticker inside the API process.
// Deployments with a dedicated worker schedule it through asynq instead.
type DailyAccrualJob struct {
	accrualService *services.AccrualService
	interval       time.Duration
	stopChan       chan struct{}
}

// NewDailyAccrualJob creates a new accrual job
func NewDailyAccrualJob(accrualService *services.AccrualService, interval time.Duration) *DailyAccrualJob {
	return &DailyAccrualJob{
		accrualService: accrualService,
		interval:       interval,
		stopChan:       make(chan struct{}),
	}
}

// Start runs once immediately and then on every tick. It blocks until Stop.
func (j *DailyAccrualJob) Start() {
	log.Printf("[Accrual] Starting daily accrual job (interval: %v)", j.interval)

	j.run()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.run()
		case <-j.stopChan:
			log.Println("[Accrual] Stopping daily accrual job")
			return
		}
	}
}

// Stop stops the accrual loop
func (j *DailyAccrualJob) Stop() {
	close(j.stopChan)
}

func (j *DailyAccrualJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	if _, err := j.accrualService.RunDaily(ctx); err != nil {
		log.Printf("[Accrual] Error running daily accrual: %v", err)
	}
}

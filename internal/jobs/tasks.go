package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"seedworks/internal/services"
)

// TypeDailyAccrual is the asynq task type of the daily accrual
const TypeDailyAccrual = "accrual:daily"

// DailyAccrualPayload identifies a scheduled run; the accrual itself always
// works on the current business date.
type DailyAccrualPayload struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewDailyAccrualTask builds a task that is deduplicated for ttl
func NewDailyAccrualTask(ttl time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(DailyAccrualPayload{ScheduledAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDailyAccrual, payload, asynq.Unique(ttl), asynq.MaxRetry(3)), nil
}

// AccrualTaskHandler processes TypeDailyAccrual tasks
type AccrualTaskHandler struct {
	accrualService *services.AccrualService
}

func NewAccrualTaskHandler(accrualService *services.AccrualService) *AccrualTaskHandler {
	return &AccrualTaskHandler{accrualService: accrualService}
}

// ProcessTask implements asynq.Handler
func (h *AccrualTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p DailyAccrualPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TypeDailyAccrual, err, asynq.SkipRetry)
	}

	res, err := h.accrualService.RunDaily(ctx)
	if err != nil {
		return err
	}

	log.Printf("[Accrual] task scheduled at %s: processed=%d credited=%d failed=%d",
		p.ScheduledAt.Format(time.RFC3339), res.Processed, res.Credited, res.Failed)
	return nil
}

// NewServeMux registers every task handler
func NewServeMux(accrualService *services.AccrualService) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeDailyAccrual, NewAccrualTaskHandler(accrualService))
	return mux
}

package jobs

import (
	"context"
	"log"
	"time"

	"seedworks/internal/events"
	"seedworks/internal/repository"
)

// OutboxSender drains pending outbox events into a Publisher
type OutboxSender struct {
	repo       *repository.Repository
	publisher  events.Publisher
	batchSize  int
	maxRetries int
	now        func() time.Time
}

func NewOutboxSender(repo *repository.Repository, publisher events.Publisher, batchSize, maxRetries int) *OutboxSender {
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &OutboxSender{
		repo:       repo,
		publisher:  publisher,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// SendBatch publishes up to one batch of pending events in id order and
// returns how many were delivered. A failing event is retried on the next
// batch until it reaches maxRetries, then parked as failed.
func (s *OutboxSender) SendBatch(ctx context.Context) (int, error) {
	msgs, err := s.repo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, msg := range msgs {
		if err := s.publisher.Publish(ctx, msg.Topic, msg.Key, []byte(msg.Payload)); err != nil {
			failed := msg.RetryCount+1 >= s.maxRetries
			if failed {
				log.Printf("[Outbox] giving up on event %s after %d attempts: %v", msg.EventID, msg.RetryCount+1, err)
			}
			if rerr := s.repo.RecordFailure(ctx, msg.ID, err, failed); rerr != nil {
				return sent, rerr
			}
			continue
		}

		if err := s.repo.MarkSent(ctx, msg.ID, s.now().UTC()); err != nil {
			return sent, err
		}
		sent++
	}

	return sent, nil
}

// Run calls SendBatch every interval until ctx is done
func (s *OutboxSender) Run(ctx context.Context, interval time.Duration) {
	log.Printf("[Outbox] Starting outbox sender (interval: %v)", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.SendBatch(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[Outbox] Error sending batch: %v", err)
			}
		case <-ctx.Done():
			log.Println("[Outbox] Stopping outbox sender")
			return
		}
	}
}

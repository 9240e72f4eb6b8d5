package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"seedworks/internal/models"
)

// EnqueueEvent stores an event in the outbox. Call it inside the same
// Transaction as the change it describes.
func (r *Repository) EnqueueEvent(ctx context.Context, topic, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := &models.OutboxMessage{
		EventID: uuid.NewString(),
		Topic:   topic,
		Key:     key,
		Payload: string(body),
		Status:  models.OutboxStatusPending,
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

// GetPendingMessages returns the oldest pending events
func (r *Repository) GetPendingMessages(ctx context.Context, limit int) ([]models.OutboxMessage, error) {
	var msgs []models.OutboxMessage
	err := r.db.WithContext(ctx).
		Where("status = ?", models.OutboxStatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// MarkSent flags an event as delivered
func (r *Repository) MarkSent(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": models.OutboxStatusSent, "sent_at": at}).Error
}

// RecordFailure bumps the retry counter and stores the cause. When failed
// is set the event is parked as failed and no longer retried.
func (r *Repository) RecordFailure(ctx context.Context, id uint, cause error, failed bool) error {
	updates := map[string]interface{}{
		"retry_count": gorm.Expr("retry_count + 1"),
		"last_error":  cause.Error(),
	}
	if failed {
		updates["status"] = models.OutboxStatusFailed
	}
	return r.db.WithContext(ctx).Model(&models.OutboxMessage{}).Where("id = ?", id).Updates(updates).Error
}

// CountOutbox returns counts per status
func (r *Repository) CountOutbox(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OutboxMessage{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

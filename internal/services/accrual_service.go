package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"seedworks/internal/config"
	"seedworks/internal/events"
	"seedworks/internal/lock"
	"seedworks/internal/models"
	"seedworks/internal/repository"
)

const accrualBatchSize = 200

// AccrualResult summarizes one daily accrual run
type AccrualResult struct {
	Date      string `json:"date"`
	Processed int    `json:"processed"`
	Credited  int    `json:"credited"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Expired   int64  `json:"expired"`
}

// AccrualService credits daily product income
type AccrualService struct {
	base
}

func NewAccrualService(repo *repository.Repository, locker lock.Locker, cfg *config.Config) *AccrualService {
	return &AccrualService{base: newBase(repo, locker, cfg)}
}

// RunDaily accrues every active ownership once for the business date.
// Running it again on the same day credits nothing.
func (s *AccrualService) RunDaily(ctx context.Context) (*AccrualResult, error) {
	day := s.today()
	result := &AccrualResult{Date: day}
	products := make(map[uint]*models.Product)

	var afterID uint
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := s.repo.ListAccrualCandidates(ctx, day, afterID, accrualBatchSize)
		if err != nil {
			return result, fmt.Errorf("failed to load accrual candidates: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			ownership := &batch[i]
			afterID = ownership.ID
			result.Processed++

			credited, err := s.accrueOne(ctx, ownership, day, products)
			switch {
			case err != nil:
				result.Failed++
				log.Printf("[Accrual] ownership %d failed: %v", ownership.ID, err)
			case credited:
				result.Credited++
			default:
				result.Skipped++
			}
		}
	}

	expired, err := s.repo.DeactivateExpired(ctx, s.clock())
	if err != nil {
		return result, fmt.Errorf("failed to deactivate expired ownerships: %w", err)
	}
	result.Expired = expired

	if err := s.repo.EnqueueEvent(ctx, s.topic(events.TopicAccrualCompleted), day, events.AccrualEvent{
		Date:       day,
		Processed:  result.Processed,
		Credited:   result.Credited,
		Failed:     result.Failed,
		Expired:    expired,
		OccurredAt: s.clock(),
	}); err != nil {
		log.Printf("[Accrual] failed to enqueue summary event: %v", err)
	}

	log.Printf("[Accrual] %s: processed=%d credited=%d skipped=%d failed=%d expired=%d",
		day, result.Processed, result.Credited, result.Skipped, result.Failed, result.Expired)
	return result, nil
}

func (s *AccrualService) accrueOne(ctx context.Context, ownership *models.UserProduct, day string, products map[uint]*models.Product) (bool, error) {
	product, ok := products[ownership.ProductID]
	if !ok {
		p, err := s.repo.GetProduct(ctx, ownership.ProductID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
		products[ownership.ProductID] = p
		product = p
	}
	if product == nil {
		return false, fmt.Errorf("product %d not found", ownership.ProductID)
	}

	credited := false
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		ok, err := tx.AccrueOwnership(ctx, ownership.ID, day)
		if err != nil {
			return err
		}
		if !ok || !ownership.DailyEarning.IsPositive() {
			return nil
		}

		ref := fmt.Sprintf("accrual:%d:%s", ownership.ID, day)
		if _, err := tx.Post(ctx, repository.Entry{
			AccountID:   ownership.AccountID,
			Type:        models.TxTypeProductIncome,
			Balance:     models.BalanceProductIncome,
			Amount:      ownership.DailyEarning,
			Description: fmt.Sprintf("Daily income from %s", product.Name),
			Reference:   &ref,
		}); err != nil {
			return err
		}
		credited = true
		return nil
	})
	return credited, err
}

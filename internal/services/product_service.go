package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seedworks/internal/config"
	"seedworks/internal/events"
	"seedworks/internal/lock"
	"seedworks/internal/models"
	"seedworks/internal/repository"
	"seedworks/internal/rewards"
)

// ProductService lists products and processes purchases
type ProductService struct {
	base
}

func NewProductService(repo *repository.Repository, locker lock.Locker, cfg *config.Config) *ProductService {
	return &ProductService{base: newBase(repo, locker, cfg)}
}

// ListProducts returns active products ordered by category then vip level
func (s *ProductService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	return s.repo.ListProducts(ctx, category, true)
}

// GetProduct returns one active product
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// PurchaseResult is returned after a successful purchase
type PurchaseResult struct {
	Product    *models.Product      `json:"product"`
	Quantity   int                  `json:"quantity"`
	Total      decimal.Decimal      `json:"total"`
	Ownerships []models.UserProduct `json:"ownerships"`
}

// Purchase debits the recharge balance, creates ownerships and pays upline
// commission in one database transaction.
func (s *ProductService) Purchase(ctx context.Context, accountID, productID uint, quantity int) (*PurchaseResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var result *PurchaseResult
	err := s.withAccountLock(ctx, accountID, func() error {
		product, err := s.repo.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if !product.IsActive {
			return ErrProductUnavailable
		}

		account, err := s.repo.GetAccountByID(ctx, accountID)
		if err != nil {
			return err
		}

		owned, err := s.repo.CountOwnerships(ctx, accountID, productID)
		if err != nil {
			return err
		}
		if err := s.checkEligibility(ctx, account, product, quantity, owned); err != nil {
			return err
		}

		total := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
		now := s.clock()

		ownerships := make([]models.UserProduct, quantity)
		for i := range ownerships {
			ownerships[i] = models.UserProduct{
				AccountID:     accountID,
				ProductID:     product.ID,
				PurchasePrice: product.Price,
				DailyEarning:  product.DailyEarning,
				DaysRemaining: product.RevenueDays,
				ExpiryDate:    now.AddDate(0, 0, product.RevenueDays),
				IsActive:      true,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
		}

		err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			ref := fmt.Sprintf("product:%d", product.ID)
			if _, err := tx.Post(ctx, repository.Entry{
				AccountID:   accountID,
				Type:        models.TxTypeProductBuy,
				Balance:     models.BalanceRecharge,
				Amount:      total.Neg(),
				Description: fmt.Sprintf("Purchase %s x%d", product.Name, quantity),
				Reference:   &ref,
			}); err != nil {
				return err
			}

			if err := tx.CreateOwnerships(ctx, ownerships); err != nil {
				return fmt.Errorf("failed to create ownerships: %w", err)
			}

			if err := payCommission(ctx, tx, account, total, s.cfg.Rewards.CommissionRates); err != nil {
				return err
			}

			return tx.EnqueueEvent(ctx, s.topic(events.TopicPurchaseCreated), fmt.Sprint(accountID), events.PurchaseEvent{
				AccountID:  accountID,
				ProductID:  product.ID,
				Quantity:   quantity,
				Total:      total,
				OccurredAt: now,
			})
		})
		if err != nil {
			return err
		}

		result = &PurchaseResult{Product: product, Quantity: quantity, Total: total, Ownerships: ownerships}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Product] account %d bought product %d x%d for %s", accountID, productID, quantity, result.Total)
	return result, nil
}

func (s *ProductService) checkEligibility(ctx context.Context, account *models.Account, product *models.Product, quantity int, owned int64) error {
	if product.MaxQuantity > 0 && owned+int64(quantity) > int64(product.MaxQuantity) {
		return ErrQuantityExceeded
	}

	if product.Category != models.ProductCategoryWelfare {
		if rewards.Tier(account.TotalRecharge) < product.VIPLevel {
			return ErrTierTooLow
		}
		return nil
	}

	if owned > 0 || quantity > 1 {
		return ErrAlreadyOwned
	}
	level, err := s.repo.HighestActiveLevel(ctx, account.ID, models.ProductCategoryStable)
	if err != nil {
		return fmt.Errorf("failed to load stable level: %w", err)
	}
	active, err := s.repo.ActiveOwners(ctx, []uint{account.ID}, models.ProductCategoryStable)
	if err != nil {
		return fmt.Errorf("failed to load stable ownerships: %w", err)
	}
	if len(active) == 0 || level < product.VIPLevel {
		return ErrWelfareLocked
	}
	return nil
}

// ListOrders returns the account's ownerships with their products
func (s *ProductService) ListOrders(ctx context.Context, accountID uint, activeOnly bool) ([]models.UserProduct, error) {
	return s.repo.ListOwnerships(ctx, accountID, activeOnly)
}

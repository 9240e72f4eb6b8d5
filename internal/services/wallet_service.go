package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seedworks/internal/config"
	"seedworks/internal/database"
	"seedworks/internal/events"
	"seedworks/internal/lock"
	"seedworks/internal/models"
	"seedworks/internal/repository"
	"seedworks/internal/rewards"
	"seedworks/internal/utils"
)

const minUTRLength = 12

// WalletService handles recharge and withdrawal requests
type WalletService struct {
	base
}

func NewWalletService(repo *repository.Repository, locker lock.Locker, cfg *config.Config) *WalletService {
	return &WalletService{base: newBase(repo, locker, cfg)}
}

// Recharge records a deposit claim for review and grants spin chances.
// With auto-approve the amount is credited immediately.
func (s *WalletService) Recharge(ctx context.Context, accountID uint, amount decimal.Decimal, utr string) (*models.RechargeRequest, error) {
	if !rewards.IsCents(amount) {
		return nil, ErrInvalidAmount
	}
	if amount.LessThan(s.cfg.App.RechargeMin) {
		return nil, ErrBelowMinimum
	}
	utr = strings.TrimSpace(utr)
	if len(utr) < minUTRLength {
		return nil, ErrInvalidUTR
	}

	exists, err := s.repo.UTRExists(ctx, utr)
	if err != nil {
		return nil, fmt.Errorf("failed to check UTR: %w", err)
	}
	if exists {
		return nil, ErrDuplicateUTR
	}

	now := s.clock()
	req := &models.RechargeRequest{
		AccountID: accountID,
		Amount:    amount,
		UTR:       utr,
		Status:    models.RequestStatusUnderReview,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.CreateRecharge(ctx, req); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicateUTR
			}
			return fmt.Errorf("failed to create recharge request: %w", err)
		}

		if s.cfg.App.SpinsPerRecharge > 0 {
			if err := tx.AddSpinChances(ctx, accountID, s.cfg.App.SpinsPerRecharge); err != nil {
				return err
			}
		}

		if s.cfg.App.RechargeAutoApprove {
			return approveRecharge(ctx, tx, req, 0, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Wallet] recharge %d of %s submitted by account %d", req.ID, amount, accountID)
	return req, nil
}

// approveRecharge moves a request out of review and credits the recharge balance
func approveRecharge(ctx context.Context, tx *repository.Repository, req *models.RechargeRequest, reviewer uint, at time.Time) error {
	ok, err := tx.TransitionRecharge(ctx, req.ID, models.RequestStatusSuccess, reviewer, at)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidStatus
	}

	ref := "UTR:" + req.UTR
	if _, err := tx.Post(ctx, repository.Entry{
		AccountID:   req.AccountID,
		Type:        models.TxTypeRecharge,
		Balance:     models.BalanceRecharge,
		Amount:      req.Amount,
		Description: "Recharge",
		Reference:   &ref,
	}); err != nil {
		return err
	}
	req.Status = models.RequestStatusSuccess
	return nil
}

// ListRecharges returns the account's recharge requests
func (s *WalletService) ListRecharges(ctx context.Context, accountID uint, status string, page repository.Page) ([]models.RechargeRequest, int64, error) {
	return s.repo.ListRecharges(ctx, repository.RequestFilter{AccountID: accountID, Status: status, Page: page})
}

// QuoteWithdrawal previews tax and payout for amount
func (s *WalletService) QuoteWithdrawal(amount decimal.Decimal) (rewards.WithdrawalQuote, error) {
	return rewards.QuoteWithdrawal(amount, s.cfg.Withdrawal)
}

// Withdraw deducts the full amount from the withdrawal balance and files a
// request for review. At most one non-rejected request per business day.
func (s *WalletService) Withdraw(ctx context.Context, accountID uint, amount decimal.Decimal, tradePassword string) (*models.WithdrawalRequest, error) {
	quote, err := rewards.QuoteWithdrawal(amount, s.cfg.Withdrawal)
	if err != nil {
		return nil, err
	}

	card, err := s.repo.GetBankCard(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoBankCard
		}
		return nil, err
	}

	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.HasTradePassword() {
		return nil, ErrTradePasswordNotSet
	}
	if !checkSecret(*account.TradePasswordHash, tradePassword) {
		return nil, ErrInvalidTradePassword
	}

	var req *models.WithdrawalRequest
	err = s.withAccountLock(ctx, accountID, func() error {
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			// debit first so a concurrent request fails on the balance guard
			refNo := utils.GenerateReference("WD")
			if _, err := tx.Post(ctx, repository.Entry{
				AccountID:   accountID,
				Type:        models.TxTypeWithdraw,
				Balance:     models.BalanceWithdrawal,
				Amount:      quote.Amount.Neg(),
				Status:      models.RequestStatusUnderReview,
				Description: "Withdrawal",
				Reference:   &refNo,
			}); err != nil {
				return err
			}

			now := s.clock()
			day := s.today()
			req = &models.WithdrawalRequest{
				AccountID:     accountID,
				BusinessDate:  &day,
				Amount:        quote.Amount,
				Tax:           quote.Tax,
				FinalAmount:   quote.FinalAmount,
				Status:        models.RequestStatusUnderReview,
				ReferenceNo:   refNo,
				BankName:      card.BankName,
				AccountNumber: card.AccountNumber,
				IFSC:          card.IFSC,
				HolderName:    card.HolderName,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.CreateWithdrawal(ctx, req); err != nil {
				if database.IsUniqueViolation(err) {
					return ErrWithdrawalLimit
				}
				return fmt.Errorf("failed to create withdrawal request: %w", err)
			}

			return tx.EnqueueEvent(ctx, s.topic(events.TopicWithdrawalCreated), refNo, withdrawalEvent(req, now))
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Wallet] withdrawal %s of %s filed by account %d", req.ReferenceNo, req.Amount, accountID)
	return req, nil
}

// ListWithdrawals returns the account's withdrawal requests
func (s *WalletService) ListWithdrawals(ctx context.Context, accountID uint, status string, page repository.Page) ([]models.WithdrawalRequest, int64, error) {
	return s.repo.ListWithdrawals(ctx, repository.RequestFilter{AccountID: accountID, Status: status, Page: page})
}

func withdrawalEvent(w *models.WithdrawalRequest, at time.Time) events.WithdrawalEvent {
	return events.WithdrawalEvent{
		WithdrawalID: w.ID,
		AccountID:    w.AccountID,
		Amount:       w.Amount,
		FinalAmount:  w.FinalAmount,
		Status:       w.Status,
		ReferenceNo:  w.ReferenceNo,
		OccurredAt:   at,
	}
}

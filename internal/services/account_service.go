package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"seedworks/internal/config"
	"seedworks/internal/lock"
	"seedworks/internal/models"
	"seedworks/internal/repository"
	"seedworks/internal/rewards"
)

// AccountService serves profile, trade password and bank card operations
type AccountService struct {
	base
}

func NewAccountService(repo *repository.Repository, locker lock.Locker, cfg *config.Config) *AccountService {
	return &AccountService{base: newBase(repo, locker, cfg)}
}

// Profile is the account as shown on the account page
type Profile struct {
	*models.Account
	VIPLevel         int      `json:"vip_level"`
	NextTierAt       *string  `json:"next_tier_at,omitempty"`
	Roles            []string `json:"roles"`
	HasTradePassword bool     `json:"has_trade_password"`
	CheckedInToday   bool     `json:"checked_in_today"`
}

// GetProfile loads the account with derived fields
func (s *AccountService) GetProfile(ctx context.Context, accountID uint) (*Profile, error) {
	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	roles, err := s.repo.RolesFor(ctx, accountID)
	if err != nil {
		return nil, err
	}

	level := rewards.Tier(account.TotalRecharge)
	profile := &Profile{
		Account:          account,
		VIPLevel:         level,
		Roles:            roles,
		HasTradePassword: account.HasTradePassword(),
		CheckedInToday:   account.LastCheckinDate != nil && *account.LastCheckinDate == s.today(),
	}
	if next, ok := rewards.NextTierThreshold(level); ok {
		v := next.StringFixed(2)
		profile.NextTierAt = &v
	}
	return profile, nil
}

// SetTradePassword sets the withdrawal password. Changing an existing one
// requires the current value.
func (s *AccountService) SetTradePassword(ctx context.Context, accountID uint, current, next string) error {
	if len(next) < 6 {
		return ErrWeakPassword
	}

	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.HasTradePassword() && !checkSecret(*account.TradePasswordHash, current) {
		return ErrInvalidTradePassword
	}

	hash, err := hashSecret(next)
	if err != nil {
		return fmt.Errorf("failed to hash trade password: %w", err)
	}
	return s.repo.SetTradePassword(ctx, accountID, &hash)
}

// GetBankCard returns the account's bank card or ErrNoBankCard
func (s *AccountService) GetBankCard(ctx context.Context, accountID uint) (*models.BankCard, error) {
	card, err := s.repo.GetBankCard(ctx, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoBankCard
	}
	return card, err
}

// BankCardInput is the bank card form
type BankCardInput struct {
	HolderName    string
	BankName      string
	AccountNumber string
	IFSC          string
}

// SaveBankCard creates or replaces the account's bank card
func (s *AccountService) SaveBankCard(ctx context.Context, accountID uint, in BankCardInput) (*models.BankCard, error) {
	card := &models.BankCard{
		AccountID:     accountID,
		HolderName:    strings.TrimSpace(in.HolderName),
		BankName:      strings.TrimSpace(in.BankName),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		IFSC:          strings.ToUpper(strings.TrimSpace(in.IFSC)),
	}
	if card.HolderName == "" || card.BankName == "" || card.AccountNumber == "" || card.IFSC == "" {
		return nil, ErrMissingFields
	}

	if err := s.repo.UpsertBankCard(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to save bank card: %w", err)
	}
	return s.repo.GetBankCard(ctx, accountID)
}

// ListTransactions returns the account's ledger
func (s *AccountService) ListTransactions(ctx context.Context, accountID uint, txType string, balance models.BalanceType, page repository.Page) ([]models.Transaction, int64, error) {
	return s.repo.ListTransactions(ctx, repository.TransactionFilter{
		AccountID:   accountID,
		Type:        txType,
		BalanceType: balance,
		Page:        page,
	})
}

// SubmitSupportMessage opens a support ticket
func (s *AccountService) SubmitSupportMessage(ctx context.Context, accountID uint, message string) (*models.SupportMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrMissingFields
	}
	msg := &models.SupportMessage{AccountID: accountID, Message: message, Status: models.SupportStatusOpen}
	if err := s.repo.CreateSupportMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save support message: %w", err)
	}
	return msg, nil
}

// ListSupportMessages returns the account's tickets with replies
func (s *AccountService) ListSupportMessages(ctx context.Context, accountID uint, page repository.Page) ([]models.SupportMessage, error) {
	return s.repo.ListSupportMessages(ctx, accountID, "", page)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seedworks/internal/config"
	"seedworks/internal/events"
	"seedworks/internal/lock"
	"seedworks/internal/models"
	"seedworks/internal/repository"
	"seedworks/internal/rewards"
)

// AdminService backs the admin console. Every mutating action is logged.
type AdminService struct {
	base
}

func NewAdminService(repo *repository.Repository, locker lock.Locker, cfg *config.Config) *AdminService {
	return &AdminService{base: newBase(repo, locker, cfg)}
}

// IsAdmin checks the role table. It is called on every admin request.
func (s *AdminService) IsAdmin(ctx context.Context, accountID uint) (bool, error) {
	return s.repo.HasRole(ctx, accountID, models.RoleAdmin)
}

// Dashboard returns counts and today's totals
func (s *AdminService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	return s.repo.Dashboard(ctx, s.dayStart())
}

// ListWithdrawals lists requests of all accounts
func (s *AdminService) ListWithdrawals(ctx context.Context, status string, page repository.Page) ([]models.WithdrawalRequest, int64, error) {
	return s.repo.ListWithdrawals(ctx, repository.RequestFilter{Status: status, Page: page})
}

// withdrawalTransitions maps a target status to the statuses it may leave
var withdrawalTransitions = map[string][]string{
	models.RequestStatusProcessing: {models.RequestStatusUnderReview},
	models.RequestStatusSuccess:    {models.RequestStatusUnderReview, models.RequestStatusProcessing},
	models.RequestStatusRejected:   {models.RequestStatusUnderReview, models.RequestStatusProcessing},
}

// ReviewWithdrawal moves a withdrawal to status. Rejection refunds the full
// amount; success leaves balances untouched.
func (s *AdminService) ReviewWithdrawal(ctx context.Context, adminID, withdrawalID uint, status, note string) (*models.WithdrawalRequest, error) {
	from, ok := withdrawalTransitions[status]
	if !ok {
		return nil, ErrInvalidStatus
	}

	w, err := s.repo.GetWithdrawal(ctx, withdrawalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	err = s.withAccountLock(ctx, w.AccountID, func() error {
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			now := s.clock()
			moved, err := tx.TransitionWithdrawal(ctx, w.ID, from, status, adminID, note, now)
			if err != nil {
				return err
			}
			if !moved {
				return ErrInvalidStatus
			}
			w.Status = status

			if status == models.RequestStatusRejected {
				if _, err := tx.Post(ctx, repository.Entry{
					AccountID:   w.AccountID,
					Type:        models.TxTypeRefund,
					Balance:     models.BalanceWithdrawal,
					Amount:      w.Amount,
					Description: "Withdrawal rejected",
					Reference:   &w.ReferenceNo,
				}); err != nil {
					return err
				}
			}

			if err := tx.EnqueueEvent(ctx, s.topic(events.TopicWithdrawalUpdated), w.ReferenceNo, withdrawalEvent(w, now)); err != nil {
				return err
			}
			return logAction(ctx, tx, adminID, "REVIEW_WITHDRAWAL", "withdrawal", w.ID, models.JSONB{
				"status": status,
				"note":   note,
			})
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Admin] %d moved withdrawal %s to %s", adminID, w.ReferenceNo, status)
	return s.repo.GetWithdrawal(ctx, w.ID)
}

// ListRecharges lists recharge requests of all accounts
func (s *AdminService) ListRecharges(ctx context.Context, status string, page repository.Page) ([]models.RechargeRequest, int64, error) {
	return s.repo.ListRecharges(ctx, repository.RequestFilter{Status: status, Page: page})
}

// ReviewRecharge approves (crediting the recharge balance) or rejects a request
func (s *AdminService) ReviewRecharge(ctx context.Context, adminID, rechargeID uint, approve bool) (*models.RechargeRequest, error) {
	req, err := s.repo.GetRecharge(ctx, rechargeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	err = s.withAccountLock(ctx, req.AccountID, func() error {
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			now := s.clock()
			if approve {
				if err := approveRecharge(ctx, tx, req, adminID, now); err != nil {
					return err
				}
			} else {
				moved, err := tx.TransitionRecharge(ctx, req.ID, models.RequestStatusRejected, adminID, now)
				if err != nil {
					return err
				}
				if !moved {
					return ErrInvalidStatus
				}
			}

			action := "REJECT_RECHARGE"
			if approve {
				action = "APPROVE_RECHARGE"
			}
			return logAction(ctx, tx, adminID, action, "recharge", req.ID, models.JSONB{
				"amount": req.Amount.String(),
				"utr":    req.UTR,
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetRecharge(ctx, req.ID)
}

// ListUsers searches accounts by mobile prefix
func (s *AdminService) ListUsers(ctx context.Context, search string, page repository.Page) ([]models.Account, int64, error) {
	return s.repo.ListAccounts(ctx, strings.TrimSpace(search), page)
}

// UserDetail is an account with its roles and bank card
type UserDetail struct {
	Account  *models.Account  `json:"account"`
	Roles    []string         `json:"roles"`
	BankCard *models.BankCard `json:"bank_card,omitempty"`
}

// GetUser loads an account for the admin detail page
func (s *AdminService) GetUser(ctx context.Context, accountID uint) (*UserDetail, error) {
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
	detail := &UserDetail{Account: account, Roles: roles}
	if card, err := s.repo.GetBankCard(ctx, accountID); err == nil {
		detail.BankCard = card
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return detail, nil
}

// ResetTradePassword clears the trade password so the user can set a new one
func (s *AdminService) ResetTradePassword(ctx context.Context, adminID, accountID uint) error {
	if _, err := s.GetUser(ctx, accountID); err != nil {
		return err
	}
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.SetTradePassword(ctx, accountID, nil); err != nil {
			return err
		}
		return logAction(ctx, tx, adminID, "RESET_TRADE_PASSWORD", "account", accountID, nil)
	})
}

// SetAdmin grants or revokes the admin role
func (s *AdminService) SetAdmin(ctx context.Context, adminID, accountID uint, grant bool) error {
	if _, err := s.GetUser(ctx, accountID); err != nil {
		return err
	}
	if !grant && adminID == accountID {
		return ErrSelfRevoke
	}

	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		action := "GRANT_ADMIN"
		if grant {
			if err := tx.GrantRole(ctx, accountID, models.RoleAdmin); err != nil {
				return err
			}
		} else {
			action = "REVOKE_ADMIN"
			if err := tx.RevokeRole(ctx, accountID, models.RoleAdmin); err != nil {
				return err
			}
		}
		return logAction(ctx, tx, adminID, action, "account", accountID, nil)
	})
}

// GrantBonus credits a system bonus to the account with the given mobile
func (s *AdminService) GrantBonus(ctx context.Context, adminID uint, mobile string, amount decimal.Decimal, balance models.BalanceType, note string) (*models.Transaction, error) {
	if !amount.IsPositive() || !rewards.IsCents(amount) {
		return nil, ErrInvalidAmount
	}
	if balance != models.BalanceRecharge && balance != models.BalanceWithdrawal {
		return nil, fmt.Errorf("%w: bonus goes to recharge or withdrawal balance", ErrInvalidAmount)
	}

	account, err := s.repo.GetAccountByMobile(ctx, strings.TrimSpace(mobile))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	description := "System bonus"
	if note = strings.TrimSpace(note); note != "" {
		description = note
	}

	var txRow *models.Transaction
	err = s.withAccountLock(ctx, account.ID, func() error {
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			var err error
			txRow, err = tx.Post(ctx, repository.Entry{
				AccountID:   account.ID,
				Type:        models.TxTypeBonus,
				Balance:     balance,
				Amount:      amount,
				Description: description,
			})
			if err != nil {
				return err
			}
			return logAction(ctx, tx, adminID, "GRANT_BONUS", "account", account.ID, models.JSONB{
				"amount":  amount.String(),
				"balance": string(balance),
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return txRow, nil
}

// ListSupportMessages lists tickets of all accounts
func (s *AdminService) ListSupportMessages(ctx context.Context, status string, page repository.Page) ([]models.SupportMessage, error) {
	return s.repo.ListSupportMessages(ctx, 0, status, page)
}

// ReplySupportMessage answers a ticket
func (s *AdminService) ReplySupportMessage(ctx context.Context, adminID, messageID uint, reply string) error {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ErrMissingFields
	}
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.ReplySupportMessage(ctx, messageID, adminID, reply, s.clock()); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return logAction(ctx, tx, adminID, "REPLY_SUPPORT", "support_message", messageID, nil)
	})
}

// Reconcile recomputes balances from the ledger and reports drift
func (s *AdminService) Reconcile(ctx context.Context, adminID uint) ([]repository.Drift, error) {
	drifts, err := s.repo.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	if len(drifts) > 0 {
		log.Printf("[Admin] reconciliation found %d drifting balances", len(drifts))
	}
	if err := logAction(ctx, s.repo, adminID, "RECONCILE", "ledger", 0, models.JSONB{"drifts": len(drifts)}); err != nil {
		return nil, err
	}
	return drifts, nil
}

// ListLogs returns the audit trail
func (s *AdminService) ListLogs(ctx context.Context, page repository.Page) ([]models.AdminLog, error) {
	return s.repo.ListAdminLogs(ctx, page)
}

// logAction writes an admin log entry
func logAction(ctx context.Context, repo *repository.Repository, adminID uint, action, resourceType string, resourceID uint, details models.JSONB) error {
	entry := &models.AdminLog{
		AdminID:      adminID,
		Action:       action,
		ResourceType: resourceType,
		Details:      details,
	}
	if resourceID != 0 {
		entry.ResourceID = &resourceID
	}
	if err := repo.CreateAdminLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to write admin log: %w", err)
	}
	return nil
}

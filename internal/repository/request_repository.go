package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"seedworks/internal/models"
)

// RequestFilter narrows withdrawal and recharge listings
type RequestFilter struct {
	AccountID uint
	Status    string
	Page
}

// CreateWithdrawal inserts a withdrawal request. A second non-rejected
// request on the same business date is a unique violation on
// (account_id, business_date).
func (r *Repository) CreateWithdrawal(ctx context.Context, w *models.WithdrawalRequest) error {
	return r.db.WithContext(ctx).Create(w).Error
}

// GetWithdrawal retrieves a withdrawal request by ID
func (r *Repository) GetWithdrawal(ctx context.Context, id uint) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWithdrawals returns withdrawal requests newest first
func (r *Repository) ListWithdrawals(ctx context.Context, f RequestFilter) ([]models.WithdrawalRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WithdrawalRequest{})
	if f.AccountID != 0 {
		query = query.Where("account_id = ?", f.AccountID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.normalize()
	var rows []models.WithdrawalRequest
	err := query.Order("created_at DESC, id DESC").Limit(page.Limit).Offset(page.Offset).Find(&rows).Error
	return rows, total, err
}

// LatestSuccessfulWithdrawal returns the most recent paid-out request
func (r *Repository) LatestSuccessfulWithdrawal(ctx context.Context, accountID uint) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, models.RequestStatusSuccess).
		Order("created_at DESC, id DESC").
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// TransitionWithdrawal moves a request to status `to` only while its
// current status is one of from. Returns false when no row matched.
func (r *Repository) TransitionWithdrawal(ctx context.Context, id uint, from []string, to string, reviewer uint, note string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":      to,
		"reviewed_by": reviewer,
		"reviewed_at": at,
	}
	if note != "" {
		updates["note"] = note
	}
	if to == models.RequestStatusRejected {
		// frees the day for a new request
		updates["business_date"] = nil
	}
	result := r.db.WithContext(ctx).Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected == 1, result.Error
}

// CreateRecharge inserts a recharge request; the UTR column is unique
func (r *Repository) CreateRecharge(ctx context.Context, req *models.RechargeRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetRecharge retrieves a recharge request by ID
func (r *Repository) GetRecharge(ctx context.Context, id uint) (*models.RechargeRequest, error) {
	var req models.RechargeRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// UTRExists checks whether a reference number was already submitted
func (r *Repository) UTRExists(ctx context.Context, utr string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RechargeRequest{}).Where("utr = ?", utr).Count(&count).Error
	return count > 0, err
}

// ListRecharges returns recharge requests newest first
func (r *Repository) ListRecharges(ctx context.Context, f RequestFilter) ([]models.RechargeRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RechargeRequest{})
	if f.AccountID != 0 {
		query = query.Where("account_id = ?", f.AccountID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.normalize()
	var rows []models.RechargeRequest
	err := query.Order("created_at DESC, id DESC").Limit(page.Limit).Offset(page.Offset).Find(&rows).Error
	return rows, total, err
}

// TransitionRecharge moves an under-review recharge to a final status
func (r *Repository) TransitionRecharge(ctx context.Context, id uint, to string, reviewer uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.RechargeRequest{}).
		Where("id = ? AND status = ?", id, models.RequestStatusUnderReview).
		Updates(map[string]interface{}{
			"status":      to,
			"reviewed_by": reviewer,
			"reviewed_at": at,
		})
	return result.RowsAffected == 1, result.Error
}

// SumTeamRecharge totals cumulative recharge across accountIDs
func (r *Repository) SumTeamRecharge(ctx context.Context, accountIDs []uint) (decimal.Decimal, error) {
	if len(accountIDs) == 0 {
		return decimal.Zero, nil
	}
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Select("COALESCE(SUM(total_recharge), 0)").
		Where("id IN ?", accountIDs).
		Scan(&total).Error
	return total, err
}

package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"seedworks/internal/models"
)

// CreateAdminLog writes an audit entry
func (r *Repository) CreateAdminLog(ctx context.Context, entry *models.AdminLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListAdminLogs returns audit entries newest first
func (r *Repository) ListAdminLogs(ctx context.Context, page Page) ([]models.AdminLog, error) {
	page = page.normalize()
	var logs []models.AdminLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(page.Limit).Offset(page.Offset).
		Find(&logs).Error
	return logs, err
}

// Dashboard aggregates the admin overview since the start of the business day
func (r *Repository) Dashboard(ctx context.Context, dayStart time.Time) (*models.DashboardStats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.DashboardStats{}

	if err := db.Model(&models.Account{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Account{}).Where("created_at >= ?", dayStart).Count(&stats.NewUsersToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.WithdrawalRequest{}).
		Where("status IN ?", []string{models.RequestStatusUnderReview, models.RequestStatusProcessing}).
		Count(&stats.PendingWithdrawals).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.RechargeRequest{}).
		Where("status = ?", models.RequestStatusUnderReview).
		Count(&stats.PendingRecharges).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.UserProduct{}).Where("is_active = ?", true).Count(&stats.ActiveOwnerships).Error; err != nil {
		return nil, err
	}

	var recharged, withdrawn decimal.Decimal
	if err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("type = ? AND created_at >= ?", models.TxTypeRecharge, dayStart).
		Scan(&recharged).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("type = ? AND created_at >= ?", models.TxTypeWithdraw, dayStart).
		Scan(&withdrawn).Error; err != nil {
		return nil, err
	}
	stats.RechargedToday = recharged.StringFixed(2)
	stats.WithdrawnToday = withdrawn.Neg().StringFixed(2)

	return stats, nil
}

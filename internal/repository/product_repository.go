package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"seedworks/internal/models"
)

// ListProducts returns products ordered by category and vip level
func (r *Repository) ListProducts(ctx context.Context, category string, activeOnly bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var products []models.Product
	err := query.Order("category ASC, vip_level ASC, price ASC").Find(&products).Error
	return products, err
}

// GetProduct retrieves a product by ID
func (r *Repository) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct is used by seeding and tests
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// CreateOwnerships inserts purchased ownership records
func (r *Repository) CreateOwnerships(ctx context.Context, ownerships []models.UserProduct) error {
	if len(ownerships) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ownerships).Error
}

// CountOwnerships counts every purchase of a product by an account
func (r *Repository) CountOwnerships(ctx context.Context, accountID, productID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserProduct{}).
		Where("account_id = ? AND product_id = ?", accountID, productID).
		Count(&count).Error
	return count, err
}

// ListOwnerships returns an account's orders with their products
func (r *Repository) ListOwnerships(ctx context.Context, accountID uint, activeOnly bool) ([]models.UserProduct, error) {
	query := r.db.WithContext(ctx).Preload("Product").Where("account_id = ?", accountID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var ownerships []models.UserProduct
	err := query.Order("created_at DESC, id DESC").Find(&ownerships).Error
	return ownerships, err
}

// HighestActiveLevel is the max vip level among products the account
// actively holds, optionally restricted to one category, or 0.
func (r *Repository) HighestActiveLevel(ctx context.Context, accountID uint, category models.ProductCategory) (int, error) {
	query := r.db.WithContext(ctx).Model(&models.UserProduct{}).
		Select("COALESCE(MAX(products.vip_level), 0)").
		Joins("JOIN products ON products.id = user_products.product_id").
		Where("user_products.account_id = ? AND user_products.is_active = ?", accountID, true)
	if category != "" {
		query = query.Where("products.category = ?", category)
	}

	var level int
	err := query.Scan(&level).Error
	return level, err
}

// ActiveOwners filters accountIDs down to those holding an active ownership
// of a product in the given category.
func (r *Repository) ActiveOwners(ctx context.Context, accountIDs []uint, category models.ProductCategory) ([]uint, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.UserProduct{}).
		Joins("JOIN products ON products.id = user_products.product_id").
		Where("user_products.account_id IN ? AND user_products.is_active = ? AND products.category = ?",
			accountIDs, true, category).
		Distinct().
		Pluck("user_products.account_id", &ids).Error
	return ids, err
}

// ListAccrualCandidates pages through active ownerships not yet accrued on day
func (r *Repository) ListAccrualCandidates(ctx context.Context, day string, afterID uint, limit int) ([]models.UserProduct, error) {
	var rows []models.UserProduct
	err := r.db.WithContext(ctx).
		Where("id > ? AND is_active = ? AND (last_accrued_date IS NULL OR last_accrued_date < ?)", afterID, true, day).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// AccrueOwnership checks and sets last_accrued_date in one statement,
// decrementing days_remaining and deactivating on the last day. Returns
// false when the row was already accrued for day or is inactive.
func (r *Repository) AccrueOwnership(ctx context.Context, id uint, day string) (bool, error) {
	// MySQL evaluates SET assignments left to right, so is_active sees the
	// decremented value there.
	lastDay := 1
	if r.db.Dialector.Name() == "mysql" {
		lastDay = 0
	}

	result := r.db.WithContext(ctx).Model(&models.UserProduct{}).
		Where("id = ? AND is_active = ? AND (last_accrued_date IS NULL OR last_accrued_date < ?)", id, true, day).
		Updates(map[string]interface{}{
			"days_remaining":    gorm.Expr("days_remaining - 1"),
			"last_accrued_date": day,
			"is_active":         gorm.Expr(fmt.Sprintf("CASE WHEN days_remaining <= %d THEN FALSE ELSE TRUE END", lastDay)),
		})
	return result.RowsAffected == 1, result.Error
}

// DeactivateExpired flips ownerships that ran out of days or passed expiry
func (r *Repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.UserProduct{}).
		Where("is_active = ? AND (days_remaining <= 0 OR expiry_date < ?)", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

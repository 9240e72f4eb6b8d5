package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategory classifies purchasable products
type ProductCategory string

const (
	ProductCategoryStable   ProductCategory = "stable"
	ProductCategoryWelfare  ProductCategory = "welfare"
	ProductCategoryActivity ProductCategory = "activity"
)

// Product is a purchasable yield instrument. Rows are seeded out-of-band.
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	Category     ProductCategory `gorm:"size:20;not null;index" json:"category"`
	VIPLevel     int             `gorm:"column:vip_level;not null;default:0" json:"vip_level"`
	Price        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	DailyEarning decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"daily_earning"`
	RevenueDays  int             `gorm:"not null" json:"revenue_days"`
	MaxQuantity  int             `gorm:"not null;default:0" json:"max_quantity"` // 0 = unlimited
	ImageURL     string          `gorm:"size:500" json:"image_url,omitempty"`
	IsActive     bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// TotalIncome is the expected earning over the whole revenue period
func (p *Product) TotalIncome() decimal.Decimal {
	return p.DailyEarning.Mul(decimal.NewFromInt(int64(p.RevenueDays)))
}

// UserProduct is an ownership record linking an account to a purchased product
type UserProduct struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	AccountID       uint            `gorm:"not null;index" json:"account_id"`
	ProductID       uint            `gorm:"not null;index" json:"product_id"`
	Product         *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	PurchasePrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"purchase_price"`
	DailyEarning    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"daily_earning"`
	DaysRemaining   int             `gorm:"not null" json:"days_remaining"`
	ExpiryDate      time.Time       `gorm:"not null;index" json:"expiry_date"`
	IsActive        bool            `gorm:"not null;default:true;index" json:"is_active"`
	LastAccruedDate *string         `gorm:"size:10" json:"last_accrued_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (UserProduct) TableName() string {
	return "user_products"
}

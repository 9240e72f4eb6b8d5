package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a registered platform user and its materialized balances.
// Balances are only changed through ledger posts (see repository.Post).
type Account struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Mobile            string          `gorm:"uniqueIndex;size:20;not null" json:"mobile"`
	DisplayName       string          `gorm:"size:100" json:"display_name"`
	PasswordHash      string          `gorm:"size:100;not null" json:"-"`
	TradePasswordHash *string         `gorm:"size:100" json:"-"`
	InviteCode        string          `gorm:"uniqueIndex;size:12;not null" json:"invite_code"`
	InvitedBy         *string         `gorm:"index;size:12" json:"invited_by,omitempty"`
	RechargeBalance   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"recharge_balance"`
	WithdrawalBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"withdrawal_balance"`
	ProductIncome     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"product_income"`
	TotalRecharge     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_recharge"`
	TotalCommission   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_commission"`
	SpinChances       int             `gorm:"not null;default:0" json:"spin_chances"`
	LastCheckinDate   *string         `gorm:"size:10" json:"last_checkin_date,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Account model
func (Account) TableName() string {
	return "accounts"
}

// HasTradePassword reports whether a trade password was set
func (a *Account) HasTradePassword() bool {
	return a.TradePasswordHash != nil && *a.TradePasswordHash != ""
}

// BankCard holds the payout destination of an account
type BankCard struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AccountID     uint      `gorm:"uniqueIndex;not null" json:"account_id"`
	HolderName    string    `gorm:"size:100;not null" json:"holder_name"`
	BankName      string    `gorm:"size:100;not null" json:"bank_name"`
	AccountNumber string    `gorm:"size:40;not null" json:"account_number"`
	IFSC          string    `gorm:"column:ifsc;size:20;not null" json:"ifsc"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (BankCard) TableName() string {
	return "bank_cards"
}

// SupportMessage is a customer support ticket with an optional admin reply
type SupportMessage struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AccountID uint       `gorm:"not null;index" json:"account_id"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Reply     *string    `gorm:"type:text" json:"reply,omitempty"`
	Status    string     `gorm:"size:20;not null;default:open;index" json:"status"` // open, answered
	RepliedBy *uint      `json:"replied_by,omitempty"`
	RepliedAt *time.Time `json:"replied_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (SupportMessage) TableName() string {
	return "support_messages"
}

const (
	SupportStatusOpen     = "open"
	SupportStatusAnswered = "answered"
)

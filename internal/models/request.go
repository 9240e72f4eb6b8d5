package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request statuses shared by withdrawal and recharge requests
const (
	RequestStatusUnderReview = "under review"
	RequestStatusProcessing  = "processing"
	RequestStatusSuccess     = "success"
	RequestStatusRejected    = "rejected"
)

// WithdrawalRequest is a cash-out request. The amount is deducted at submission.
// BusinessDate holds the filing date while the request is not rejected; the
// unique (account_id, business_date) key enforces one request per day.
type WithdrawalRequest struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	AccountID     uint            `gorm:"not null;index;uniqueIndex:idx_withdrawal_requests_account_day" json:"account_id"`
	BusinessDate  *string         `gorm:"size:10;uniqueIndex:idx_withdrawal_requests_account_day" json:"business_date,omitempty"`
	Account       *Account        `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Tax           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"tax"`
	FinalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"final_amount"`
	Status        string          `gorm:"size:20;not null;index" json:"status"`
	ReferenceNo   string          `gorm:"uniqueIndex;size:64;not null" json:"reference_no"`
	BankName      string          `gorm:"size:100" json:"bank_name"`
	AccountNumber string          `gorm:"size:40" json:"account_number"`
	IFSC          string          `gorm:"column:ifsc;size:20" json:"ifsc"`
	HolderName    string          `gorm:"size:100" json:"holder_name"`
	ReviewedBy    *uint           `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
	Note          string          `gorm:"type:text" json:"note,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

// RechargeRequest is a deposit claim identified by the payer's UTR
type RechargeRequest struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	AccountID  uint            `gorm:"not null;index" json:"account_id"`
	Account    *Account        `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	UTR        string          `gorm:"column:utr;uniqueIndex;size:64;not null" json:"utr"`
	Status     string          `gorm:"size:20;not null;index" json:"status"`
	ReviewedBy *uint           `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (RechargeRequest) TableName() string {
	return "recharge_requests"
}

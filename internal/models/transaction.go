package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TxTypeRegister      = "register"
	TxTypeRecharge      = "recharge"
	TxTypeWithdraw      = "withdraw"
	TxTypeRefund        = "refund"
	TxTypeProductBuy    = "product_buy"
	TxTypeProductIncome = "product_income"
	TxTypeIncomeCollect = "income_collect"
	TxTypeCheckin       = "checkin"
	TxTypeSpin          = "spin"
	TxTypeReward        = "reward"
	TxTypeCommission    = "commission"
	TxTypeBonus         = "bonus"
)

// BalanceType names the account balance a transaction affects
type BalanceType string

const (
	BalanceRecharge      BalanceType = "recharge"
	BalanceWithdrawal    BalanceType = "withdrawal"
	BalanceProductIncome BalanceType = "product_income"
)

// Column returns the accounts column backing the balance type
func (b BalanceType) Column() (string, bool) {
	switch b {
	case BalanceRecharge:
		return "recharge_balance", true
	case BalanceWithdrawal:
		return "withdrawal_balance", true
	case BalanceProductIncome:
		return "product_income", true
	}
	return "", false
}

// Transaction is an append-only ledger entry. Amount is signed.
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	AccountID   uint            `gorm:"not null;index" json:"account_id"`
	Type        string          `gorm:"size:30;not null;index" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	BalanceType BalanceType     `gorm:"size:20;not null;index" json:"balance_type"`
	Status      string          `gorm:"size:20" json:"status,omitempty"`
	Description string          `gorm:"type:text" json:"description"`
	Reference   *string         `gorm:"size:64;index" json:"reference,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topic suffixes, prefixed with EVENTS_TOPIC_PREFIX
const (
	TopicWithdrawalCreated = "withdrawals.created"
	TopicWithdrawalUpdated = "withdrawals.updated"
	TopicPurchaseCreated   = "purchases.created"
	TopicAccrualCompleted  = "accrual.completed"
)

// Topic joins the configured prefix and a topic suffix
func Topic(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// WithdrawalEvent is emitted on creation and on every status change
type WithdrawalEvent struct {
	WithdrawalID uint            `json:"withdrawal_id"`
	AccountID    uint            `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	FinalAmount  decimal.Decimal `json:"final_amount"`
	Status       string          `json:"status"`
	ReferenceNo  string          `json:"reference_no"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// PurchaseEvent is emitted once per purchase
type PurchaseEvent struct {
	AccountID  uint            `json:"account_id"`
	ProductID  uint            `json:"product_id"`
	Quantity   int             `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// AccrualEvent summarizes one daily accrual run
type AccrualEvent struct {
	Date       string    `json:"date"`
	Processed  int       `json:"processed"`
	Credited   int       `json:"credited"`
	Failed     int       `json:"failed"`
	Expired    int64     `json:"expired"`
	OccurredAt time.Time `json:"occurred_at"`
}

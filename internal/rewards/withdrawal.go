package rewards

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrBelowMinimum  = errors.New("amount is below the minimum")
	ErrAboveMaximum  = errors.New("amount is above the maximum")
	ErrInvalidAmount = errors.New("invalid amount")
)

// IsCents reports whether d has no more than two decimal places. Balances
// are stored as decimal(18,2), so finer amounts would round differently in
// the balance column and the ledger row.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// WithdrawalPolicy bounds withdrawals and sets the tax rate
type WithdrawalPolicy struct {
	Min     decimal.Decimal
	Max     decimal.Decimal
	TaxRate decimal.Decimal
}

// DefaultWithdrawalPolicy is 106..100000 with a flat 5% tax
func DefaultWithdrawalPolicy() WithdrawalPolicy {
	return WithdrawalPolicy{
		Min:     decimal.NewFromInt(106),
		Max:     decimal.NewFromInt(100000),
		TaxRate: decimal.NewFromFloat(0.05),
	}
}

// WithdrawalQuote splits a requested amount into tax and payout
type WithdrawalQuote struct {
	Amount      decimal.Decimal `json:"amount"`
	Tax         decimal.Decimal `json:"tax"`
	FinalAmount decimal.Decimal `json:"final_amount"`
}

// QuoteWithdrawal validates the bounds and computes
// final = round(amount * (1 - rate), 2) and tax = amount - final, so tax and
// final always add up to amount.
func QuoteWithdrawal(amount decimal.Decimal, policy WithdrawalPolicy) (WithdrawalQuote, error) {
	if !IsCents(amount) {
		return WithdrawalQuote{}, ErrInvalidAmount
	}
	if amount.LessThan(policy.Min) {
		return WithdrawalQuote{}, ErrBelowMinimum
	}
	if policy.Max.IsPositive() && amount.GreaterThan(policy.Max) {
		return WithdrawalQuote{}, ErrAboveMaximum
	}

	final := amount.Mul(decimal.NewFromInt(1).Sub(policy.TaxRate)).Round(2)
	return WithdrawalQuote{
		Amount:      amount,
		Tax:         amount.Sub(final),
		FinalAmount: final,
	}, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seedworks/internal/models"
)

// Entry describes one balance change
type Entry struct {
	AccountID   uint
	Type        string
	Balance     models.BalanceType
	Amount      decimal.Decimal // signed
	Status      string
	Description string
	Reference   *string
}

// Post applies an entry: a conditional single-row balance update followed
// by the ledger row, both in one database transaction. Debits only succeed
// while the balance covers them.
func (r *Repository) Post(ctx context.Context, e Entry) (*models.Transaction, error) {
	column, ok := e.Balance.Column()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBalance, e.Balance)
	}
	if e.Amount.IsZero() || !e.Amount.Equal(e.Amount.Round(2)) {
		return nil, ErrInvalidAmount
	}
	if e.Status == "" {
		e.Status = "success"
	}

	var txRow *models.Transaction
	err := r.Transaction(ctx, func(tx *Repository) error {
		updates := map[string]interface{}{
			column: gorm.Expr(column+" + ?", e.Amount),
		}
		switch e.Type {
		case models.TxTypeRecharge:
			updates["total_recharge"] = gorm.Expr("total_recharge + ?", e.Amount)
		case models.TxTypeCommission:
			updates["total_commission"] = gorm.Expr("total_commission + ?", e.Amount)
		}

		query := tx.db.Model(&models.Account{}).Where("id = ?", e.AccountID)
		if e.Amount.IsNegative() {
			query = query.Where(column+" >= ?", e.Amount.Neg())
		}

		result := query.Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update %s: %w", column, result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.db.Model(&models.Account{}).Where("id = ?", e.AccountID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrAccountNotFound
			}
			return ErrInsufficientBalance
		}

		txRow = &models.Transaction{
			AccountID:   e.AccountID,
			Type:        e.Type,
			Amount:      e.Amount,
			BalanceType: e.Balance,
			Status:      e.Status,
			Description: e.Description,
			Reference:   e.Reference,
		}
		if err := tx.db.Create(txRow).Error; err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txRow, nil
}

// TransactionFilter narrows ListTransactions
type TransactionFilter struct {
	AccountID   uint
	Type        string
	BalanceType models.BalanceType
	Page
}

// ListTransactions returns ledger rows newest first with the total count
func (r *Repository) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if f.AccountID != 0 {
		query = query.Where("account_id = ?", f.AccountID)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.BalanceType != "" {
		query = query.Where("balance_type = ?", f.BalanceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.normalize()
	var rows []models.Transaction
	err := query.Order("created_at DESC, id DESC").Limit(page.Limit).Offset(page.Offset).Find(&rows).Error
	return rows, total, err
}

// Drift is a mismatch between a stored balance and its ledger sum
type Drift struct {
	AccountID uint            `json:"account_id"`
	Field     string          `json:"field"`
	Stored    decimal.Decimal `json:"stored"`
	Ledger    decimal.Decimal `json:"ledger"`
}

type ledgerSum struct {
	AccountID   uint
	BalanceType string
	Total       decimal.Decimal
}

var reconciledFields = []string{
	"recharge_balance",
	"withdrawal_balance",
	"product_income",
	"total_recharge",
	"total_commission",
}

// Reconcile recomputes every balance from the ledger and reports drift
func (r *Repository) Reconcile(ctx context.Context) ([]Drift, error) {
	db := r.db.WithContext(ctx)

	var sums []ledgerSum
	if err := db.Model(&models.Transaction{}).
		Select("account_id, balance_type, COALESCE(SUM(amount), 0) AS total").
		Group("account_id, balance_type").
		Scan(&sums).Error; err != nil {
		return nil, fmt.Errorf("failed to sum ledger: %w", err)
	}

	// cumulative totals are sums of one transaction type
	typeSums := make(map[string][]ledgerSum)
	for field, txType := range map[string]string{
		"total_recharge":   models.TxTypeRecharge,
		"total_commission": models.TxTypeCommission,
	} {
		var rows []ledgerSum
		if err := db.Model(&models.Transaction{}).
			Select("account_id, COALESCE(SUM(amount), 0) AS total").
			Where("type = ?", txType).
			Group("account_id").
			Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to sum %s: %w", txType, err)
		}
		typeSums[field] = rows
	}

	expected := make(map[uint]map[string]decimal.Decimal)
	set := func(id uint, field string, v decimal.Decimal) {
		if expected[id] == nil {
			expected[id] = make(map[string]decimal.Decimal)
		}
		expected[id][field] = v
	}
	for _, s := range sums {
		column, ok := models.BalanceType(s.BalanceType).Column()
		if !ok {
			continue
		}
		set(s.AccountID, column, s.Total.Round(2))
	}
	for field, rows := range typeSums {
		for _, s := range rows {
			set(s.AccountID, field, s.Total.Round(2))
		}
	}

	var drifts []Drift
	var batch []models.Account
	err := db.Model(&models.Account{}).
		Select("id, recharge_balance, withdrawal_balance, product_income, total_recharge, total_commission").
		FindInBatches(&batch, 500, func(tx *gorm.DB, _ int) error {
			for _, acc := range batch {
				stored := map[string]decimal.Decimal{
					"recharge_balance":   acc.RechargeBalance,
					"withdrawal_balance": acc.WithdrawalBalance,
					"product_income":     acc.ProductIncome,
					"total_recharge":     acc.TotalRecharge,
					"total_commission":   acc.TotalCommission,
				}
				for _, field := range reconciledFields {
					ledger := expected[acc.ID][field]
					if !stored[field].Equal(ledger) {
						drifts = append(drifts, Drift{AccountID: acc.ID, Field: field, Stored: stored[field], Ledger: ledger})
					}
				}
			}
			return nil
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", err)
	}

	return drifts, nil
}

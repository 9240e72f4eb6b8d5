package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"seedworks/internal/models"
	"seedworks/internal/repository"
)

func TestReviewWithdrawalTransitions(t *testing.T) {
	env := setupTestEnv(t)
	wallet := NewWalletService(env.repo, env.locker, env.cfg)
	admin := NewAdminService(env.repo, env.locker, env.cfg)
	ctx := context.Background()

	reviewer := env.newAccount(t, 1, nil)
	acc := env.newAccount(t, 2, nil)
	env.credit(t, acc.ID, models.TxTypeBonus, models.BalanceWithdrawal, 1000)
	env.setupWithdrawer(t, acc.ID, "123456")

	req, err := wallet.Withdraw(ctx, acc.ID, decimal.NewFromInt(400), "123456")
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	if _, err := admin.ReviewWithdrawal(ctx, reviewer.ID, req.ID, "paid", ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus for unknown status, got %v", err)
	}

	processing, err := admin.ReviewWithdrawal(ctx, reviewer.ID, req.ID, models.RequestStatusProcessing, "")
	if err != nil {
		t.Fatalf("to processing: %v", err)
	}
	if processing.Status != models.RequestStatusProcessing {
		t.Errorf("expected processing, got %q", processing.Status)
	}
	if _, err := admin.ReviewWithdrawal(ctx, reviewer.ID, req.ID, models.RequestStatusProcessing, ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus for processing twice, got %v", err)
	}

	rejected, err := admin.ReviewWithdrawal(ctx, reviewer.ID, req.ID, models.RequestStatusRejected, "wrong IFSC")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Note != "wrong IFSC" || rejected.ReviewedBy == nil || *rejected.ReviewedBy != reviewer.ID {
		t.Errorf("review fields not stored: %+v", rejected)
	}
	assertDecimal(t, "refunded balance", env.account(t, acc.ID).WithdrawalBalance, "1000")

	if _, err := admin.ReviewWithdrawal(ctx, reviewer.ID, req.ID, models.RequestStatusSuccess, ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus after rejection, got %v", err)
	}
	if _, err := admin.ReviewWithdrawal(ctx, reviewer.ID, req.ID, models.RequestStatusRejected, ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus for double rejection, got %v", err)
	}
	assertDecimal(t, "balance after repeats", env.account(t, acc.ID).WithdrawalBalance, "1000")

	refunds, _, err := env.repo.ListTransactions(ctx, repository.TransactionFilter{AccountID: acc.ID, Type: models.TxTypeRefund})
	if err != nil || len(refunds) != 1 {
		t.Errorf("expected one refund, got %d (%v)", len(refunds), err)
	}

	// a rejected request does not count against the daily limit
	if _, err := wallet.Withdraw(ctx, acc.ID, decimal.NewFromInt(400), "123456"); err != nil {
		t.Errorf("withdraw after rejection: %v", err)
	}

	logs, err := admin.ListLogs(ctx, repository.Page{})
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("expected 2 admin logs, got %d", len(logs))
	}
}

func TestReviewWithdrawalSuccessKeepsBalance(t *testing.T) {
	env := setupTestEnv(t)
	wallet := NewWalletService(env.repo, env.locker, env.cfg)
	admin := NewAdminService(env.repo, env.locker, env.cfg)
	ctx := context.Background()

	reviewer := env.newAccount(t, 1, nil)
	acc := env.newAccount(t, 2, nil)
	env.credit(t, acc.ID, models.TxTypeBonus, models.BalanceWithdrawal, 500)
	env.setupWithdrawer(t, acc.ID, "123456")

	req, err := wallet.Withdraw(ctx, acc.ID, decimal.NewFromInt(500), "123456")
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if _, err := admin.ReviewWithdrawal(ctx, reviewer.ID, req.ID, models.RequestStatusSuccess, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	assertDecimal(t, "withdrawal balance", env.account(t, acc.ID).WithdrawalBalance, "0")

	drifts, err := admin.Reconcile(ctx, reviewer.ID)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(drifts) != 0 {
		t.Errorf("expected no drift, got %+v", drifts)
	}
}

func TestAdminRolesAndBonus(t *testing.T) {
	env := setupTestEnv(t)
	admin := NewAdminService(env.repo, env.locker, env.cfg)
	ctx := context.Background()

	boss := env.newAccount(t, 1, nil)
	user := env.newAccount(t, 2, nil)

	if err := env.repo.GrantRole(ctx, boss.ID, models.RoleAdmin); err != nil {
		t.Fatalf("GrantRole: %v", err)
	}
	if ok, err := admin.IsAdmin(ctx, boss.ID); err != nil || !ok {
		t.Fatalf("expected boss to be admin (%v)", err)
	}

	if err := admin.SetAdmin(ctx, boss.ID, user.ID, true); err != nil {
		t.Fatalf("SetAdmin grant: %v", err)
	}
	if ok, _ := admin.IsAdmin(ctx, user.ID); !ok {
		t.Error("expected user to be admin")
	}
	if err := admin.SetAdmin(ctx, boss.ID, user.ID, false); err != nil {
		t.Fatalf("SetAdmin revoke: %v", err)
	}
	if ok, _ := admin.IsAdmin(ctx, user.ID); ok {
		t.Error("expected role to be revoked")
	}

	if _, err := admin.GrantBonus(ctx, boss.ID, user.Mobile, decimal.Zero, models.BalanceRecharge, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := admin.GrantBonus(ctx, boss.ID, user.Mobile, decimal.RequireFromString("0.001"), models.BalanceRecharge, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for a sub-cent bonus, got %v", err)
	}
	if _, err := admin.GrantBonus(ctx, boss.ID, "9000000000", decimal.NewFromInt(5), models.BalanceRecharge, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	tx, err := admin.GrantBonus(ctx, boss.ID, user.Mobile, decimal.NewFromInt(50), models.BalanceWithdrawal, "Diwali bonus")
	if err != nil {
		t.Fatalf("GrantBonus: %v", err)
	}
	if tx.Type != models.TxTypeBonus || tx.Description != "Diwali bonus" {
		t.Errorf("unexpected transaction %+v", tx)
	}
	assertDecimal(t, "withdrawal balance", env.account(t, user.ID).WithdrawalBalance, "50")

	if err := admin.ResetTradePassword(ctx, boss.ID, user.ID); err != nil {
		t.Fatalf("ResetTradePassword: %v", err)
	}
	if env.account(t, user.ID).HasTradePassword() {
		t.Error("expected trade password to be cleared")
	}

	logs, err := admin.ListLogs(ctx, repository.Page{})
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 4 {
		t.Errorf("expected 4 admin logs, got %d", len(logs))
	}
}

func TestSupportReply(t *testing.T) {
	env := setupTestEnv(t)
	accounts := NewAccountService(env.repo, env.locker, env.cfg)
	admin := NewAdminService(env.repo, env.locker, env.cfg)
	ctx := context.Background()

	user := env.newAccount(t, 1, nil)
	boss := env.newAccount(t, 2, nil)

	msg, err := accounts.SubmitSupportMessage(ctx, user.ID, "where is my money?")
	if err != nil {
		t.Fatalf("SubmitSupportMessage: %v", err)
	}

	open, err := admin.ListSupportMessages(ctx, models.SupportStatusOpen, repository.Page{})
	if err != nil || len(open) != 1 {
		t.Fatalf("expected one open message, got %d (%v)", len(open), err)
	}

	if err := admin.ReplySupportMessage(ctx, boss.ID, msg.ID, "processed today"); err != nil {
		t.Fatalf("ReplySupportMessage: %v", err)
	}
	if err := admin.ReplySupportMessage(ctx, boss.ID, 9999, "hello"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	mine, err := accounts.ListSupportMessages(ctx, user.ID, repository.Page{})
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected one message, got %d (%v)", len(mine), err)
	}
	if mine[0].Status != models.SupportStatusAnswered || mine[0].Reply == nil || *mine[0].Reply != "processed today" {
		t.Errorf("unexpected message %+v", mine[0])
	}
}

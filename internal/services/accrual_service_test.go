package services

import (
	"context"
	"testing"
	"time"

	"seedworks/internal/models"
	"seedworks/internal/repository"
)

func TestRunDailyIsIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAccrualService(env.repo, env.locker, env.cfg)
	ctx := context.Background()

	acc := env.newAccount(t, 1, nil)
	product := env.newProduct(t, models.ProductCategoryStable, 1, 390, 25, 30)
	env.own(t, acc.ID, product)
	env.own(t, acc.ID, product)

	first, err := svc.RunDaily(ctx)
	if err != nil {
		t.Fatalf("RunDaily: %v", err)
	}
	if first.Processed != 2 || first.Credited != 2 || first.Failed != 0 {
		t.Errorf("unexpected first run %+v", first)
	}
	assertDecimal(t, "product income", env.account(t, acc.ID).ProductIncome, "50")

	second, err := svc.RunDaily(ctx)
	if err != nil {
		t.Fatalf("second RunDaily: %v", err)
	}
	if second.Credited != 0 {
		t.Errorf("second run credited %d", second.Credited)
	}
	assertDecimal(t, "product income after rerun", env.account(t, acc.ID).ProductIncome, "50")

	orders, err := env.repo.ListOwnerships(ctx, acc.ID, true)
	if err != nil {
		t.Fatalf("ListOwnerships: %v", err)
	}
	for _, o := range orders {
		if o.DaysRemaining != 29 || o.LastAccruedDate == nil || *o.LastAccruedDate != first.Date {
			t.Errorf("unexpected ownership %+v", o)
		}
	}
}

func TestRunDailyExpiresLastDay(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAccrualService(env.repo, env.locker, env.cfg)
	ctx := context.Background()

	acc := env.newAccount(t, 1, nil)
	env.own(t, acc.ID, env.newProduct(t, models.ProductCategoryActivity, 0, 50, 8, 1))

	res, err := svc.RunDaily(ctx)
	if err != nil {
		t.Fatalf("RunDaily: %v", err)
	}
	if res.Credited != 1 {
		t.Errorf("expected the last day to be credited, got %+v", res)
	}
	active, err := env.repo.ListOwnerships(ctx, acc.ID, true)
	if err != nil || len(active) != 0 {
		t.Errorf("expected no active ownerships, got %d (%v)", len(active), err)
	}

	svc.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	res, err = svc.RunDaily(ctx)
	if err != nil {
		t.Fatalf("next day RunDaily: %v", err)
	}
	if res.Processed != 0 {
		t.Errorf("expected nothing to process, got %+v", res)
	}
	assertDecimal(t, "product income", env.account(t, acc.ID).ProductIncome, "8")
}

func TestRunDailyCountsFailures(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAccrualService(env.repo, env.locker, env.cfg)
	ctx := context.Background()

	acc := env.newAccount(t, 1, nil)
	product := env.newProduct(t, models.ProductCategoryStable, 1, 390, 25, 30)
	env.own(t, acc.ID, product)
	// ownership of an account that does not exist
	env.own(t, 9999, product)

	res, err := svc.RunDaily(ctx)
	if err != nil {
		t.Fatalf("RunDaily: %v", err)
	}
	if res.Processed != 2 || res.Credited != 1 || res.Failed != 1 {
		t.Errorf("unexpected result %+v", res)
	}

	txs, _, err := env.repo.ListTransactions(ctx, repository.TransactionFilter{AccountID: acc.ID, Type: models.TxTypeProductIncome})
	if err != nil || len(txs) != 1 {
		t.Errorf("expected one income row, got %d (%v)", len(txs), err)
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"seedworks/internal/models"
	"seedworks/internal/repository"
)

func TestCheckinOncePerDay(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRewardService(env.repo, env.locker, env.cfg, NewResolver(env.repo))
	ctx := context.Background()

	acc := env.newAccount(t, 1, nil)
	env.own(t, acc.ID, env.newProduct(t, models.ProductCategoryStable, 2, 4770, 100, 30))

	res, err := svc.Checkin(ctx, acc.ID)
	if err != nil {
		t.Fatalf("Checkin: %v", err)
	}
	if res.VIPLevel != 2 {
		t.Errorf("expected level 2, got %d", res.VIPLevel)
	}
	assertDecimal(t, "reward", res.Reward, "20")

	if _, err := svc.Checkin(ctx, acc.ID); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Errorf("expected ErrAlreadyCheckedIn, got %v", err)
	}
	assertDecimal(t, "withdrawal balance", env.account(t, acc.ID).WithdrawalBalance, "20")

	// the next business day is allowed again
	svc.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	if _, err := svc.Checkin(ctx, acc.ID); err != nil {
		t.Errorf("next day Checkin: %v", err)
	}
	assertDecimal(t, "withdrawal balance next day", env.account(t, acc.ID).WithdrawalBalance, "40")
}

func TestCheckinWithoutProductsStampsDay(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRewardService(env.repo, env.locker, env.cfg, NewResolver(env.repo))
	ctx := context.Background()
	acc := env.newAccount(t, 1, nil)

	res, err := svc.Checkin(ctx, acc.ID)
	if err != nil {
		t.Fatalf("Checkin: %v", err)
	}
	if !res.Reward.IsZero() {
		t.Errorf("expected zero reward, got %s", res.Reward)
	}
	if _, err := svc.Checkin(ctx, acc.ID); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Errorf("expected ErrAlreadyCheckedIn, got %v", err)
	}
	_, total, err := env.repo.ListTransactions(ctx, repository.TransactionFilter{AccountID: acc.ID})
	if err != nil || total != 0 {
		t.Errorf("expected no ledger rows, got %d (%v)", total, err)
	}
}

func TestSpinConsumesChance(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRewardService(env.repo, env.locker, env.cfg, NewResolver(env.repo))
	ctx := context.Background()
	acc := env.newAccount(t, 1, nil)

	if _, err := svc.Spin(ctx, acc.ID); !errors.Is(err, ErrNoSpinChances) {
		t.Fatalf("expected ErrNoSpinChances, got %v", err)
	}

	if err := env.repo.AddSpinChances(ctx, acc.ID, 1); err != nil {
		t.Fatalf("AddSpinChances: %v", err)
	}
	prize, err := svc.Spin(ctx, acc.ID)
	if err != nil {
		t.Fatalf("Spin: %v", err)
	}
	assertDecimal(t, "prize", prize.Amount, "10")

	got := env.account(t, acc.ID)
	if got.SpinChances != 0 {
		t.Errorf("expected chances to be consumed, got %d", got.SpinChances)
	}
	assertDecimal(t, "withdrawal balance", got.WithdrawalBalance, "10")

	prizes, err := svc.ListPrizes(ctx, acc.ID, repository.Page{})
	if err != nil || len(prizes) != 1 {
		t.Errorf("expected one prize, got %d (%v)", len(prizes), err)
	}
}

func TestClaimTask(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRewardService(env.repo, env.locker, env.cfg, NewResolver(env.repo))
	ctx := context.Background()

	root := env.newAccount(t, 1, nil)
	stable := env.newProduct(t, models.ProductCategoryStable, 1, 390, 25, 30)
	activity := env.newProduct(t, models.ProductCategoryActivity, 0, 50, 2, 5)

	for i := 0; i < 3; i++ {
		child := env.newAccount(t, 10+i, root)
		if i < 2 {
			env.own(t, child.ID, stable)
		} else {
			// activity products do not make a referral active
			env.own(t, child.ID, activity)
		}
	}

	if _, err := svc.ClaimTask(ctx, root.ID, "task_3"); !errors.Is(err, ErrTaskLocked) {
		t.Fatalf("expected ErrTaskLocked, got %v", err)
	}
	if _, err := svc.ClaimTask(ctx, root.ID, "task_x"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	third := env.newAccount(t, 20, root)
	env.own(t, third.ID, stable)

	claim, err := svc.ClaimTask(ctx, root.ID, "task_3")
	if err != nil {
		t.Fatalf("ClaimTask: %v", err)
	}
	assertDecimal(t, "reward", claim.Reward, "200")
	if _, err := svc.ClaimTask(ctx, root.ID, "task_3"); !errors.Is(err, ErrTaskClaimed) {
		t.Errorf("expected ErrTaskClaimed, got %v", err)
	}

	if _, err := svc.ClaimTask(ctx, root.ID, "daily_1"); err != nil {
		t.Fatalf("daily claim: %v", err)
	}
	if _, err := svc.ClaimTask(ctx, root.ID, "daily_1"); !errors.Is(err, ErrTaskClaimed) {
		t.Errorf("expected ErrTaskClaimed for same day, got %v", err)
	}

	assertDecimal(t, "withdrawal balance", env.account(t, root.ID).WithdrawalBalance, "220")

	board, err := svc.ListTasks(ctx, root.ID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if board.ActiveReferrals != 3 {
		t.Errorf("expected 3 active referrals, got %d", board.ActiveReferrals)
	}
	for _, task := range board.Tasks {
		wantClaimed := task.ID == "task_3" || task.ID == "daily_1"
		if task.Claimed != wantClaimed {
			t.Errorf("task %s claimed=%v", task.ID, task.Claimed)
		}
	}
}

func TestPublishBlogRequiresWithdrawal(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRewardService(env.repo, env.locker, env.cfg, NewResolver(env.repo))
	svc.intn = func(n int) int { return n - 1 }
	ctx := context.Background()
	acc := env.newAccount(t, 1, nil)

	if _, err := svc.PublishBlog(ctx, acc.ID, BlogInput{Content: "great"}); !errors.Is(err, ErrWithdrawalRequired) {
		t.Fatalf("expected ErrWithdrawalRequired, got %v", err)
	}

	w := &models.WithdrawalRequest{
		AccountID:   acc.ID,
		Amount:      decimal.NewFromInt(150),
		Tax:         decimal.RequireFromString("7.50"),
		FinalAmount: decimal.RequireFromString("142.50"),
		Status:      models.RequestStatusSuccess,
		ReferenceNo: "WDtest",
	}
	if err := env.repo.CreateWithdrawal(ctx, w); err != nil {
		t.Fatalf("CreateWithdrawal: %v", err)
	}

	post, err := svc.PublishBlog(ctx, acc.ID, BlogInput{Content: "paid out"})
	if err != nil {
		t.Fatalf("PublishBlog: %v", err)
	}
	assertDecimal(t, "reward", post.RewardAmount, "25")
	assertDecimal(t, "withdrawal balance", env.account(t, acc.ID).WithdrawalBalance, "25")

	if _, err := svc.PublishBlog(ctx, acc.ID, BlogInput{Content: "again"}); !errors.Is(err, ErrBlogRewarded) {
		t.Errorf("expected ErrBlogRewarded, got %v", err)
	}
}

func TestCollectIncome(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRewardService(env.repo, env.locker, env.cfg, NewResolver(env.repo))
	ctx := context.Background()
	acc := env.newAccount(t, 1, nil)

	if _, err := svc.CollectIncome(ctx, acc.ID); !errors.Is(err, ErrNothingToCollect) {
		t.Fatalf("expected ErrNothingToCollect, got %v", err)
	}

	env.credit(t, acc.ID, models.TxTypeProductIncome, models.BalanceProductIncome, 75)
	collected, err := svc.CollectIncome(ctx, acc.ID)
	if err != nil {
		t.Fatalf("CollectIncome: %v", err)
	}
	assertDecimal(t, "collected", collected, "75")

	got := env.account(t, acc.ID)
	assertDecimal(t, "product income", got.ProductIncome, "0")
	assertDecimal(t, "withdrawal balance", got.WithdrawalBalance, "75")

	drifts, err := env.repo.Reconcile(ctx)
	if err != nil || len(drifts) != 0 {
		t.Errorf("expected a consistent ledger, got %v (%v)", drifts, err)
	}
}

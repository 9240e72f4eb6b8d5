package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"seedworks/internal/auth"
	"seedworks/internal/config"
	"seedworks/internal/database"
	"seedworks/internal/lock"
	"seedworks/internal/models"
	"seedworks/internal/repository"
	"seedworks/internal/rewards"
)

type testEnv struct {
	repo   *repository.Repository
	locker lock.Locker
	cfg    *config.Config
}

func testConfig() *config.Config {
	spin, err := rewards.ParseSpinDistribution("10:1")
	if err != nil {
		panic(err)
	}
	return &config.Config{
		App: config.AppConfig{
			JWTSecret:        "test-secret",
			Location:         time.UTC,
			RegisterReward:   decimal.NewFromInt(20),
			RechargeMin:      decimal.NewFromInt(390),
			SpinsPerRecharge: 1,
		},
		Rewards: config.RewardsConfig{
			Checkin: rewards.DefaultCheckinTable(),
			Spin:    spin,
			Wheel:   rewards.DefaultWheel,
			CommissionRates: []decimal.Decimal{
				decimal.RequireFromString("0.07"),
				decimal.RequireFromString("0.05"),
				decimal.RequireFromString("0.03"),
			},
			ReferralDepth: 3,
		},
		Withdrawal: rewards.DefaultWithdrawalPolicy(),
		Events:     config.EventsConfig{Provider: "none", TopicPrefix: "test"},
	}
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	bcryptCost = bcrypt.MinCost
	auth.InitJWT("test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return &testEnv{
		repo:   repository.NewRepository(db),
		locker: lock.NewLocalLocker(),
		cfg:    testConfig(),
	}
}

// newAccount inserts an account directly, optionally invited by inviter
func (e *testEnv) newAccount(t *testing.T, n int, inviter *models.Account) *models.Account {
	t.Helper()
	account := &models.Account{
		Mobile:       fmt.Sprintf("98765%05d", n),
		PasswordHash: "x",
		InviteCode:   fmt.Sprintf("INV%03d", n),
	}
	if inviter != nil {
		code := inviter.InviteCode
		account.InvitedBy = &code
	}
	if err := e.repo.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return account
}

func (e *testEnv) credit(t *testing.T, accountID uint, txType string, balance models.BalanceType, amount int64) {
	t.Helper()
	if _, err := e.repo.Post(context.Background(), repository.Entry{
		AccountID: accountID,
		Type:      txType,
		Balance:   balance,
		Amount:    decimal.NewFromInt(amount),
	}); err != nil {
		t.Fatalf("failed to credit account %d: %v", accountID, err)
	}
}

func (e *testEnv) account(t *testing.T, id uint) *models.Account {
	t.Helper()
	account, err := e.repo.GetAccountByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load account %d: %v", id, err)
	}
	return account
}

func (e *testEnv) newProduct(t *testing.T, category models.ProductCategory, level int, price, daily int64, days int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:         fmt.Sprintf("%s-%d-%d", category, level, price),
		Category:     category,
		VIPLevel:     level,
		Price:        decimal.NewFromInt(price),
		DailyEarning: decimal.NewFromInt(daily),
		RevenueDays:  days,
		IsActive:     true,
	}
	if err := e.repo.CreateProduct(context.Background(), product); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

// own gives an account an active ownership without a purchase
func (e *testEnv) own(t *testing.T, accountID uint, product *models.Product) *models.UserProduct {
	t.Helper()
	ownership := models.UserProduct{
		AccountID:     accountID,
		ProductID:     product.ID,
		PurchasePrice: product.Price,
		DailyEarning:  product.DailyEarning,
		DaysRemaining: product.RevenueDays,
		ExpiryDate:    time.Now().UTC().AddDate(0, 0, product.RevenueDays),
		IsActive:      true,
	}
	rows := []models.UserProduct{ownership}
	if err := e.repo.CreateOwnerships(context.Background(), rows); err != nil {
		t.Fatalf("failed to create ownership: %v", err)
	}
	return &rows[0]
}

func (e *testEnv) setupWithdrawer(t *testing.T, accountID uint, password string) {
	t.Helper()
	ctx := context.Background()
	accounts := NewAccountService(e.repo, e.locker, e.cfg)
	if _, err := accounts.SaveBankCard(ctx, accountID, BankCardInput{
		HolderName:    "Test User",
		BankName:      "State Bank",
		AccountNumber: "000111222333",
		IFSC:          "sbin0001234",
	}); err != nil {
		t.Fatalf("SaveBankCard: %v", err)
	}
	if err := accounts.SetTradePassword(ctx, accountID, "", password); err != nil {
		t.Fatalf("SetTradePassword: %v", err)
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", name, want, got)
	}
}

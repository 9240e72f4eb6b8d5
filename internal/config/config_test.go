package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("driver = %s, want postgres", cfg.Database.Driver)
	}
	if cfg.App.Location.String() != "Asia/Kolkata" {
		t.Errorf("location = %s", cfg.App.Location)
	}
	if !cfg.Withdrawal.Min.Equal(decimal.NewFromInt(106)) || !cfg.Withdrawal.Max.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("withdrawal bounds = %s..%s", cfg.Withdrawal.Min, cfg.Withdrawal.Max)
	}
	if len(cfg.Rewards.CommissionRates) != 3 {
		t.Errorf("commission rates = %v", cfg.Rewards.CommissionRates)
	}
	if len(cfg.Rewards.Wheel) != 8 {
		t.Errorf("wheel = %v", cfg.Rewards.Wheel)
	}
	if !cfg.Rewards.Checkin[2].Equal(decimal.NewFromInt(20)) {
		t.Errorf("checkin level 2 = %s", cfg.Rewards.Checkin[2])
	}
	if cfg.Server.RequestTimeout != 10*time.Second {
		t.Errorf("request timeout = %s", cfg.Server.RequestTimeout)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis should be disabled by default")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"DB_DRIVER":         "oracle",
		"EVENTS_PROVIDER":   "carrier-pigeon",
		"SPIN_DISTRIBUTION": "10:0",
		"REFERRAL_DEPTH":    "9",
		"WITHDRAW_TAX_RATE": "1.5",
		"TIMEZONE":          "Mars/Olympus",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Driver: "mysql", Host: "db", Port: "3306", User: "u", Password: "p", DBName: "seed",
	}}
	if got := cfg.GetDSN(); got != "u:p@tcp(db:3306)/seed?charset=utf8mb4&parseTime=True&loc=UTC" {
		t.Errorf("mysql dsn = %s", got)
	}

	cfg.Database.DSN = "override"
	if got := cfg.GetDSN(); got != "override" {
		t.Errorf("dsn override = %s", got)
	}
}

func TestToday(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	cfg := &Config{App: AppConfig{Location: loc}}

	// 20:00 UTC is already the next day in India
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	if got := cfg.Today(now); got != "2026-03-02" {
		t.Errorf("Today = %s, want 2026-03-02", got)
	}
}

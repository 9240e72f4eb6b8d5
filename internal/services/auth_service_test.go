package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"seedworks/internal/auth"
	"seedworks/internal/models"
	"seedworks/internal/repository"
)

func TestRegisterCreditsReward(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAuthService(env.repo, env.locker, env.cfg)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Mobile: "9876543210", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(res.Account.InviteCode) != 6 {
		t.Errorf("expected 6-char invite code, got %q", res.Account.InviteCode)
	}
	assertDecimal(t, "recharge balance", res.Account.RechargeBalance, "20")

	claims, err := auth.ValidateToken(res.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.AccountID != res.Account.ID {
		t.Errorf("token for %d, want %d", claims.AccountID, res.Account.ID)
	}

	txs, total, err := env.repo.ListTransactions(ctx, repository.TransactionFilter{AccountID: res.Account.ID})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if total != 1 || txs[0].Type != models.TxTypeRegister {
		t.Errorf("expected one register transaction, got %+v", txs)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAuthService(env.repo, env.locker, env.cfg)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Mobile: "9000000001", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"short mobile", RegisterInput{Mobile: "98765", Password: "secret1"}, ErrInvalidMobile},
		{"bad prefix", RegisterInput{Mobile: "1234567890", Password: "secret1"}, ErrInvalidMobile},
		{"weak password", RegisterInput{Mobile: "9000000002", Password: "12345"}, ErrWeakPassword},
		{"taken", RegisterInput{Mobile: "9000000001", Password: "secret1"}, ErrMobileTaken},
		{"unknown invite", RegisterInput{Mobile: "9000000003", Password: "secret1", InviteCode: "NOPE00"}, ErrInvalidInviteCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRegisterWithInviteAndLogin(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAuthService(env.repo, env.locker, env.cfg)
	ctx := context.Background()

	parent, err := svc.Register(ctx, RegisterInput{Mobile: "9000000001", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register parent: %v", err)
	}

	// invite codes are case-insensitive on input
	child, err := svc.Register(ctx, RegisterInput{
		Mobile:     "9000000002",
		Password:   "secret2",
		InviteCode: "  " + strings.ToLower(parent.Account.InviteCode),
	})
	if err != nil {
		t.Fatalf("Register child: %v", err)
	}
	if child.Account.InvitedBy == nil || *child.Account.InvitedBy != parent.Account.InviteCode {
		t.Errorf("expected invited_by %s, got %v", parent.Account.InviteCode, child.Account.InvitedBy)
	}

	if _, err := svc.Login(ctx, "9000000002", "wrong!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "9000000099", "secret2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown mobile, got %v", err)
	}
	res, err := svc.Login(ctx, "9000000002", "secret2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Account.ID != child.Account.ID {
		t.Errorf("logged into %d, want %d", res.Account.ID, child.Account.ID)
	}
}

func TestTradePasswordChange(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAccountService(env.repo, env.locker, env.cfg)
	ctx := context.Background()
	acc := env.newAccount(t, 1, nil)

	if err := svc.SetTradePassword(ctx, acc.ID, "", "123456"); err != nil {
		t.Fatalf("first SetTradePassword: %v", err)
	}
	if err := svc.SetTradePassword(ctx, acc.ID, "000000", "654321"); !errors.Is(err, ErrInvalidTradePassword) {
		t.Errorf("expected ErrInvalidTradePassword, got %v", err)
	}
	if err := svc.SetTradePassword(ctx, acc.ID, "123456", "654321"); err != nil {
		t.Errorf("change with correct password: %v", err)
	}

	profile, err := svc.GetProfile(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if !profile.HasTradePassword || profile.VIPLevel != 0 {
		t.Errorf("unexpected profile %+v", profile)
	}
}

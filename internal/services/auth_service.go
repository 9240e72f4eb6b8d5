package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"seedworks/internal/auth"
	"seedworks/internal/config"
	"seedworks/internal/database"
	"seedworks/internal/lock"
	"seedworks/internal/models"
	"seedworks/internal/repository"
	"seedworks/internal/utils"
)

var mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// AuthService handles registration and login
type AuthService struct {
	base
}

// NewAuthService creates a new AuthService
func NewAuthService(repo *repository.Repository, locker lock.Locker, cfg *config.Config) *AuthService {
	return &AuthService{base: newBase(repo, locker, cfg)}
}

// RegisterInput is the registration form
type RegisterInput struct {
	Mobile      string
	Password    string
	DisplayName string
	InviteCode  string
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	Token   string          `json:"token"`
	Account *models.Account `json:"account"`
}

// Register creates an account, credits the register reward and returns a token
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	mobile := strings.TrimSpace(in.Mobile)
	if !mobilePattern.MatchString(mobile) {
		return nil, ErrInvalidMobile
	}
	if len(in.Password) < 6 {
		return nil, ErrWeakPassword
	}

	if _, err := s.repo.GetAccountByMobile(ctx, mobile); err == nil {
		return nil, ErrMobileTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check mobile: %w", err)
	}

	var invitedBy *string
	if code := strings.ToUpper(strings.TrimSpace(in.InviteCode)); code != "" {
		if _, err := s.repo.GetAccountByInviteCode(ctx, code); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidInviteCode
			}
			return nil, fmt.Errorf("failed to check invite code: %w", err)
		}
		invitedBy = &code
	}

	inviteCode, err := s.generateInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := hashSecret(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		if displayName, err = utils.GenerateDisplayName(mobile); err != nil {
			return nil, err
		}
	}

	account := &models.Account{
		Mobile:       mobile,
		DisplayName:  displayName,
		PasswordHash: hash,
		InviteCode:   inviteCode,
		InvitedBy:    invitedBy,
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.CreateAccount(ctx, account); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrMobileTaken
			}
			return fmt.Errorf("failed to create account: %w", err)
		}

		if s.cfg.App.RegisterReward.IsPositive() {
			if _, err := tx.Post(ctx, repository.Entry{
				AccountID:   account.ID,
				Type:        models.TxTypeRegister,
				Balance:     models.BalanceRecharge,
				Amount:      s.cfg.App.RegisterReward,
				Description: "Register reward",
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	account, err = s.repo.GetAccountByID(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(account.ID, account.Mobile)
	if err != nil {
		return nil, err
	}

	log.Printf("[Auth] new account %d registered (invited_by=%v)", account.ID, in.InviteCode)
	return &AuthResult{Token: token, Account: account}, nil
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, mobile, password string) (*AuthResult, error) {
	account, err := s.repo.GetAccountByMobile(ctx, strings.TrimSpace(mobile))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkSecret(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(account.ID, account.Mobile)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, Account: account}, nil
}

// generateInviteCode draws codes until an unused one appears
func (s *AuthService) generateInviteCode(ctx context.Context) (string, error) {
	for i := 0; i < 10; i++ {
		code := utils.GenerateInviteCode()
		exists, err := s.repo.InviteCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique invite code")
}

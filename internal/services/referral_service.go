package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seedworks/internal/config"
	"seedworks/internal/lock"
	"seedworks/internal/models"
	"seedworks/internal/repository"
)

const (
	defaultReferralDepth = 3
	maxReferralDepth     = 5
)

// ReferralStore is the read side the resolver needs
type ReferralStore interface {
	ListAccountsInvitedBy(ctx context.Context, codes []string) ([]models.Account, error)
	ActiveOwners(ctx context.Context, accountIDs []uint, category models.ProductCategory) ([]uint, error)
}

// Resolver walks the referral tree level by level
type Resolver struct {
	store   ReferralStore
	backoff func() retry.Backoff
}

// NewResolver creates a resolver over store
func NewResolver(store ReferralStore) *Resolver {
	return &Resolver{
		store: store,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
		},
	}
}

// ResolvedLevel is one level of the tree
type ResolvedLevel struct {
	Level    int
	Accounts []models.Account
	Active   map[uint]bool
}

// Resolve returns levels 1..depth below the root invite code. A level with no
// accounts ends the walk; deeper levels are reported as empty.
func (r *Resolver) Resolve(ctx context.Context, rootID uint, rootCode string, depth int) ([]ResolvedLevel, error) {
	if depth <= 0 {
		depth = defaultReferralDepth
	}
	if depth > maxReferralDepth {
		depth = maxReferralDepth
	}

	levels := make([]ResolvedLevel, depth)
	for i := range levels {
		levels[i] = ResolvedLevel{Level: i + 1, Active: map[uint]bool{}}
	}

	visitedIDs := map[uint]bool{rootID: true}
	visitedCodes := map[string]bool{rootCode: true}
	frontier := []string{rootCode}

	for i := 0; i < depth && len(frontier) > 0; i++ {
		accounts, err := r.listInvited(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("failed to load level %d: %w", i+1, err)
		}

		var next []string
		var ids []uint
		for _, acc := range accounts {
			if visitedIDs[acc.ID] {
				continue
			}
			visitedIDs[acc.ID] = true
			levels[i].Accounts = append(levels[i].Accounts, acc)
			ids = append(ids, acc.ID)
			if !visitedCodes[acc.InviteCode] {
				visitedCodes[acc.InviteCode] = true
				next = append(next, acc.InviteCode)
			}
		}
		if len(ids) == 0 {
			break
		}

		active, err := r.activeOwners(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load active members of level %d: %w", i+1, err)
		}
		for _, id := range active {
			levels[i].Active[id] = true
		}
		frontier = next
	}

	return levels, nil
}

// ActiveDirectReferrals counts level-1 accounts holding an active stable product
func (r *Resolver) ActiveDirectReferrals(ctx context.Context, rootID uint, rootCode string) (int, error) {
	levels, err := r.Resolve(ctx, rootID, rootCode, 1)
	if err != nil {
		return 0, err
	}
	return len(levels[0].Active), nil
}

func (r *Resolver) listInvited(ctx context.Context, codes []string) ([]models.Account, error) {
	var accounts []models.Account
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		var err error
		accounts, err = r.store.ListAccountsInvitedBy(ctx, codes)
		return retryable(err)
	})
	return accounts, err
}

func (r *Resolver) activeOwners(ctx context.Context, ids []uint) ([]uint, error) {
	var active []uint
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		var err error
		active, err = r.store.ActiveOwners(ctx, ids, models.ProductCategoryStable)
		return retryable(err)
	})
	return active, err
}

// retryable marks transient read errors. Cancellation is returned as is.
func retryable(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return retry.RetryableError(err)
}

// ReferralService serves the team page and pays upline commission
type ReferralService struct {
	base
	resolver *Resolver
}

func NewReferralService(repo *repository.Repository, locker lock.Locker, cfg *config.Config) *ReferralService {
	return &ReferralService{
		base:     newBase(repo, locker, cfg),
		resolver: NewResolver(repo),
	}
}

// Resolver exposes the tree walker to other services
func (s *ReferralService) Resolver() *Resolver {
	return s.resolver
}

// GetTeam resolves the account's referral tree into per-level stats
func (s *ReferralService) GetTeam(ctx context.Context, accountID uint, withMembers bool) (*models.TeamStats, error) {
	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	levels, err := s.resolver.Resolve(ctx, account.ID, account.InviteCode, s.cfg.Rewards.ReferralDepth)
	if err != nil {
		return nil, err
	}

	stats := &models.TeamStats{
		InviteCode:      account.InviteCode,
		TotalCommission: account.TotalCommission,
		TeamRecharge:    decimal.Zero,
	}

	var memberIDs []uint
	for _, lvl := range levels {
		tl := models.TeamLevel{Level: lvl.Level, Total: len(lvl.Accounts), Active: len(lvl.Active)}
		for _, acc := range lvl.Accounts {
			memberIDs = append(memberIDs, acc.ID)
			if withMembers {
				tl.Members = append(tl.Members, models.TeamMember{
					AccountID: acc.ID,
					Mobile:    maskMobile(acc.Mobile),
					Active:    lvl.Active[acc.ID],
					JoinedAt:  acc.CreatedAt,
				})
			}
		}
		stats.TeamSize += tl.Total
		stats.ActiveSize += tl.Active
		stats.Levels = append(stats.Levels, tl)
	}

	if len(memberIDs) > 0 {
		if stats.TeamRecharge, err = s.repo.SumTeamRecharge(ctx, memberIDs); err != nil {
			return nil, fmt.Errorf("failed to sum team recharge: %w", err)
		}
	}
	return stats, nil
}

// payCommission walks invited_by upward and credits each upline's withdrawal
// balance with its level's share of amount. Must run inside the purchase transaction.
func payCommission(ctx context.Context, tx *repository.Repository, buyer *models.Account, amount decimal.Decimal, rates []decimal.Decimal) error {
	visited := map[uint]bool{buyer.ID: true}
	code := buyer.InvitedBy

	for level, rate := range rates {
		if code == nil || *code == "" {
			return nil
		}
		upline, err := tx.GetAccountByInviteCode(ctx, *code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[Referral] inviter %s of account %d not found", *code, buyer.ID)
				return nil
			}
			return fmt.Errorf("failed to load upline: %w", err)
		}
		if visited[upline.ID] {
			return nil
		}
		visited[upline.ID] = true

		commission := amount.Mul(rate).Round(2)
		if commission.IsPositive() {
			ref := fmt.Sprintf("buyer:%d", buyer.ID)
			if _, err := tx.Post(ctx, repository.Entry{
				AccountID:   upline.ID,
				Type:        models.TxTypeCommission,
				Balance:     models.BalanceWithdrawal,
				Amount:      commission,
				Description: fmt.Sprintf("Level %d commission", level+1),
				Reference:   &ref,
			}); err != nil {
				return fmt.Errorf("failed to pay level %d commission: %w", level+1, err)
			}
		}
		code = upline.InvitedBy
	}
	return nil
}

func maskMobile(mobile string) string {
	if len(mobile) < 7 {
		return mobile
	}
	return mobile[:3] + "****" + mobile[len(mobile)-3:]
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seedworks/internal/config"
	"seedworks/internal/database"
	"seedworks/internal/lock"
	"seedworks/internal/models"
	"seedworks/internal/repository"
	"seedworks/internal/rewards"
)

// RewardService handles check-in, the wheel, referral tasks, blog rewards
// and income collection
type RewardService struct {
	base
	resolver *Resolver
}

func NewRewardService(repo *repository.Repository, locker lock.Locker, cfg *config.Config, resolver *Resolver) *RewardService {
	return &RewardService{base: newBase(repo, locker, cfg), resolver: resolver}
}

// CheckinResult is the outcome of a daily check-in
type CheckinResult struct {
	Date     string          `json:"date"`
	VIPLevel int             `json:"vip_level"`
	Reward   decimal.Decimal `json:"reward"`
}

// Checkin stamps today's date and credits the level reward. A zero reward
// still consumes the day.
func (s *RewardService) Checkin(ctx context.Context, accountID uint) (*CheckinResult, error) {
	today := s.today()
	var result *CheckinResult

	err := s.withAccountLock(ctx, accountID, func() error {
		level, err := s.repo.HighestActiveLevel(ctx, accountID, "")
		if err != nil {
			return fmt.Errorf("failed to load active level: %w", err)
		}
		reward := rewards.CheckinReward(level, s.cfg.Rewards.Checkin)

		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			stamped, err := tx.StampCheckin(ctx, accountID, today)
			if err != nil {
				return err
			}
			if !stamped {
				return ErrAlreadyCheckedIn
			}

			if reward.IsPositive() {
				ref := "checkin:" + today
				if _, err := tx.Post(ctx, repository.Entry{
					AccountID:   accountID,
					Type:        models.TxTypeCheckin,
					Balance:     models.BalanceWithdrawal,
					Amount:      reward,
					Description: fmt.Sprintf("Daily check-in (level %d)", level),
					Reference:   &ref,
				}); err != nil {
					return err
				}
			}

			result = &CheckinResult{Date: today, VIPLevel: level, Reward: reward}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SpinWheel is the display configuration of the wheel
type SpinWheel struct {
	Segments    []decimal.Decimal `json:"segments"`
	SpinChances int               `json:"spin_chances"`
}

// GetWheel returns the wheel segments and the account's remaining chances
func (s *RewardService) GetWheel(ctx context.Context, accountID uint) (*SpinWheel, error) {
	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &SpinWheel{Segments: s.cfg.Rewards.Wheel, SpinChances: account.SpinChances}, nil
}

// Spin consumes one chance and credits the drawn prize
func (s *RewardService) Spin(ctx context.Context, accountID uint) (*models.Prize, error) {
	var prize *models.Prize

	err := s.withAccountLock(ctx, accountID, func() error {
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			ok, err := tx.ConsumeSpinChance(ctx, accountID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNoSpinChances
			}

			amount := s.cfg.Rewards.Spin.Draw(s.intn)
			prize = &models.Prize{AccountID: accountID, Amount: amount, CreatedAt: s.clock()}
			if err := tx.CreatePrize(ctx, prize); err != nil {
				return fmt.Errorf("failed to record prize: %w", err)
			}

			if amount.IsPositive() {
				ref := fmt.Sprintf("prize:%d", prize.ID)
				if _, err := tx.Post(ctx, repository.Entry{
					AccountID:   accountID,
					Type:        models.TxTypeSpin,
					Balance:     models.BalanceWithdrawal,
					Amount:      amount,
					Description: "Lucky spin prize",
					Reference:   &ref,
				}); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return prize, nil
}

// ListPrizes returns the account's spins newest first
func (s *RewardService) ListPrizes(ctx context.Context, accountID uint, page repository.Page) ([]models.Prize, error) {
	return s.repo.ListPrizes(ctx, accountID, page)
}

// TaskStatus is one task as shown to an account
type TaskStatus struct {
	rewards.Task
	Unlocked bool `json:"unlocked"`
	Claimed  bool `json:"claimed"`
}

// TaskBoard lists tasks with the current active referral count
type TaskBoard struct {
	ActiveReferrals int          `json:"active_referrals"`
	Tasks           []TaskStatus `json:"tasks"`
}

// ListTasks reports unlock and claim state of every task
func (s *RewardService) ListTasks(ctx context.Context, accountID uint) (*TaskBoard, error) {
	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	active, err := s.resolver.ActiveDirectReferrals(ctx, account.ID, account.InviteCode)
	if err != nil {
		return nil, err
	}

	keys, err := s.repo.ListTaskClaimKeys(ctx, accountID)
	if err != nil {
		return nil, err
	}
	claimed := make(map[string]bool, len(keys))
	for _, k := range keys {
		claimed[k] = true
	}

	today := s.today()
	board := &TaskBoard{ActiveReferrals: active}
	for _, task := range rewards.Tasks {
		board.Tasks = append(board.Tasks, TaskStatus{
			Task:     task,
			Unlocked: task.Unlocked(active),
			Claimed:  claimed[task.ClaimKey(today)],
		})
	}
	return board, nil
}

// ClaimTask credits a task reward once (once per day for daily tasks)
func (s *RewardService) ClaimTask(ctx context.Context, accountID uint, taskID string) (*models.TaskClaim, error) {
	task, ok := rewards.FindTask(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}

	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	claim := &models.TaskClaim{
		AccountID: accountID,
		ClaimKey:  task.ClaimKey(s.today()),
		TaskID:    task.ID,
		Reward:    task.Reward,
	}

	err = s.withAccountLock(ctx, accountID, func() error {
		exists, err := s.repo.TaskClaimExists(ctx, accountID, claim.ClaimKey)
		if err != nil {
			return err
		}
		if exists {
			return ErrTaskClaimed
		}

		active, err := s.resolver.ActiveDirectReferrals(ctx, account.ID, account.InviteCode)
		if err != nil {
			return err
		}
		if !task.Unlocked(active) {
			return ErrTaskLocked
		}

		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			claim.CreatedAt = s.clock()
			if err := tx.CreateTaskClaim(ctx, claim); err != nil {
				if database.IsUniqueViolation(err) {
					return ErrTaskClaimed
				}
				return fmt.Errorf("failed to record claim: %w", err)
			}
			ref := "task:" + claim.ClaimKey
			_, err := tx.Post(ctx, repository.Entry{
				AccountID:   accountID,
				Type:        models.TxTypeReward,
				Balance:     models.BalanceWithdrawal,
				Amount:      task.Reward,
				Description: fmt.Sprintf("Task reward %s", task.ID),
				Reference:   &ref,
			})
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Rewards] account %d claimed %s (%s)", accountID, claim.ClaimKey, task.Reward)
	return claim, nil
}

// BlogInput is a testimonial submission
type BlogInput struct {
	Content  string
	ImageURL string
}

// PublishBlog stores a testimonial and pays a reward sized by the latest
// successful withdrawal. Each withdrawal rewards at most one post.
func (s *RewardService) PublishBlog(ctx context.Context, accountID uint, in BlogInput) (*models.BlogPost, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && strings.TrimSpace(in.ImageURL) == "" {
		return nil, ErrMissingFields
	}

	var post *models.BlogPost
	err := s.withAccountLock(ctx, accountID, func() error {
		last, err := s.repo.LatestSuccessfulWithdrawal(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalRequired
			}
			return err
		}

		reward := rewards.BlogReward(last.Amount, s.intn)
		post = &models.BlogPost{
			AccountID:    accountID,
			WithdrawalID: &last.ID,
			Content:      content,
			ImageURL:     strings.TrimSpace(in.ImageURL),
			RewardAmount: reward,
			CreatedAt:    s.clock(),
		}

		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			if err := tx.CreateBlogPost(ctx, post); err != nil {
				if database.IsUniqueViolation(err) {
					return ErrBlogRewarded
				}
				return fmt.Errorf("failed to save post: %w", err)
			}
			if !reward.IsPositive() {
				return nil
			}
			ref := fmt.Sprintf("blog:%d", post.ID)
			_, err := tx.Post(ctx, repository.Entry{
				AccountID:   accountID,
				Type:        models.TxTypeReward,
				Balance:     models.BalanceWithdrawal,
				Amount:      reward,
				Description: "Blog reward",
				Reference:   &ref,
			})
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListBlogPosts returns the public feed
func (s *RewardService) ListBlogPosts(ctx context.Context, page repository.Page) ([]models.BlogPost, error) {
	return s.repo.ListBlogPosts(ctx, page)
}

// CollectIncome moves the whole product income balance to the withdrawal balance
func (s *RewardService) CollectIncome(ctx context.Context, accountID uint) (decimal.Decimal, error) {
	var collected decimal.Decimal

	err := s.withAccountLock(ctx, accountID, func() error {
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			account, err := tx.GetAccountByID(ctx, accountID)
			if err != nil {
				return err
			}
			if !account.ProductIncome.IsPositive() {
				return ErrNothingToCollect
			}
			collected = account.ProductIncome

			if _, err := tx.Post(ctx, repository.Entry{
				AccountID:   accountID,
				Type:        models.TxTypeIncomeCollect,
				Balance:     models.BalanceProductIncome,
				Amount:      collected.Neg(),
				Description: "Income collected",
			}); err != nil {
				return err
			}
			_, err = tx.Post(ctx, repository.Entry{
				AccountID:   accountID,
				Type:        models.TxTypeIncomeCollect,
				Balance:     models.BalanceWithdrawal,
				Amount:      collected,
				Description: "Income collected",
			})
			return err
		})
	})
	if err != nil {
		return decimal.Zero, err
	}
	return collected, nil
}

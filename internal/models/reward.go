package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prize records one wheel spin
type Prize struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	AccountID uint            `gorm:"not null;index" json:"account_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Prize) TableName() string {
	return "prizes"
}

// TaskClaim makes task rewards idempotent. ClaimKey is the task id for
// one-time tasks and "<task id>:<date>" for daily tasks.
type TaskClaim struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	AccountID uint            `gorm:"not null;uniqueIndex:idx_task_claims_account_key" json:"account_id"`
	ClaimKey  string          `gorm:"size:40;not null;uniqueIndex:idx_task_claims_account_key" json:"claim_key"`
	TaskID    string          `gorm:"size:20;not null" json:"task_id"`
	Reward    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"reward"`
	CreatedAt time.Time       `json:"created_at"`
}

func (TaskClaim) TableName() string {
	return "task_claims"
}

// BlogPost is a user testimonial that earns a one-off reward
type BlogPost struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	AccountID    uint            `gorm:"not null;index" json:"account_id"`
	WithdrawalID *uint           `gorm:"uniqueIndex" json:"withdrawal_id,omitempty"`
	Content      string          `gorm:"type:text" json:"content"`
	ImageURL     string          `gorm:"size:500" json:"image_url"`
	RewardAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"reward_amount"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

// TeamLevel is one level of a referral tree
type TeamLevel struct {
	Level   int          `json:"level"`
	Total   int          `json:"total"`
	Active  int          `json:"active"`
	Members []TeamMember `json:"members,omitempty"`
}

// TeamMember is a masked view of a referred account
type TeamMember struct {
	AccountID uint      `json:"account_id"`
	Mobile    string    `json:"mobile"`
	Active    bool      `json:"active"`
	JoinedAt  time.Time `json:"joined_at"`
}

// TeamStats aggregates a referral tree for the team page
type TeamStats struct {
	InviteCode      string          `json:"invite_code"`
	Levels          []TeamLevel     `json:"levels"`
	TeamSize        int             `json:"team_size"`
	ActiveSize      int             `json:"active_size"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	TeamRecharge    decimal.Decimal `json:"team_recharge"`
}

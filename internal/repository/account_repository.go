package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"seedworks/internal/models"
)

// CreateAccount inserts a new account with zero balances
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetAccountByID retrieves an account by ID
func (r *Repository) GetAccountByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountByMobile retrieves an account by mobile number
func (r *Repository) GetAccountByMobile(ctx context.Context, mobile string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("mobile = ?", mobile).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountByInviteCode retrieves the owner of an invite code
func (r *Repository) GetAccountByInviteCode(ctx context.Context, code string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// InviteCodeExists checks invite code uniqueness before insert
func (r *Repository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).Where("invite_code = ?", code).Count(&count).Error
	return count > 0, err
}

// ListAccountsInvitedBy returns the accounts whose inviter is one of codes
func (r *Repository) ListAccountsInvitedBy(ctx context.Context, codes []string) ([]models.Account, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Select("id, mobile, invite_code, invited_by, total_recharge, created_at").
		Where("invited_by IN ?", codes).
		Order("id ASC").
		Find(&accounts).Error
	return accounts, err
}

// ListAccounts supports the admin user list; search matches a mobile prefix
func (r *Repository) ListAccounts(ctx context.Context, search string, page Page) ([]models.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Account{})
	if search != "" {
		query = query.Where("mobile LIKE ?", search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.normalize()
	var accounts []models.Account
	err := query.Order("id DESC").Limit(page.Limit).Offset(page.Offset).Find(&accounts).Error
	return accounts, total, err
}

// SetTradePassword stores a new trade password hash
func (r *Repository) SetTradePassword(ctx context.Context, accountID uint, hash *string) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("trade_password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// StampCheckin sets last_checkin_date to today unless it already is.
// Returns false when the account already checked in today.
func (r *Repository) StampCheckin(ctx context.Context, accountID uint, today string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND (last_checkin_date IS NULL OR last_checkin_date < ?)", accountID, today).
		Update("last_checkin_date", today)
	return result.RowsAffected == 1, result.Error
}

// ConsumeSpinChance decrements spin_chances when positive
func (r *Repository) ConsumeSpinChance(ctx context.Context, accountID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND spin_chances > 0", accountID).
		Update("spin_chances", gorm.Expr("spin_chances - 1"))
	return result.RowsAffected == 1, result.Error
}

// AddSpinChances grants extra spins
func (r *Repository) AddSpinChances(ctx context.Context, accountID uint, n int) error {
	return r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("spin_chances", gorm.Expr("spin_chances + ?", n)).Error
}

// HasRole checks the user_roles table
func (r *Repository) HasRole(ctx context.Context, accountID uint, role string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("account_id = ? AND role = ?", accountID, role).
		Count(&count).Error
	return count > 0, err
}

// RolesFor lists the roles held by an account
func (r *Repository) RolesFor(ctx context.Context, accountID uint) ([]string, error) {
	var roles []string
	err := r.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("account_id = ?", accountID).
		Order("role").
		Pluck("role", &roles).Error
	return roles, err
}

// GrantRole is idempotent
func (r *Repository) GrantRole(ctx context.Context, accountID uint, role string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{AccountID: accountID, Role: role}).Error
}

// RevokeRole removes a role
func (r *Repository) RevokeRole(ctx context.Context, accountID uint, role string) error {
	return r.db.WithContext(ctx).
		Where("account_id = ? AND role = ?", accountID, role).
		Delete(&models.UserRole{}).Error
}

// GetBankCard returns the account's bank card
func (r *Repository) GetBankCard(ctx context.Context, accountID uint) (*models.BankCard, error) {
	var card models.BankCard
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// UpsertBankCard creates or replaces the account's bank card
func (r *Repository) UpsertBankCard(ctx context.Context, card *models.BankCard) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"holder_name", "bank_name", "account_number", "ifsc", "updated_at"}),
	}).Create(card).Error
}

// CreatePrize records a spin
func (r *Repository) CreatePrize(ctx context.Context, prize *models.Prize) error {
	return r.db.WithContext(ctx).Create(prize).Error
}

// ListPrizes returns an account's spins newest first
func (r *Repository) ListPrizes(ctx context.Context, accountID uint, page Page) ([]models.Prize, error) {
	page = page.normalize()
	var prizes []models.Prize
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(page.Limit).Offset(page.Offset).
		Find(&prizes).Error
	return prizes, err
}

// CreateTaskClaim fails with a unique violation when the claim key exists
func (r *Repository) CreateTaskClaim(ctx context.Context, claim *models.TaskClaim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

// TaskClaimExists checks a claim key
func (r *Repository) TaskClaimExists(ctx context.Context, accountID uint, claimKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TaskClaim{}).
		Where("account_id = ? AND claim_key = ?", accountID, claimKey).
		Count(&count).Error
	return count > 0, err
}

// ListTaskClaimKeys returns the claim keys used by an account
func (r *Repository) ListTaskClaimKeys(ctx context.Context, accountID uint) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&models.TaskClaim{}).
		Where("account_id = ?", accountID).
		Pluck("claim_key", &keys).Error
	return keys, err
}

// CreateBlogPost stores a testimonial
func (r *Repository) CreateBlogPost(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// ListBlogPosts returns the public feed newest first
func (r *Repository) ListBlogPosts(ctx context.Context, page Page) ([]models.BlogPost, error) {
	page = page.normalize()
	var posts []models.BlogPost
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(page.Limit).Offset(page.Offset).
		Find(&posts).Error
	return posts, err
}

// CreateSupportMessage opens a ticket
func (r *Repository) CreateSupportMessage(ctx context.Context, msg *models.SupportMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListSupportMessages lists tickets of one account, or all when accountID is 0
func (r *Repository) ListSupportMessages(ctx context.Context, accountID uint, status string, page Page) ([]models.SupportMessage, error) {
	query := r.db.WithContext(ctx).Model(&models.SupportMessage{})
	if accountID != 0 {
		query = query.Where("account_id = ?", accountID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	page = page.normalize()
	var msgs []models.SupportMessage
	err := query.Order("created_at DESC, id DESC").Limit(page.Limit).Offset(page.Offset).Find(&msgs).Error
	return msgs, err
}

// ReplySupportMessage answers a ticket
func (r *Repository) ReplySupportMessage(ctx context.Context, id, adminID uint, reply string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.SupportMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reply":      reply,
			"status":     models.SupportStatusAnswered,
			"replied_by": adminID,
			"replied_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

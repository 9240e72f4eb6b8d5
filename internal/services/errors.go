package services

import (
	"errors"

	"seedworks/internal/repository"
	"seedworks/internal/rewards"
)

// Validation errors. Each aborts the operation with no side effects.
var (
	ErrInsufficientBalance  = repository.ErrInsufficientBalance
	ErrBelowMinimum         = rewards.ErrBelowMinimum
	ErrAboveMaximum         = rewards.ErrAboveMaximum
	ErrInvalidAmount        = rewards.ErrInvalidAmount
	ErrInvalidMobile        = errors.New("mobile number must be 10 digits starting with 6-9")
	ErrWeakPassword         = errors.New("password must be at least 6 characters")
	ErrMobileTaken          = errors.New("mobile number already registered")
	ErrInvalidInviteCode    = errors.New("invalid invite code")
	ErrInvalidCredentials   = errors.New("invalid mobile number or password")
	ErrInvalidTradePassword = errors.New("incorrect transaction password")
	ErrTradePasswordNotSet  = errors.New("transaction password not set")
	ErrNoBankCard           = errors.New("please add a bank card first")
	ErrWithdrawalLimit      = errors.New("only one withdrawal per day is allowed")
	ErrInvalidUTR           = errors.New("UTR must be at least 12 characters")
	ErrDuplicateUTR         = errors.New("this UTR has already been submitted")
	ErrAlreadyCheckedIn     = errors.New("already checked in today")
	ErrNoSpinChances        = errors.New("no spin chances left")
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskLocked           = errors.New("not enough active referrals for this task")
	ErrTaskClaimed          = errors.New("reward already claimed")
	ErrWithdrawalRequired   = errors.New("complete a withdrawal before publishing")
	ErrBlogRewarded         = errors.New("a post was already rewarded for your latest withdrawal")
	ErrNothingToCollect     = errors.New("no product income to collect")
	ErrProductNotFound      = errors.New("product not found")
	ErrProductUnavailable   = errors.New("product is not available")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrQuantityExceeded     = errors.New("purchase limit reached for this product")
	ErrTierTooLow           = errors.New("VIP level too low for this product")
	ErrWelfareLocked        = errors.New("welfare products require an active stable product of the same level")
	ErrAlreadyOwned         = errors.New("welfare product can only be purchased once")
	ErrMissingFields        = errors.New("required fields are missing")
	ErrSelfRevoke           = errors.New("cannot revoke your own admin role")
)

// Lookup and authorization errors
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("admin access required")
	ErrInvalidStatus = errors.New("invalid status transition")
)

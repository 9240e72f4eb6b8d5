package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidAmount       = errors.New("amount must be non-zero with at most two decimals")
	ErrUnknownBalance      = errors.New("unknown balance type")
)

// Repository wraps every query against the ledger store. A Repository
// created by Transaction is bound to one database transaction.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Transaction runs fn atomically. Nested calls become savepoints.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Page bounds list queries
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize() Page {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

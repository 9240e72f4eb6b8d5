package services

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/crypto/bcrypt"

	"seedworks/internal/config"
	"seedworks/internal/events"
	"seedworks/internal/lock"
	"seedworks/internal/repository"
)

// bcryptCost is lowered by tests
var bcryptCost = bcrypt.DefaultCost

// base bundles the collaborators shared by every service
type base struct {
	repo   *repository.Repository
	locker lock.Locker
	cfg    *config.Config
	now    func() time.Time
	intn   func(n int) int
}

func newBase(repo *repository.Repository, locker lock.Locker, cfg *config.Config) base {
	return base{
		repo:   repo,
		locker: locker,
		cfg:    cfg,
		now:    time.Now,
		intn:   rand.IntN,
	}
}

// clock returns the current instant in UTC
func (b *base) clock() time.Time {
	return b.now().UTC()
}

// today is the business date used by once-per-day guards
func (b *base) today() string {
	return b.cfg.Today(b.now())
}

// dayStart is midnight of the business date, in UTC
func (b *base) dayStart() time.Time {
	local := b.now().In(b.cfg.App.Location)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, b.cfg.App.Location).UTC()
}

func (b *base) topic(name string) string {
	return events.Topic(b.cfg.Events.TopicPrefix, name)
}

// withAccountLock serializes balance-mutating actions of one account
func (b *base) withAccountLock(ctx context.Context, accountID uint, fn func() error) error {
	unlock, err := b.locker.Lock(ctx, lock.AccountKey(accountID))
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkSecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// Package lock serializes balance-mutating actions per account.
//
// Locks only narrow the race window for double submits. Ledger posts are
// conditional single-row updates, so a lost or expired lock never lets a
// balance go negative.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockFailed = errors.New("account is busy, try again")

// Locker acquires an exclusive lock on a key and returns its release func
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// AccountKey is the lock key for balance operations of one account
func AccountKey(accountID uint) string {
	return fmt.Sprintf("seedworks:lock:account:%d", accountID)
}

// LocalLocker is an in-process keyed mutex
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*entry)}
}

// Lock blocks until the key is free or ctx is done
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e, false)
		return nil, fmt.Errorf("%w: %v", ErrLockFailed, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, e, true) })
	}, nil
}

func (l *LocalLocker) release(key string, e *entry, held bool) {
	if held {
		<-e.ch
	}
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// unlockScript deletes the key only when it still holds our token
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// RedisLocker is a SET NX EX lock shared by every API instance
type RedisLocker struct {
	client        *redis.Client
	expiration    time.Duration
	retryInterval time.Duration
	maxRetries    int
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:        client,
		expiration:    30 * time.Second,
		retryInterval: 50 * time.Millisecond,
		maxRetries:    100,
	}
}

// TryLock attempts to take the lock once
func (l *RedisLocker) TryLock(ctx context.Context, key, token string) (bool, error) {
	return l.client.SetNX(ctx, key, token, l.expiration).Result()
}

// Lock retries TryLock until it succeeds, ctx is done or retries run out
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	for i := 0; i < l.maxRetries; i++ {
		ok, err := l.TryLock(ctx, key, token)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// the request context may already be cancelled
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := l.client.Eval(releaseCtx, unlockScript, []string{key}, token).Err(); err != nil {
					log.Printf("[Lock] failed to release %s: %v", key, err)
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockFailed, ctx.Err())
		case <-time.After(l.retryInterval):
		}
	}

	return nil, ErrLockFailed
}

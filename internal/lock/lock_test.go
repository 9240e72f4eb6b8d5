package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocalLockerSerializes(t *testing.T) {
	locker := NewLocalLocker()
	key := AccountKey(1)

	var inside int32
	var maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), key)
			if err != nil {
				t.Errorf("Lock failed: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxInside)
	}
	if len(locker.locks) != 0 {
		t.Errorf("expected lock table to be empty, has %d entries", len(locker.locks))
	}
}

func TestLocalLockerRespectsContext(t *testing.T) {
	locker := NewLocalLocker()
	key := AccountKey(7)

	unlock, err := locker.Lock(context.Background(), key)
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := locker.Lock(ctx, key); !errors.Is(err, ErrLockFailed) {
		t.Fatalf("expected ErrLockFailed, got %v", err)
	}
}

func TestLocalLockerIndependentKeys(t *testing.T) {
	locker := NewLocalLocker()

	unlockA, err := locker.Lock(context.Background(), AccountKey(1))
	if err != nil {
		t.Fatalf("Lock A failed: %v", err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	unlockB, err := locker.Lock(ctx, AccountKey(2))
	if err != nil {
		t.Fatalf("Lock B should not wait for A: %v", err)
	}
	unlockB()
}

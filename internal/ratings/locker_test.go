package ratings

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	k := NewKeyedMutex()
	id := uuid.New()

	var inside int32
	var maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(id)
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("expected at most one holder per key, saw %d", maxInside)
	}
	if k.held() != 0 {
		t.Fatalf("expected lock table to be emptied, got %d entries", k.held())
	}
}

func TestKeyedMutexDifferentKeysDoNotContend(t *testing.T) {
	k := NewKeyedMutex()
	unlockA := k.Lock(uuid.New())
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := k.Lock(uuid.New())
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyedMutexUnlockIsIdempotent(t *testing.T) {
	k := NewKeyedMutex()
	id := uuid.New()
	unlock := k.Lock(id)
	unlock()
	unlock()

	relock := k.Lock(id)
	relock()
	if k.held() != 0 {
		t.Fatalf("expected empty lock table, got %d", k.held())
	}
}

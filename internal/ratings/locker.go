package ratings

import (
	"sync"

	"github.com/google/uuid"
)

// Locker serializes work per restaurant id.
type Locker interface {
	Lock(id uuid.UUID) (unlock func())
}

// KeyedMutex hands out one mutex per id and frees it once no caller holds or waits on it.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*refMutex)}
}

func (k *KeyedMutex) Lock(id uuid.UUID) func() {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &refMutex{}
		k.locks[id] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.Unlock()
			k.mu.Lock()
			m.refs--
			if m.refs == 0 {
				delete(k.locks, id)
			}
			k.mu.Unlock()
		})
	}
}

// held reports how many ids currently have a live mutex.
func (k *KeyedMutex) held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

type noopLocker struct{}

func (noopLocker) Lock(uuid.UUID) func() { return func() {} }

package service

import "sync"

// assetLocks serializes transaction acceptance per asset. The sufficiency check
// for a sell reads the asset's full history and the subsequent insert must be
// atomic with respect to other submissions for the same asset, otherwise two
// concurrent sells can both observe enough balance (check-then-act race).
type assetLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAssetLocks() *assetLocks {
	return &assetLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the given asset, creating it on first use.
// The returned function releases the lock.
func (l *assetLocks) Lock(assetID string) func() {
	l.mu.Lock()
	m, ok := l.locks[assetID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[assetID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

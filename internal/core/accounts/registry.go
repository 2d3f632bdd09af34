package accounts

import (
	"context"
	"sync"
)

// StaticRegistry is an in-memory Registry for single-process deployments
// and tests. Real installations are expected to plug in their own account
// storage behind the Registry interface.
type StaticRegistry struct {
	mu       sync.RWMutex
	accounts map[int64]Account
}

func NewStaticRegistry(accounts ...Account) *StaticRegistry {
	m := make(map[int64]Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}
	return &StaticRegistry{accounts: m}
}

func (r *StaticRegistry) Get(_ context.Context, id int64) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

// Put adds or replaces an account. Used by the daemon at startup and by
// tests that simulate a backend tier change.
func (r *StaticRegistry) Put(a Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.ID] = a
}

package streaming

import (
	"context"
	"log"
	"sync"

	"Fediview/internal/core/accounts"
)

// Provider owns the per-account connection registry and the foreground
// switch. At most one connection is live at a time; switching detaches the
// previous account's connection before the new one is attached, and
// returns only after the detach completed.
type Provider struct {
	dispatcher *Dispatcher
	metrics    *Metrics

	// newConnection is swappable for tests.
	newConnection func(accounts.Account, Sink, *Metrics) *Connection

	mu      sync.Mutex
	current *Connection
	currID  int64
	started map[int64]struct{} // accounts that ever held a connection
}

func NewProvider(dispatcher *Dispatcher, metrics *Metrics) *Provider {
	return &Provider{
		dispatcher:    dispatcher,
		metrics:       metrics,
		newConnection: NewConnection,
		started:       make(map[int64]struct{}),
	}
}

// Switch makes account the foreground account. The old connection's
// listeners are detached synchronously first, so no event attributed to the
// previous account is processed after Switch returns. Accounts on a family
// without a main streaming channel simply get no live updates.
func (p *Provider) Switch(ctx context.Context, account accounts.Account) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		p.current.Close()
		p.current = nil
	}

	if !account.Backend.IsMisskey() {
		log.Printf("streaming: account %d backend %s has no main channel; live updates off", account.ID, account.Backend)
		p.currID = account.ID
		return nil
	}

	conn := p.newConnection(account, p.dispatcher.Dispatch, p.metrics)
	p.current = conn
	p.currID = account.ID
	p.started[account.ID] = struct{}{}

	go func() {
		if err := conn.Start(ctx); err != nil && ctx.Err() == nil {
			log.Printf("streaming: connection for account %d exited: %v", account.ID, err)
		}
	}()
	return nil
}

// Detach closes the current connection, if any. Used when the foreground
// account is removed.
func (p *Provider) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.current.Close()
		p.current = nil
	}
}

// Foreground returns the id of the current foreground account, 0 when none
// was ever selected.
func (p *Provider) Foreground() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currID
}

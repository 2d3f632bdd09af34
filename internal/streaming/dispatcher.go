package streaming

import (
	"context"
	"log"
	"sync"
	"time"

	"Fediview/internal/core/accounts"
)

// Handler processes events of one kind family. Returning true claims the
// event and stops further routing.
type Handler interface {
	HandleEvent(ctx context.Context, account accounts.Account, ev Event) bool
}

// Supervisor runs sub-handler side effects on their own goroutines so a
// slow or failing persistence write never blocks frame classification or
// cancels a sibling. Failures are logged, never propagated.
type Supervisor struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewSupervisor() *Supervisor {
	return &Supervisor{timeout: 30 * time.Second}
}

// Go spawns one supervised task. The task gets its own context detached
// from the frame's, so closing a connection does not abort a persistence
// write already in flight.
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("streaming: %s failed: %v", name, err)
		}
	}()
}

// Wait blocks until all spawned tasks finished. Used on shutdown and in
// tests.
func (s *Supervisor) Wait() { s.wg.Wait() }

// Dispatcher routes classified events through an ordered handler chain.
// The chain is built once at construction and immutable for the
// dispatcher's lifetime; handlers are tried in attachment order and the
// first claim wins.
type Dispatcher struct {
	handlers []Handler
	metrics  *Metrics
}

func NewDispatcher(handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

// WithMetrics attaches frame counters. Must be called before first use.
func (d *Dispatcher) WithMetrics(m *Metrics) *Dispatcher {
	d.metrics = m
	return d
}

// Dispatch classifies one frame and routes it. Classification and routing
// are synchronous and fast; handlers offload I/O to the supervisor.
func (d *Dispatcher) Dispatch(ctx context.Context, account accounts.Account, frame []byte) {
	ev, ok, err := Classify(frame)
	if err != nil {
		log.Printf("streaming: dropping malformed frame from account %d: %v", account.ID, err)
		d.count("malformed")
		return
	}
	if !ok {
		return
	}

	for _, h := range d.handlers {
		if h.HandleEvent(ctx, account, ev) {
			d.count("claimed")
			return
		}
	}
	d.count("unclaimed")
}

func (d *Dispatcher) count(result string) {
	if d.metrics != nil {
		d.metrics.Frames.WithLabelValues(result).Inc()
	}
}

package paging

import (
	"context"
	"sync"

	"Fediview/internal/core/entities"
)

// Store drives one paginated list: it serializes access, owns the cursor,
// runs the state machine and appends pages with duplicate suppression.
//
// LoadPrevious and Clear are mutually exclusive per store instance (one
// mutex per list, not global); distinct lists load concurrently with no
// shared lock. A Clear queued behind an in-flight load is honored after that
// load completes, never by preemption — callers that need an immediate reset
// must cancel the in-flight context first.
type Store[R any, T Item] struct {
	name    string
	resolve Resolve[R]
	convert Converter[R, T]
	holder  *IDHolder
	metrics *Metrics

	mu sync.Mutex // the serialized access guard for this list

	stateMu  sync.Mutex
	state    State[T]
	watchers map[chan State[T]]struct{}
}

// NewStore builds a paging store for one list. name labels log lines and
// metrics; resolve is re-evaluated per load.
func NewStore[R any, T Item](name string, resolve Resolve[R], convert Converter[R, T]) *Store[R, T] {
	return &Store[R, T]{
		name:     name,
		resolve:  resolve,
		convert:  convert,
		holder:   NewIDHolder(),
		state:    State[T]{Phase: PhaseLoadingInit},
		watchers: make(map[chan State[T]]struct{}),
	}
}

// WithMetrics attaches load counters. Must be called before first use.
func (s *Store[R, T]) WithMetrics(m *Metrics) *Store[R, T] {
	s.metrics = m
	return s
}

// State returns the current snapshot.
func (s *Store[R, T]) State() State[T] {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// Watch returns a channel receiving state snapshots, starting with the
// current one. Delivery coalesces: a slow receiver observes the latest
// state, not every intermediate one. The returned cancel func detaches the
// watcher and closes the channel.
func (s *Store[R, T]) Watch() (<-chan State[T], func()) {
	ch := make(chan State[T], 1)
	s.stateMu.Lock()
	s.watchers[ch] = struct{}{}
	ch <- s.state
	s.stateMu.Unlock()

	cancel := func() {
		s.stateMu.Lock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
		s.stateMu.Unlock()
	}
	return ch, cancel
}

func (s *Store[R, T]) setState(st State[T]) {
	s.stateMu.Lock()
	s.state = st
	for ch := range s.watchers {
		select {
		case ch <- st:
		default:
			// Replace the stale pending snapshot with the newest.
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
	s.stateMu.Unlock()
}

// LoadPrevious fetches and appends one older page.
//
// If the cursor is exhausted while content already exists, this is a no-op
// success with an empty page — never a silent full reload. A failure leaves
// the previous content in place under PhaseError.
func (s *Store[R, T]) LoadPrevious(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.State()

	if cur.Content.Exists && s.holder.Exhausted() {
		s.setState(State[T]{Phase: PhaseFixed, Content: cur.Content})
		s.count("noop")
		return nil
	}

	if cur.Phase != PhaseLoadingInit {
		s.setState(State[T]{Phase: PhaseLoadingPrevious, Content: cur.Content})
	}

	loader, err := s.resolve(ctx)
	if err != nil {
		s.fail(cur.Content, err)
		return err
	}

	raw, err := loader.LoadPrevious(ctx, s.holder)
	if err != nil {
		s.fail(cur.Content, err)
		return err
	}

	items, err := s.convert.ConvertAll(ctx, raw)
	if err != nil {
		s.fail(cur.Content, err)
		return err
	}

	merged := appendUnique(cur.Content.Items, items)
	if len(merged) == 0 {
		s.setState(State[T]{Phase: PhaseFixed, Content: NotExist[T]()})
	} else {
		s.setState(State[T]{Phase: PhaseFixed, Content: Exist(merged)})
	}
	s.count("success")
	return nil
}

// Clear unconditionally resets the list to Fixed/NotExist and the cursor to
// its start sentinel. This is the only content-discarding transition.
func (s *Store[R, T]) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.holder.Reset()
	s.setState(State[T]{Phase: PhaseFixed, Content: NotExist[T]()})
	return nil
}

func (s *Store[R, T]) fail(prev Content[T], err error) {
	s.setState(State[T]{Phase: PhaseError, Content: prev, Err: err})
	s.count("failure")
}

func (s *Store[R, T]) count(result string) {
	if s.metrics != nil {
		s.metrics.Loads.WithLabelValues(s.name, result).Inc()
	}
}

// appendUnique appends newItems after existing, dropping any item whose
// entity id was already seen. Existing order is preserved; new items keep
// their backend delivery order.
func appendUnique[T Item](existing, newItems []T) []T {
	seen := make(map[entities.ID]struct{}, len(existing)+len(newItems))
	out := make([]T, 0, len(existing)+len(newItems))
	for _, it := range existing {
		if _, dup := seen[it.ItemID()]; dup {
			continue
		}
		seen[it.ItemID()] = struct{}{}
		out = append(out, it)
	}
	for _, it := range newItems {
		if _, dup := seen[it.ItemID()]; dup {
			continue
		}
		seen[it.ItemID()] = struct{}{}
		out = append(out, it)
	}
	return out
}

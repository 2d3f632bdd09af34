package entities

import (
	"sync"
)

// Store is a normalized, observable cache of entities keyed by ID.
// Writes are last-write-wins by arrival order; callers that need a stronger
// guarantee for one id must serialize their own calls. The store is safe for
// concurrent use by any number of paginated loaders and the streaming
// dispatcher.
//
// Observers attached via Observe receive every write affecting one of their
// requested ids, in arrival order per id. Updates are queued under the same
// lock that applies the write, so an observer can never see writes to the
// same id reordered; delivery itself is asynchronous so a slow observer
// never blocks writers.
type Store struct {
	mu       sync.Mutex
	entities map[ID]Entity
	subs     map[*Subscription]struct{}
}

func NewStore() *Store {
	return &Store{
		entities: make(map[ID]Entity),
		subs:     make(map[*Subscription]struct{}),
	}
}

// Put upserts a single entity.
func (s *Store) Put(e Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(e)
}

// PutAll upserts entities in slice order under one lock acquisition, so the
// batch is applied and observed as a contiguous sequence.
func (s *Store) PutAll(es []Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range es {
		s.putLocked(e)
	}
}

func (s *Store) putLocked(e Entity) {
	id := e.EntityID()
	s.entities[id] = e
	for sub := range s.subs {
		if _, ok := sub.ids[id]; ok {
			sub.enqueue(e)
		}
	}
}

// Find returns the current value for id, if any.
func (s *Store) Find(id ID) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	return e, ok
}

// RemoveAll drops the given ids from the cache. Observers are not notified
// of removals; this is explicit invalidation, not a domain event.
func (s *Store) RemoveAll(ids []ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.entities, id)
	}
}

// Observe registers a live view over the given ids. Current values are
// delivered first, then every subsequent write to one of the ids, until the
// subscription is closed. The stream never terminates on its own.
func (s *Store) Observe(ids []ID) *Subscription {
	sub := &Subscription{
		store: s,
		ids:   make(map[ID]struct{}, len(ids)),
		out:   make(chan Entity),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	for _, id := range ids {
		sub.ids[id] = struct{}{}
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	// Seed with current values in request order so a fresh observer sees the
	// snapshot before any live update.
	for _, id := range ids {
		if e, ok := s.entities[id]; ok {
			sub.enqueue(e)
		}
	}
	s.mu.Unlock()

	go sub.pump()
	return sub
}

// Subscription is one observer's ordered view of store writes. Read from C;
// call Close when done.
type Subscription struct {
	store *Store
	ids   map[ID]struct{}

	mu     sync.Mutex
	queue  []Entity
	closed bool

	out  chan Entity
	wake chan struct{}
	done chan struct{}
}

// C is the update stream. It is closed after Close.
func (sub *Subscription) C() <-chan Entity { return sub.out }

// Close detaches the subscription from the store and closes C.
func (sub *Subscription) Close() {
	sub.store.mu.Lock()
	delete(sub.store.subs, sub)
	sub.store.mu.Unlock()

	sub.mu.Lock()
	if !sub.closed {
		sub.closed = true
		close(sub.done)
	}
	sub.mu.Unlock()
}

// enqueue is called with the store lock held, which is what preserves
// arrival order across writers.
func (sub *Subscription) enqueue(e Entity) {
	sub.mu.Lock()
	if sub.closed {
		sub.mu.Unlock()
		return
	}
	sub.queue = append(sub.queue, e)
	sub.mu.Unlock()

	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *Subscription) pump() {
	defer close(sub.out)
	for {
		sub.mu.Lock()
		var next Entity
		have := false
		if len(sub.queue) > 0 {
			next = sub.queue[0]
			sub.queue = sub.queue[1:]
			have = true
		}
		sub.mu.Unlock()

		if have {
			select {
			case sub.out <- next:
			case <-sub.done:
				return
			}
			continue
		}

		select {
		case <-sub.wake:
		case <-sub.done:
			return
		}
	}
}

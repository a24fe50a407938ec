// Package collection holds the in-memory snapshot of one entity collection
// for the signed-in user and publishes every change to observers.
package collection

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/client/reconcile"
	"github.com/Kaktotak00p/notes/internal/logging"
)

// LoadState tells "no data" apart from "could not load".
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoaded
	StateLoadFailed
)

func (s LoadState) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateLoadFailed:
		return "load failed"
	default:
		return "idle"
	}
}

// Observer receives every published snapshot, in apply order. It runs inside
// the store's apply step and must not call ApplyLocal, ApplyRemoteEvent or
// Load on the same store.
type Observer[T models.Entity] func(Snapshot[T])

// Store owns the snapshot of one collection. It performs no I/O: gateway
// results and feed events are handed to it and folded in with
// reconcile.Fold. Applying and publishing happen under one lock, so
// observers never see a partially applied change.
type Store[T models.Entity] struct {
	name   string
	logger logging.Logger

	// mu serialises apply+publish and guards owner, attached, state, loadErr.
	mu       sync.Mutex
	owner    string
	attached bool
	state    LoadState
	loadErr  error

	snap atomic.Pointer[Snapshot[T]]

	obsMu     sync.Mutex
	observers map[uint64]Observer[T]
	nextObs   uint64
}

func NewStore[T models.Entity](name string, logger logging.Logger) *Store[T] {
	s := &Store[T]{
		name:      name,
		logger:    logger.With("module", "collection", "collection", name),
		observers: make(map[uint64]Observer[T]),
	}
	s.snap.Store(&Snapshot[T]{})
	return s
}

func (s *Store[T]) Name() string { return s.name }

// Snapshot returns the current snapshot. Safe to call from observers.
func (s *Store[T]) Snapshot() Snapshot[T] {
	return *s.snap.Load()
}

// Subscribe registers fn and returns the function that removes it.
func (s *Store[T]) Subscribe(fn Observer[T]) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

// Attach binds the store to owner. Only attached stores accept changes, and
// only for entities of that owner.
func (s *Store[T]) Attach(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owner = owner
	s.attached = true
}

// Detach stops the store from accepting changes. The last snapshot stays
// readable.
func (s *Store[T]) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attached = false
}

func (s *Store[T]) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attached
}

func (s *Store[T]) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.owner
}

func (s *Store[T]) State() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Err returns the error recorded by MarkLoadFailed, if any.
func (s *Store[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadErr
}

// Load replaces the snapshot with rows fetched from the remote store. Rows of
// other owners are dropped. It returns false if the store is detached.
func (s *Store[T]) Load(rows []T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		s.logger.Debug(context.Background(), "discarding load on detached store")
		return false
	}

	owned := make([]T, 0, len(rows))
	for _, r := range rows {
		if r.Owner() == s.owner {
			owned = append(owned, r)
		}
	}

	s.state = StateLoaded
	s.loadErr = nil
	s.publish(reconcile.Canonical(owned))
	return true
}

// MarkLoadFailed records a failed initial fetch. The snapshot is left as is.
func (s *Store[T]) MarkLoadFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return
	}
	s.state = StateLoadFailed
	s.loadErr = err
}

// ApplyLocal folds the result of a gateway call made by this client.
func (s *Store[T]) ApplyLocal(c models.Change[T]) bool {
	return s.apply("local", c)
}

// ApplyRemoteEvent folds a change feed notification.
func (s *Store[T]) ApplyRemoteEvent(c models.Change[T]) bool {
	return s.apply("remote", c)
}

func (s *Store[T]) apply(source string, c models.Change[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()

	if !s.attached {
		s.logger.Debug(ctx, "discarding change on detached store", "source", source, "id", c.Entity.Key())
		return false
	}
	if c.Entity.Owner() != s.owner {
		s.logger.Warn(ctx, "discarding change for foreign owner", "source", source, "id", c.Entity.Key())
		return false
	}

	cur := s.snap.Load()
	next := reconcile.Fold(cur.items, c.Kind, c.Entity)
	s.publish(next)
	return true
}

// publish must be called with mu held.
func (s *Store[T]) publish(items []T) {
	next := &Snapshot[T]{items: items, version: s.snap.Load().version + 1}
	s.snap.Store(next)

	s.obsMu.Lock()
	observers := make([]Observer[T], 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range observers {
		fn(*next)
	}
}

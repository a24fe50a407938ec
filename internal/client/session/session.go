// Package session owns the per-user sync state: one store, gateway binding and
// change feed per collection (the profile included), plus the dedup index. A Session replaces any
// process-wide singletons; the Coordinator creates and tears them down.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Kaktotak00p/notes/internal/client/collection"
	"github.com/Kaktotak00p/notes/internal/client/dedup"
	"github.com/Kaktotak00p/notes/internal/client/feed"
	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/client/repositories/categories"
	"github.com/Kaktotak00p/notes/internal/client/repositories/notes"
	"github.com/Kaktotak00p/notes/internal/client/repositories/profiles"
	"github.com/Kaktotak00p/notes/internal/client/repositories/tasks"
	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/Kaktotak00p/notes/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Gateways bundles the remote repositories a session reads from.
type Gateways struct {
	Notes      notes.Repository
	Tasks      tasks.Repository
	Categories categories.Repository
	Profiles   profiles.Repository
}

// CollectionStatus describes one collection for status output.
type CollectionStatus struct {
	Name  string
	Load  collection.LoadState
	Feed  feed.State
	Count int
	Err   error
}

type Session struct {
	OwnerID string

	Notes      *collection.Store[models.Note]
	Tasks      *collection.Store[models.Task]
	Categories *collection.Store[models.Category]
	// Profile holds at most one row, the owner's own profile.
	Profile *collection.Store[models.Profile]
	Dedup   *dedup.Index

	bindings []binding
	unwatch  func()
	stopOnce sync.Once
}

// binding runs bootstrap for one collection.
type binding interface {
	name() string
	bootstrap(ctx context.Context, ownerID string) error
	healthy() bool
	status() CollectionStatus
	stop()
}

type collectionBinding[T models.Entity] struct {
	store *collection.Store[T]
	fetch func(ctx context.Context, ownerID string) ([]T, error)
	feed  *feed.Subscriber[T]
}

func (b *collectionBinding[T]) name() string { return b.store.Name() }

// bootstrap fetches, seeds the store and then subscribes, strictly in that
// order. The feed is not opened when the fetch fails or when the session was
// stopped while the fetch was in flight.
func (b *collectionBinding[T]) bootstrap(ctx context.Context, ownerID string) error {
	rows, err := b.fetch(ctx, ownerID)
	if err != nil {
		b.store.MarkLoadFailed(err)
		return fmt.Errorf("fetch %s: %w", b.name(), err)
	}
	if !b.store.Load(rows) {
		return nil
	}

	err = b.feed.Subscribe(ctx, ownerID)
	switch {
	case errors.Is(err, feed.ErrClosed):
		return nil
	case err != nil:
		return fmt.Errorf("subscribe %s: %w", b.name(), err)
	}
	return nil
}

func (b *collectionBinding[T]) healthy() bool {
	return b.store.State() == collection.StateLoaded && b.feed.State() == feed.StateLive
}

func (b *collectionBinding[T]) status() CollectionStatus {
	return CollectionStatus{
		Name:  b.name(),
		Load:  b.store.State(),
		Feed:  b.feed.State(),
		Count: b.store.Snapshot().Len(),
		Err:   b.store.Err(),
	}
}

func (b *collectionBinding[T]) stop() {
	b.feed.Close()
	b.store.Detach()
}

func bind[T models.Entity](store *collection.Store[T], fetch func(context.Context, string) ([]T, error),
	get feed.RefetchFunc[T], channel string, l feed.Listener, logger logging.Logger, onDetached func(string, error)) *collectionBinding[T] {

	opts := []feed.Option[T]{feed.WithRefetch(get)}
	if onDetached != nil {
		opts = append(opts, feed.WithDetachHook[T](func(err error) { onDetached(store.Name(), err) }))
	}

	return &collectionBinding[T]{
		store: store,
		fetch: fetch,
		feed:  feed.NewSubscriber[T](channel, l, store, logger, opts...),
	}
}

func newSession(ownerID string, gw Gateways, l feed.Listener, logger logging.Logger, onDetached func(string, error)) *Session {
	s := &Session{
		OwnerID:    ownerID,
		Notes:      collection.NewStore[models.Note]("notes", logger),
		Tasks:      collection.NewStore[models.Task]("tasks", logger),
		Categories: collection.NewStore[models.Category]("categories", logger),
		Profile:    collection.NewStore[models.Profile]("profile", logger),
		Dedup:      dedup.NewIndex(),
	}

	s.Notes.Attach(ownerID)
	s.Tasks.Attach(ownerID)
	s.Categories.Attach(ownerID)
	s.Profile.Attach(ownerID)

	s.unwatch = s.Tasks.Subscribe(func(snap collection.Snapshot[models.Task]) {
		s.Dedup.Reset(snap.Items())
	})

	s.bindings = []binding{
		bind(s.Notes, gw.Notes.FetchAll, gw.Notes.Get, common.NotesChannel, l, logger, onDetached),
		bind(s.Tasks, gw.Tasks.FetchAll, gw.Tasks.Get, common.TasksChannel, l, logger, onDetached),
		bind(s.Categories, gw.Categories.FetchAll, gw.Categories.Get, common.CategoriesChannel, l, logger, onDetached),
		bind(s.Profile, gw.Profiles.FetchAll, gw.Profiles.Get, common.ProfilesChannel, l, logger, onDetached),
	}
	return s
}

// bootstrap runs the selected bindings concurrently and joins their errors.
func (s *Session) bootstrap(ctx context.Context, only func(binding) bool) error {
	errs := make([]error, len(s.bindings))

	var g errgroup.Group
	for i, b := range s.bindings {
		if only != nil && !only(b) {
			continue
		}
		g.Go(func() error {
			errs[i] = b.bootstrap(ctx, s.OwnerID)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Status reports each collection in notes, tasks, categories, profile order.
func (s *Session) Status() []CollectionStatus {
	out := make([]CollectionStatus, 0, len(s.bindings))
	for _, b := range s.bindings {
		out = append(out, b.status())
	}
	return out
}

// Stop closes every feed and detaches every store. Snapshots stay readable;
// late gateway results are discarded.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		for _, b := range s.bindings {
			b.stop()
		}
		s.unwatch()
	})
}

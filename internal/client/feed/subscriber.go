// Package feed keeps one change-feed subscription per collection and forwards
// the decoded events of the current owner into that collection's store.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/Kaktotak00p/notes/internal/logging"
)

// ErrClosed is returned by Subscribe after Close.
var ErrClosed = errors.New("feed: subscriber closed")

type State int

const (
	StateDetached State = iota
	StateSubscribing
	StateLive
)

func (s State) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateLive:
		return "live"
	default:
		return "detached"
	}
}

// Sink receives decoded events. *collection.Store implements it.
type Sink[T models.Entity] interface {
	ApplyRemoteEvent(c models.Change[T]) bool
}

// RefetchFunc loads a full row for a truncated notification.
type RefetchFunc[T models.Entity] func(ctx context.Context, ownerID, id string) (T, error)

type Option[T models.Entity] func(*Subscriber[T])

func WithRefetch[T models.Entity](fn RefetchFunc[T]) Option[T] {
	return func(s *Subscriber[T]) { s.refetch = fn }
}

// WithDetachHook registers fn to run when the transport fails. It is not
// called for Unsubscribe.
func WithDetachHook[T models.Entity](fn func(err error)) Option[T] {
	return func(s *Subscriber[T]) { s.onDetached = fn }
}

// Subscriber moves through Detached → Subscribing → Live → Detached. There is
// no automatic reconnect: after a transport failure the subscriber stays
// Detached until Subscribe is called again.
type Subscriber[T models.Entity] struct {
	channel    string
	listener   Listener
	sink       Sink[T]
	logger     logging.Logger
	refetch    RefetchFunc[T]
	onDetached func(err error)

	mu     sync.Mutex
	state  State
	owner  string
	gen    uint64
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSubscriber[T models.Entity](channel string, l Listener, sink Sink[T], logger logging.Logger, opts ...Option[T]) *Subscriber[T] {
	s := &Subscriber[T]{
		channel:  channel,
		listener: l,
		sink:     sink,
		logger:   logger.With("module", "feed", "channel", channel),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Subscriber[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Subscriber[T]) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.owner
}

// Subscribe opens the channel for ownerID. A subscription for another owner is
// closed first; subscribing again while live for the same owner is a no-op.
func (s *Subscriber[T]) Subscribe(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state == StateLive && s.owner == ownerID {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.Unsubscribe()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.gen++
	gen := s.gen
	s.state = StateSubscribing
	s.owner = ownerID
	s.mu.Unlock()

	stream, err := s.listener.Listen(ctx, s.channel)
	if err != nil {
		s.mu.Lock()
		if s.gen == gen {
			s.state = StateDetached
		}
		s.mu.Unlock()
		s.logger.Error(ctx, "subscribe failed", "owner", ownerID, "error", err)
		return fmt.Errorf("%w: listen %s: %w", common.ErrRemoteUnavailable, s.channel, err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	s.mu.Lock()
	if s.gen != gen {
		closed := s.closed
		s.mu.Unlock()
		cancel()
		_ = stream.Close(context.Background())
		if closed {
			return ErrClosed
		}
		return nil
	}
	s.state = StateLive
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.logger.Info(ctx, "feed live", "owner", ownerID)
	go s.run(runCtx, cancel, gen, ownerID, stream, done)
	return nil
}

// Unsubscribe closes the channel and waits until no more events are
// forwarded.
func (s *Subscriber[T]) Unsubscribe() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.gen++
	s.state = StateDetached
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Close unsubscribes and refuses every later Subscribe, including one already
// waiting on the listener.
func (s *Subscriber[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.Unsubscribe()
}

func (s *Subscriber[T]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, ownerID string, stream Stream, done chan struct{}) {
	defer close(done)
	defer func() { _ = stream.Close(context.Background()) }()
	defer cancel()

	for {
		data, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.detach(ctx, gen, err)
			return
		}
		s.forward(ctx, ownerID, data)
	}
}

func (s *Subscriber[T]) detach(ctx context.Context, gen uint64, err error) {
	s.mu.Lock()
	current := s.gen == gen
	if current {
		s.state = StateDetached
		s.cancel, s.done = nil, nil
	}
	s.mu.Unlock()

	if !current {
		return
	}
	s.logger.Warn(ctx, "feed dropped", "error", err)
	if s.onDetached != nil {
		s.onDetached(err)
	}
}

func (s *Subscriber[T]) forward(ctx context.Context, ownerID string, data []byte) {
	n, err := Decode[T](data)
	if err != nil {
		s.logger.Warn(ctx, "skipping undecodable notification", "error", err)
		return
	}

	if n.Entity.Owner() != ownerID {
		s.logger.Debug(ctx, "dropping notification for another owner", "id", n.Entity.Key())
		return
	}

	if n.Truncated && n.Kind != models.ChangeDelete && s.refetch != nil {
		full, err := s.refetch(ctx, ownerID, n.Entity.Key())
		switch {
		case errors.Is(err, common.ErrNotFound):
			n.Kind = models.ChangeDelete
		case err != nil:
			s.logger.Warn(ctx, "refetch failed", "id", n.Entity.Key(), "error", err)
			return
		default:
			n.Entity = full
		}
	}

	s.sink.ApplyRemoteEvent(models.Change[T]{Kind: n.Kind, Entity: n.Entity})
}

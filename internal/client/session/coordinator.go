package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/Kaktotak00p/notes/internal/client/feed"
	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/Kaktotak00p/notes/internal/logging"
)

type Option func(*Coordinator)

// WithFeedDetachHook registers fn to run when a collection's change feed drops.
func WithFeedDetachHook(fn func(collection string, err error)) Option {
	return func(c *Coordinator) { c.onDetached = fn }
}

// Coordinator starts and stops sessions. At most one session is current.
type Coordinator struct {
	gateways   Gateways
	listener   feed.Listener
	logger     logging.Logger
	onDetached func(string, error)

	mu      sync.Mutex
	current *Session
}

func NewCoordinator(gw Gateways, l feed.Listener, logger logging.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		gateways: gw,
		listener: l,
		logger:   logger.With("module", "session"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start stops the current session, if any, and establishes one for ownerID.
// The returned session is usable even when err is non-nil: err joins the
// per-collection failures and the affected stores report LoadFailed.
func (c *Coordinator) Start(ctx context.Context, ownerID string) (*Session, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: empty owner", common.ErrUnauthorized)
	}

	c.Stop()

	s := newSession(ownerID, c.gateways, c.listener, c.logger, c.feedDetached)

	c.mu.Lock()
	c.current = s
	c.mu.Unlock()

	err := s.bootstrap(ctx, nil)
	if err != nil {
		c.logger.Warn(ctx, "session established in degraded mode", "owner", ownerID, "error", err)
	} else {
		c.logger.Info(ctx, "session established", "owner", ownerID)
	}
	return s, err
}

// Stop ends the current session. It is a no-op without one.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	s := c.current
	c.current = nil
	c.mu.Unlock()

	if s == nil {
		return
	}
	s.Stop()
	c.logger.Info(context.Background(), "session ended", "owner", s.OwnerID)
}

// Resubscribe re-runs bootstrap for every collection that failed to load or
// whose feed is not live.
func (c *Coordinator) Resubscribe(ctx context.Context) error {
	s := c.Current()
	if s == nil {
		return common.ErrNotStarted
	}
	return s.bootstrap(ctx, func(b binding) bool { return !b.healthy() })
}

// Current returns the running session or nil.
func (c *Coordinator) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

func (c *Coordinator) feedDetached(collection string, err error) {
	c.logger.Warn(context.Background(), "change feed detached", "collection", collection, "error", err)
	if c.onDetached != nil {
		c.onDetached(collection, err)
	}
}

package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	a.mu.Lock()
	owner, mode := a.ownerID, a.mode
	a.mu.Unlock()

	s := ""
	if owner != "" {
		s = owner + " "
	}
	if mode != "" {
		s = s + string(mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root resumes the previous session if its token is still valid, starts the
// connectivity watcher and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Notes CLI (type 'help' for commands)")

	if err := a.Resume(ctx); err != nil {
		a.logger.Debug(ctx, "no session to resume", "error", err)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/Kaktotak00p/notes/internal/common"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

// Login prompts for an access token without echo, persists it and starts a
// session for its owner. A session that starts with some collections failing
// is kept; the failures are reported and 'reconnect' retries them.
func (a *App) Login(ctx context.Context, _ []string) error {
	secret, err := getSecret("Enter access token: ", os.Stdout)
	if err != nil {
		return err
	}

	owner, err := a.auth.Login(ctx, strings.TrimSpace(string(secret)))
	if err != nil {
		return err
	}

	return a.startSession(ctx, owner)
}

// Resume starts a session from the token saved by a previous run.
func (a *App) Resume(ctx context.Context) error {
	owner, err := a.auth.Resume(ctx)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			printlnFn("Saved session expired, please login again")
		}
		return err
	}
	return a.startSession(ctx, owner)
}

func (a *App) startSession(ctx context.Context, owner string) error {
	_, err := a.sessions.Start(ctx, owner)
	a.setOwner(owner)
	if err != nil {
		printlnFn("Signed in with errors:", err)
		return nil
	}
	printlnFn("Signed in as", owner)
	return nil
}

// Logout stops the session and forgets the saved token.
func (a *App) Logout(ctx context.Context, _ []string) error {
	a.sessions.Stop()
	a.setOwner("")
	return a.auth.Logout(ctx)
}

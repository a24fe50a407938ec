package client

import (
	"context"
)

// Client talks to the task extraction server.
type Client interface {
	// Extract returns the action items the server found in noteContent.
	Extract(ctx context.Context, noteContent string) ([]string, error)
	Ping(ctx context.Context) error
	// SetAccessToken sets the token sent with every call; empty clears it.
	SetAccessToken(token string)
	Close() error
}

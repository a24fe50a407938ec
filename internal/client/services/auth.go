// Package services contains the application services the CLI drives. Each
// write goes to the remote gateway first; its result is then folded into the
// session's store so the view updates without waiting for the change feed.
// This file defines the authentication service: sign-in with an access token,
// token persistence between runs, logout and the extractor health check.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Kaktotak00p/notes/internal/auth"
	"github.com/Kaktotak00p/notes/internal/client/client"
	"github.com/Kaktotak00p/notes/internal/client/repositories/metadata"
	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/Kaktotak00p/notes/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: accept an access token, persist it and return its owner.
//   - Resume: reuse the token persisted by a previous run.
//   - Logout: forget the persisted token.
//   - Ping: check extractor liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Login(ctx context.Context, token string) (string, error)
	Resume(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is backed by the extractor client and the local SQLite store.
type authService struct {
	client client.Client
	db     *sql.DB
	now    func() time.Time
}

func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db, now: time.Now}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

// Login checks that token names an owner and has not expired, then stores it
// locally and hands it to the extractor client.
func (a *authService) Login(ctx context.Context, token string) (string, error) {
	owner, _, err := auth.OwnerFromToken(token, a.now())
	if err != nil {
		return "", err
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyAccessToken, token); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyOwnerID, owner)
	})
	if err != nil {
		return "", fmt.Errorf("token saving error: %w", err)
	}

	a.client.SetAccessToken(token)
	return owner, nil
}

// Resume returns the owner of the persisted token. An expired or unreadable
// token is removed; common.ErrNotFound means there is nothing to resume.
func (a *authService) Resume(ctx context.Context) (string, error) {
	repo := a.getMetadataRepo()

	token, err := repo.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return "", err
	}

	owner, _, err := auth.OwnerFromToken(token, a.now())
	if errors.Is(err, common.ErrTokenExpired) || errors.Is(err, common.ErrInvalidToken) {
		if clearErr := repo.Clear(ctx); clearErr != nil {
			return "", errors.Join(err, clearErr)
		}
		return "", err
	}
	if err != nil {
		return "", err
	}

	a.client.SetAccessToken(token)
	return owner, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	return a.getMetadataRepo().Clear(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

package profiles

import (
	"context"
	"errors"
	"time"

	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/client/repositories"
	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/Kaktotak00p/notes/internal/dbx"
	"github.com/Kaktotak00p/notes/internal/logging"
)

const columns = `id, username, full_name, avatar_url, website, updated_at`

type PostgresRepository struct {
	db      dbx.DBTX
	logger  logging.Logger
	timeout time.Duration
}

func NewPostgresRepository(db dbx.DBTX, logger logging.Logger, timeout time.Duration) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger.With("module", "gateway", "collection", "profiles"), timeout: timeout}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (models.Profile, error) {
	var p models.Profile
	if err := s.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.Website, &p.UpdatedAt); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func (r *PostgresRepository) FetchAll(ctx context.Context, ownerID string) ([]models.Profile, error) {
	p, err := r.Get(ctx, ownerID, ownerID)
	switch {
	case err == nil:
		return []models.Profile{p}, nil
	case errors.Is(err, common.ErrNotFound):
		return []models.Profile{}, nil
	default:
		r.logger.Error(ctx, "fetch failed", "owner", ownerID, "error", err)
		return []models.Profile{}, err
	}
}

// Get only resolves the owner's own profile; any other id is not found.
func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (models.Profile, error) {
	if id != ownerID {
		return models.Profile{}, common.ErrNotFound
	}

	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return models.Profile{}, repositories.MapError(err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	created, err := scanProfile(r.db.QueryRowContext(ctx,
		`INSERT INTO profiles (id, username, full_name, avatar_url, website) VALUES ($1, $2, $3, $4, $5) RETURNING `+columns,
		p.ID, p.Username, p.FullName, p.AvatarURL, p.Website))
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "create failed", "id", p.ID, "error", err)
		return models.Profile{}, err
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ownerID string, p models.ProfilePatch) (models.Profile, error) {
	if p.Empty() {
		return r.Get(ctx, ownerID, ownerID)
	}

	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	var set repositories.SetList
	if p.Username != nil {
		set.Add("username", *p.Username)
	}
	if p.FullName != nil {
		set.Add("full_name", *p.FullName)
	}
	if p.AvatarURL != nil {
		set.Add("avatar_url", *p.AvatarURL)
	}
	if p.Website != nil {
		set.Add("website", *p.Website)
	}

	query, args := set.UpdateByID("profiles", columns, ownerID)
	updated, err := scanProfile(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "update failed", "id", ownerID, "error", err)
		return models.Profile{}, err
	}
	return updated, nil
}

package categories

import (
	"context"
	"errors"
	"time"

	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/client/repositories"
	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/Kaktotak00p/notes/internal/dbx"
	"github.com/Kaktotak00p/notes/internal/logging"
	"github.com/google/uuid"
)

const columns = `id, user_id, category`

type PostgresRepository struct {
	db      dbx.DBTX
	logger  logging.Logger
	timeout time.Duration
}

func NewPostgresRepository(db dbx.DBTX, logger logging.Logger, timeout time.Duration) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger.With("module", "gateway", "collection", "categories"), timeout: timeout}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (models.Category, error) {
	var c models.Category
	if err := s.Scan(&c.ID, &c.OwnerID, &c.Label); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

func (r *PostgresRepository) FetchAll(ctx context.Context, ownerID string) ([]models.Category, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.fetch(ctx, ownerID)
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "fetch failed", "owner", ownerID, "error", err)
		return []models.Category{}, err
	}
	return out, nil
}

func (r *PostgresRepository) fetch(ctx context.Context, ownerID string) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM categories WHERE user_id = $1`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		if c.OwnerID != ownerID {
			r.logger.Warn(ctx, "dropping category of another owner", "id", c.ID)
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (models.Category, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM categories WHERE id = $1 AND user_id = $2`, id, ownerID))
	if err != nil {
		return models.Category{}, repositories.MapError(err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c models.Category) (models.Category, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	created, err := scanCategory(r.db.QueryRowContext(ctx,
		`INSERT INTO categories (id, user_id, category) VALUES ($1, $2, $3) RETURNING `+columns,
		c.ID, c.OwnerID, c.Label))
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "create failed", "id", c.ID, "error", err)
		return models.Category{}, err
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ownerID, id string, p models.CategoryPatch) (models.Category, error) {
	if p.Empty() {
		return r.Get(ctx, ownerID, id)
	}

	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	var set repositories.SetList
	set.Add("category", *p.Label)

	query, args := set.Update("categories", columns, id, ownerID)
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "update failed", "id", id, "error", err)
		return models.Category{}, err
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE notes SET category_id = NULL WHERE category_id = $1 AND user_id = $2`, id, ownerID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, ownerID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return common.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		err = repositories.MapError(err)
		r.logger.Error(ctx, "delete failed", "id", id, "error", err)
		return err
	}
	return nil
}

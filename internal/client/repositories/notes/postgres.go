package notes

import (
	"context"
	"database/sql"
	"time"

	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/client/repositories"
	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/Kaktotak00p/notes/internal/dbx"
	"github.com/Kaktotak00p/notes/internal/logging"
	"github.com/google/uuid"
)

const columns = `id, user_id, file_name, content, category_id, created_at, updated_at, deleted`

type PostgresRepository struct {
	db      dbx.DBTX
	logger  logging.Logger
	timeout time.Duration
}

func NewPostgresRepository(db dbx.DBTX, logger logging.Logger, timeout time.Duration) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger.With("module", "gateway", "collection", "notes"), timeout: timeout}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (models.Note, error) {
	var n models.Note
	var category sql.NullString

	err := s.Scan(&n.ID, &n.OwnerID, &n.FileName, &n.Content, &category, &n.CreatedAt, &n.UpdatedAt, &n.Deleted)
	if err != nil {
		return models.Note{}, err
	}
	if category.Valid {
		n.CategoryID = &category.String
	}
	return n, nil
}

func (r *PostgresRepository) queryNotes(ctx context.Context, db dbx.DBTX, query string, args ...any) ([]models.Note, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) FetchAll(ctx context.Context, ownerID string) ([]models.Note, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	all, err := r.queryNotes(ctx, r.db, `SELECT `+columns+` FROM notes WHERE user_id = $1`, ownerID)
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "fetch failed", "owner", ownerID, "error", err)
		return []models.Note{}, err
	}

	owned := all[:0]
	for _, n := range all {
		if n.OwnerID != ownerID {
			r.logger.Warn(ctx, "dropping note of another owner", "id", n.ID)
			continue
		}
		owned = append(owned, n)
	}
	return owned, nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (models.Note, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := scanNote(r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM notes WHERE id = $1 AND user_id = $2`, id, ownerID))
	if err != nil {
		return models.Note{}, repositories.MapError(err)
	}
	return n, nil
}

func (r *PostgresRepository) Create(ctx context.Context, n models.Note) (models.Note, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	created, err := scanNote(r.db.QueryRowContext(ctx,
		`INSERT INTO notes (id, user_id, file_name, content, category_id, deleted)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+columns,
		n.ID, n.OwnerID, n.FileName, n.Content, n.CategoryID, n.Deleted))
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "create failed", "id", n.ID, "error", err)
		return models.Note{}, err
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ownerID, id string, p models.NotePatch) (models.Note, error) {
	if p.Empty() {
		return r.Get(ctx, ownerID, id)
	}

	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	var set repositories.SetList
	if p.FileName != nil {
		set.Add("file_name", *p.FileName)
	}
	if p.Content != nil {
		set.Add("content", *p.Content)
	}
	switch {
	case p.ClearCategory:
		set.Add("category_id", nil)
	case p.CategoryID != nil:
		set.Add("category_id", *p.CategoryID)
	}
	if p.Deleted != nil {
		set.Add("deleted", *p.Deleted)
	}

	query, args := set.Update("notes", columns, id, ownerID)
	n, err := scanNote(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "update failed", "id", id, "error", err)
		return models.Note{}, err
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "delete failed", "id", id, "error", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) RestoreAll(ctx context.Context, ownerID string) ([]models.Note, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	restored, err := r.queryNotes(ctx, r.db,
		`UPDATE notes SET deleted = false WHERE user_id = $1 AND deleted = true RETURNING `+columns, ownerID)
	if err != nil {
		return nil, repositories.MapError(err)
	}
	return restored, nil
}

// EmptyTrash clears task back-references and deletes the trashed notes in
// one transaction.
func (r *PostgresRepository) EmptyTrash(ctx context.Context, ownerID string) ([]models.Note, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	var removed []models.Note
	err := dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE tasks SET note_id = NULL
			 WHERE user_id = $1 AND note_id IN (SELECT id FROM notes WHERE user_id = $1 AND deleted = true)`, ownerID)
		if err != nil {
			return err
		}

		removed, err = r.queryNotes(ctx, tx,
			`DELETE FROM notes WHERE user_id = $1 AND deleted = true RETURNING `+columns, ownerID)
		return err
	})
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "empty trash failed", "owner", ownerID, "error", err)
		return nil, err
	}
	return removed, nil
}

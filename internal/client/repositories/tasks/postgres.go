package tasks

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

const columns = `id, user_id, task, due_date, completed, ai_generated, note_id, hash, created_at, updated_at`

type PostgresRepository struct {
	db      dbx.DBTX
	logger  logging.Logger
	timeout time.Duration
}

func NewPostgresRepository(db dbx.DBTX, logger logging.Logger, timeout time.Duration) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger.With("module", "gateway", "collection", "tasks"), timeout: timeout}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (models.Task, error) {
	var (
		t      models.Task
		due    sql.NullTime
		noteID sql.NullString
		hash   sql.NullString
	)

	err := s.Scan(&t.ID, &t.OwnerID, &t.Text, &due, &t.Completed, &t.AIGenerated, &noteID, &hash, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	if noteID.Valid {
		t.NoteID = &noteID.String
	}
	if hash.Valid {
		t.Hash = &hash.String
	}
	return t, nil
}

func (r *PostgresRepository) FetchAll(ctx context.Context, ownerID string) ([]models.Task, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.fetch(ctx, ownerID)
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "fetch failed", "owner", ownerID, "error", err)
		return []models.Task{}, err
	}
	return out, nil
}

func (r *PostgresRepository) fetch(ctx context.Context, ownerID string) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM tasks WHERE user_id = $1`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if t.OwnerID != ownerID {
			r.logger.Warn(ctx, "dropping task of another owner", "id", t.ID)
			continue
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (models.Task, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	t, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID))
	if err != nil {
		return models.Task{}, repositories.MapError(err)
	}
	return t, nil
}

func (r *PostgresRepository) FindByHash(ctx context.Context, ownerID, hash string) (models.Task, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	t, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM tasks WHERE user_id = $1 AND hash = $2 LIMIT 1`, ownerID, hash))
	if err != nil {
		return models.Task{}, repositories.MapError(err)
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t models.Task) (models.Task, error) {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	created, err := scanTask(r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (id, user_id, task, due_date, completed, ai_generated, note_id, hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+columns,
		t.ID, t.OwnerID, t.Text, t.DueDate, t.Completed, t.AIGenerated, t.NoteID, t.Hash))
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "create failed", "id", t.ID, "error", err)
		return models.Task{}, err
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ownerID, id string, p models.TaskPatch) (models.Task, error) {
	if p.Empty() {
		return r.Get(ctx, ownerID, id)
	}

	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	var set repositories.SetList
	if p.Text != nil {
		set.Add("task", *p.Text)
	}
	switch {
	case p.ClearDueDate:
		set.Add("due_date", nil)
	case p.DueDate != nil:
		set.Add("due_date", *p.DueDate)
	}
	if p.Completed != nil {
		set.Add("completed", *p.Completed)
	}

	query, args := set.Update("tasks", columns, id, ownerID)
	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		err = repositories.MapError(err)
		r.logger.Error(ctx, "update failed", "id", id, "error", err)
		return models.Task{}, err
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	ctx, cancel := repositories.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
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

// Package tasks is the remote-store gateway for tasks.
package tasks

import (
	"context"

	"github.com/Kaktotak00p/notes/internal/client/models"
)

type Repository interface {
	// FetchAll returns the owner's tasks. On failure it returns an empty slice
	// together with an error wrapping common.ErrRemoteUnavailable.
	FetchAll(ctx context.Context, ownerID string) ([]models.Task, error)
	Get(ctx context.Context, ownerID, id string) (models.Task, error)
	Create(ctx context.Context, t models.Task) (models.Task, error)
	Update(ctx context.Context, ownerID, id string, p models.TaskPatch) (models.Task, error)
	Delete(ctx context.Context, ownerID, id string) error

	// FindByHash returns the owner's task with the given content hash, or
	// common.ErrNotFound.
	FindByHash(ctx context.Context, ownerID, hash string) (models.Task, error)
}

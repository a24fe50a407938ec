// Package notes is the remote-store gateway for notes.
package notes

import (
	"context"

	"github.com/Kaktotak00p/notes/internal/client/models"
)

// Repository performs CRUD on the remote notes table for one owner.
// Moving to and restoring from the trash are Updates of the Deleted flag.
type Repository interface {
	// FetchAll returns the owner's notes, trashed ones included. On failure it
	// returns an empty slice together with an error wrapping
	// common.ErrRemoteUnavailable.
	FetchAll(ctx context.Context, ownerID string) ([]models.Note, error)

	Get(ctx context.Context, ownerID, id string) (models.Note, error)

	// Create inserts n. An empty ID is replaced by a new UUID; timestamps are
	// assigned by the store.
	Create(ctx context.Context, n models.Note) (models.Note, error)

	// Update sends only the fields present in p. common.ErrNotFound when the
	// note no longer exists.
	Update(ctx context.Context, ownerID, id string, p models.NotePatch) (models.Note, error)

	// Delete removes the note permanently.
	Delete(ctx context.Context, ownerID, id string) error

	// RestoreAll moves every trashed note back and returns the restored rows.
	RestoreAll(ctx context.Context, ownerID string) ([]models.Note, error)

	// EmptyTrash permanently deletes every trashed note and returns the removed rows.
	EmptyTrash(ctx context.Context, ownerID string) ([]models.Note, error)
}

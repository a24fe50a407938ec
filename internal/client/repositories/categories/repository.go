// Package categories is the remote-store gateway for note categories.
package categories

import (
	"context"

	"github.com/Kaktotak00p/notes/internal/client/models"
)

type Repository interface {
	FetchAll(ctx context.Context, ownerID string) ([]models.Category, error)
	Get(ctx context.Context, ownerID, id string) (models.Category, error)
	Create(ctx context.Context, c models.Category) (models.Category, error)
	Update(ctx context.Context, ownerID, id string, p models.CategoryPatch) (models.Category, error)

	// Delete uncategorises the owner's notes that reference the category and
	// removes it, atomically.
	Delete(ctx context.Context, ownerID, id string) error
}

// Package profiles is the remote-store gateway for user profiles. A user has
// at most one profile, keyed by the user id.
package profiles

import (
	"context"

	"github.com/Kaktotak00p/notes/internal/client/models"
)

type Repository interface {
	// FetchAll returns the owner's profile, or an empty slice when none exists.
	FetchAll(ctx context.Context, ownerID string) ([]models.Profile, error)
	Get(ctx context.Context, ownerID, id string) (models.Profile, error)
	Create(ctx context.Context, p models.Profile) (models.Profile, error)
	Update(ctx context.Context, ownerID string, p models.ProfilePatch) (models.Profile, error)
}

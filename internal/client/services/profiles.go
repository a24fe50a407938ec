package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/client/repositories/profiles"
	"github.com/Kaktotak00p/notes/internal/client/session"
	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/Kaktotak00p/notes/internal/logging"
)

// ErrAvatarsDisabled is returned by UploadAvatar without avatar storage.
var ErrAvatarsDisabled = errors.New("avatar storage not configured")

// AvatarStorage keeps avatar images. *avatars.S3Store implements it.
type AvatarStorage interface {
	Put(ctx context.Context, ownerID, fileName string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

type ProfileService interface {
	// Get returns the owner's profile from the session snapshot.
	Get() (models.Profile, error)
	Create(ctx context.Context, p models.ProfilePatch) (models.Profile, error)
	Update(ctx context.Context, p models.ProfilePatch) (models.Profile, error)
	// Save updates the profile, creating it first when the owner has none.
	Save(ctx context.Context, p models.ProfilePatch) (models.Profile, error)
	// UploadAvatar stores the image, points avatar_url at it and then removes
	// the previous image.
	UploadAvatar(ctx context.Context, fileName string, data []byte, contentType string) (models.Profile, error)
}

type profileService struct {
	sessions SessionSource
	repo     profiles.Repository
	storage  AvatarStorage
	logger   logging.Logger
}

// NewProfileService wires the profile gateway. storage may be nil.
func NewProfileService(sessions SessionSource, repo profiles.Repository, storage AvatarStorage, logger logging.Logger) ProfileService {
	return &profileService{sessions: sessions, repo: repo, storage: storage, logger: logger.With("module", "profile")}
}

func (s *profileService) Get() (models.Profile, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Profile{}, err
	}
	p, ok := sess.Profile.Snapshot().Get(sess.OwnerID)
	if !ok {
		return models.Profile{}, common.ErrNotFound
	}
	return p, nil
}

func (s *profileService) Create(ctx context.Context, p models.ProfilePatch) (models.Profile, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Profile{}, err
	}

	created, err := s.repo.Create(ctx, p.Apply(models.Profile{ID: sess.OwnerID}))
	if err != nil {
		return models.Profile{}, fmt.Errorf("error creating profile: %w", err)
	}

	sess.Profile.ApplyLocal(models.Inserted(created))
	return created, nil
}

func (s *profileService) Update(ctx context.Context, p models.ProfilePatch) (models.Profile, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Profile{}, err
	}
	return s.update(ctx, sess, p)
}

func (s *profileService) update(ctx context.Context, sess *session.Session, p models.ProfilePatch) (models.Profile, error) {
	updated, err := s.repo.Update(ctx, sess.OwnerID, p)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			sess.Profile.ApplyLocal(models.Deleted(models.Profile{ID: sess.OwnerID}))
		}
		return models.Profile{}, fmt.Errorf("error updating profile: %w", err)
	}

	sess.Profile.ApplyLocal(models.Updated(updated))
	return updated, nil
}

func (s *profileService) Save(ctx context.Context, p models.ProfilePatch) (models.Profile, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Profile{}, err
	}

	updated, err := s.update(ctx, sess, p)
	if errors.Is(err, common.ErrNotFound) {
		return s.Create(ctx, p)
	}
	return updated, err
}

func (s *profileService) UploadAvatar(ctx context.Context, fileName string, data []byte, contentType string) (models.Profile, error) {
	if s.storage == nil {
		return models.Profile{}, ErrAvatarsDisabled
	}
	sess, err := current(s.sessions)
	if err != nil {
		return models.Profile{}, err
	}

	var prev string
	if p, ok := sess.Profile.Snapshot().Get(sess.OwnerID); ok && p.AvatarURL != nil {
		prev = *p.AvatarURL
	}

	key, err := s.storage.Put(ctx, sess.OwnerID, fileName, data, contentType)
	if err != nil {
		return models.Profile{}, fmt.Errorf("error uploading avatar: %w", err)
	}

	updated, err := s.Save(ctx, models.ProfilePatch{AvatarURL: &key})
	if err != nil {
		return models.Profile{}, err
	}

	if prev != "" && prev != key {
		if err := s.storage.Remove(ctx, prev); err != nil {
			s.logger.Warn(ctx, "previous avatar not removed", "key", prev, "error", err)
		}
	}
	return updated, nil
}

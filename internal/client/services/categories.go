package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/client/repositories/categories"
	"github.com/Kaktotak00p/notes/internal/common"
)

type CategoryService interface {
	List() ([]models.Category, error)
	Get(id string) (models.Category, error)
	Create(ctx context.Context, label string) (models.Category, error)
	Rename(ctx context.Context, id, label string) (models.Category, error)
	// Delete removes the category and uncategorises its notes.
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	sessions SessionSource
	repo     categories.Repository
}

func NewCategoryService(sessions SessionSource, repo categories.Repository) CategoryService {
	return &categoryService{sessions: sessions, repo: repo}
}

func (s *categoryService) List() ([]models.Category, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return nil, err
	}
	return models.SortCategoriesByLabel(sess.Categories.Snapshot().Items()), nil
}

func (s *categoryService) Get(id string) (models.Category, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Category{}, err
	}
	c, ok := sess.Categories.Snapshot().Get(id)
	if !ok {
		return models.Category{}, common.ErrNotFound
	}
	return c, nil
}

func (s *categoryService) Create(ctx context.Context, label string) (models.Category, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Category{}, err
	}

	c, err := s.repo.Create(ctx, models.Category{OwnerID: sess.OwnerID, Label: label})
	if err != nil {
		return models.Category{}, fmt.Errorf("error creating category: %w", err)
	}

	sess.Categories.ApplyLocal(models.Inserted(c))
	return c, nil
}

func (s *categoryService) Rename(ctx context.Context, id, label string) (models.Category, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Category{}, err
	}

	c, err := s.repo.Update(ctx, sess.OwnerID, id, models.CategoryPatch{Label: &label})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			sess.Categories.ApplyLocal(models.Deleted(models.Category{ID: id, OwnerID: sess.OwnerID}))
		}
		return models.Category{}, fmt.Errorf("error renaming category: %w", err)
	}

	sess.Categories.ApplyLocal(models.Updated(c))
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	sess, err := current(s.sessions)
	if err != nil {
		return err
	}

	err = s.repo.Delete(ctx, sess.OwnerID, id)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("error deleting category: %w", err)
	}

	sess.Categories.ApplyLocal(models.Deleted(models.Category{ID: id, OwnerID: sess.OwnerID}))
	for n := range sess.Notes.Snapshot().All() {
		if n.CategoryID != nil && *n.CategoryID == id {
			n.CategoryID = nil
			sess.Notes.ApplyLocal(models.Updated(n))
		}
	}
	if err != nil {
		return fmt.Errorf("error deleting category: %w", err)
	}
	return nil
}

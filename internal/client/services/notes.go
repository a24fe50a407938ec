package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/client/repositories/notes"
	"github.com/Kaktotak00p/notes/internal/client/session"
	"github.com/Kaktotak00p/notes/internal/common"
)

type NoteService interface {
	// Active lists notes outside the trash by last update.
	Active(newestFirst bool) ([]models.Note, error)
	Trash() ([]models.Note, error)
	Get(id string) (models.Note, error)
	Last() (models.Note, error)

	Create(ctx context.Context, fileName, content string, categoryID *string) (models.Note, error)
	Update(ctx context.Context, id string, p models.NotePatch) (models.Note, error)
	MoveToTrash(ctx context.Context, id string) (models.Note, error)
	Restore(ctx context.Context, id string) (models.Note, error)
	RestoreAll(ctx context.Context) (int, error)
	EmptyTrash(ctx context.Context) (int, error)
	// Delete removes a note permanently.
	Delete(ctx context.Context, id string) error
}

type noteService struct {
	sessions SessionSource
	repo     notes.Repository
}

func NewNoteService(sessions SessionSource, repo notes.Repository) NoteService {
	return &noteService{sessions: sessions, repo: repo}
}

func (s *noteService) Active(newestFirst bool) ([]models.Note, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return nil, err
	}
	return models.SortNotesByUpdated(models.ActiveNotes(sess.Notes.Snapshot().Items()), newestFirst), nil
}

func (s *noteService) Trash() ([]models.Note, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return nil, err
	}
	return models.TrashedNotes(sess.Notes.Snapshot().Items()), nil
}

func (s *noteService) Get(id string) (models.Note, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Note{}, err
	}
	n, ok := sess.Notes.Snapshot().Get(id)
	if !ok {
		return models.Note{}, common.ErrNotFound
	}
	return n, nil
}

func (s *noteService) Last() (models.Note, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Note{}, err
	}
	n, ok := models.LastCreatedNote(models.ActiveNotes(sess.Notes.Snapshot().Items()))
	if !ok {
		return models.Note{}, common.ErrNotFound
	}
	return n, nil
}

func (s *noteService) Create(ctx context.Context, fileName, content string, categoryID *string) (models.Note, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Note{}, err
	}

	n, err := s.repo.Create(ctx, models.Note{
		OwnerID:    sess.OwnerID,
		FileName:   fileName,
		Content:    content,
		CategoryID: categoryID,
	})
	if err != nil {
		return models.Note{}, fmt.Errorf("error creating note: %w", err)
	}

	sess.Notes.ApplyLocal(models.Inserted(n))
	return n, nil
}

func (s *noteService) Update(ctx context.Context, id string, p models.NotePatch) (models.Note, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Note{}, err
	}

	n, err := s.repo.Update(ctx, sess.OwnerID, id, p)
	if err != nil {
		s.forgetIfGone(sess, id, err)
		return models.Note{}, fmt.Errorf("error updating note: %w", err)
	}

	sess.Notes.ApplyLocal(models.Updated(n))
	return n, nil
}

func (s *noteService) MoveToTrash(ctx context.Context, id string) (models.Note, error) {
	deleted := true
	return s.Update(ctx, id, models.NotePatch{Deleted: &deleted})
}

func (s *noteService) Restore(ctx context.Context, id string) (models.Note, error) {
	deleted := false
	return s.Update(ctx, id, models.NotePatch{Deleted: &deleted})
}

func (s *noteService) RestoreAll(ctx context.Context) (int, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return 0, err
	}

	restored, err := s.repo.RestoreAll(ctx, sess.OwnerID)
	if err != nil {
		return 0, fmt.Errorf("error restoring notes: %w", err)
	}

	for _, n := range restored {
		sess.Notes.ApplyLocal(models.Updated(n))
	}
	return len(restored), nil
}

func (s *noteService) EmptyTrash(ctx context.Context) (int, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return 0, err
	}

	removed, err := s.repo.EmptyTrash(ctx, sess.OwnerID)
	if err != nil {
		return 0, fmt.Errorf("error emptying trash: %w", err)
	}

	for _, n := range removed {
		sess.Notes.ApplyLocal(models.Deleted(n))
		detachTasks(sess, n.ID)
	}
	return len(removed), nil
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	sess, err := current(s.sessions)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, sess.OwnerID, id); err != nil {
		s.forgetIfGone(sess, id, err)
		return fmt.Errorf("error deleting note: %w", err)
	}

	sess.Notes.ApplyLocal(models.Deleted(models.Note{ID: id, OwnerID: sess.OwnerID}))
	detachTasks(sess, id)
	return nil
}

// forgetIfGone drops a note the remote store no longer has.
func (s *noteService) forgetIfGone(sess *session.Session, id string, err error) {
	if errors.Is(err, common.ErrNotFound) {
		sess.Notes.ApplyLocal(models.Deleted(models.Note{ID: id, OwnerID: sess.OwnerID}))
	}
}

// detachTasks mirrors the remote ON DELETE SET NULL on tasks.note_id.
func detachTasks(sess *session.Session, noteID string) {
	for _, t := range models.TasksForNote(sess.Tasks.Snapshot().Items(), noteID) {
		t.NoteID = nil
		sess.Tasks.ApplyLocal(models.Updated(t))
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kaktotak00p/notes/internal/client/client"
	"github.com/Kaktotak00p/notes/internal/client/dedup"
	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/client/repositories/tasks"
	"github.com/Kaktotak00p/notes/internal/client/session"
	"github.com/Kaktotak00p/notes/internal/common"
)

// Outcome is the result of one create-if-absent attempt. Err is
// common.ErrDuplicateSkipped when the text was already known.
type Outcome struct {
	Text string
	Task models.Task
	Err  error
}

func (o Outcome) Created() bool { return o.Err == nil }
func (o Outcome) Skipped() bool { return errors.Is(o.Err, common.ErrDuplicateSkipped) }

type TaskService interface {
	Open() ([]models.Task, error)
	ForNote(noteID string) ([]models.Task, error)
	Last() (models.Task, error)

	Create(ctx context.Context, text string, due *time.Time, noteID *string) (models.Task, error)
	Update(ctx context.Context, id string, p models.TaskPatch) (models.Task, error)
	Complete(ctx context.Context, id string, done bool) (models.Task, error)
	Delete(ctx context.Context, id string) error

	// CreateExtracted creates a machine-generated task for each candidate
	// whose normalised text is not already known, in order.
	CreateExtracted(ctx context.Context, noteID string, candidates []string) ([]Outcome, error)
	// ExtractFromNote asks the extractor for the note's action items and
	// passes them to CreateExtracted.
	ExtractFromNote(ctx context.Context, noteID string) ([]Outcome, error)
}

type taskService struct {
	sessions  SessionSource
	repo      tasks.Repository
	extractor client.Client
}

func NewTaskService(sessions SessionSource, repo tasks.Repository, extractor client.Client) TaskService {
	return &taskService{sessions: sessions, repo: repo, extractor: extractor}
}

func (s *taskService) Open() ([]models.Task, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return nil, err
	}
	return models.OpenTasks(sess.Tasks.Snapshot().Items()), nil
}

func (s *taskService) ForNote(noteID string) ([]models.Task, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return nil, err
	}
	return models.TasksForNote(sess.Tasks.Snapshot().Items(), noteID), nil
}

func (s *taskService) Last() (models.Task, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Task{}, err
	}
	t, ok := models.LastCreatedTask(sess.Tasks.Snapshot().Items())
	if !ok {
		return models.Task{}, common.ErrNotFound
	}
	return t, nil
}

func (s *taskService) Create(ctx context.Context, text string, due *time.Time, noteID *string) (models.Task, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Task{}, err
	}

	t, err := s.repo.Create(ctx, models.Task{OwnerID: sess.OwnerID, Text: text, DueDate: due, NoteID: noteID})
	if err != nil {
		return models.Task{}, fmt.Errorf("error creating task: %w", err)
	}

	sess.Tasks.ApplyLocal(models.Inserted(t))
	return t, nil
}

func (s *taskService) Update(ctx context.Context, id string, p models.TaskPatch) (models.Task, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return models.Task{}, err
	}

	t, err := s.repo.Update(ctx, sess.OwnerID, id, p)
	if err != nil {
		forgetTaskIfGone(sess, id, err)
		return models.Task{}, fmt.Errorf("error updating task: %w", err)
	}

	sess.Tasks.ApplyLocal(models.Updated(t))
	return t, nil
}

func (s *taskService) Complete(ctx context.Context, id string, done bool) (models.Task, error) {
	return s.Update(ctx, id, models.TaskPatch{Completed: &done})
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	sess, err := current(s.sessions)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, sess.OwnerID, id); err != nil {
		forgetTaskIfGone(sess, id, err)
		return fmt.Errorf("error deleting task: %w", err)
	}

	sess.Tasks.ApplyLocal(models.Deleted(models.Task{ID: id, OwnerID: sess.OwnerID}))
	return nil
}

func (s *taskService) CreateExtracted(ctx context.Context, noteID string, candidates []string) ([]Outcome, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return nil, err
	}

	out := make([]Outcome, 0, len(candidates))
	for _, c := range candidates {
		text := strings.TrimSpace(c)
		if text == "" {
			continue
		}
		t, err := s.createIfAbsent(ctx, sess, noteID, text)
		out = append(out, Outcome{Text: text, Task: t, Err: err})
	}
	return out, nil
}

// createIfAbsent checks the local index, then the remote store, then
// inserts. A concurrent insert of the same hash is rejected by the remote
// unique index and reported as a duplicate too.
func (s *taskService) createIfAbsent(ctx context.Context, sess *session.Session, noteID, text string) (models.Task, error) {
	hash := dedup.Hash(text)
	if sess.Dedup.IsKnown(hash) {
		return models.Task{}, common.ErrDuplicateSkipped
	}

	existing, err := s.repo.FindByHash(ctx, sess.OwnerID, hash)
	switch {
	case err == nil:
		sess.Dedup.Record(hash)
		return existing, common.ErrDuplicateSkipped
	case !errors.Is(err, common.ErrNotFound):
		return models.Task{}, fmt.Errorf("error checking for duplicate: %w", err)
	}

	task := models.Task{
		OwnerID:     sess.OwnerID,
		Text:        text,
		AIGenerated: true,
		Hash:        &hash,
	}
	if noteID != "" {
		task.NoteID = &noteID
	}

	created, err := s.repo.Create(ctx, task)
	if errors.Is(err, common.ErrDuplicateSkipped) {
		sess.Dedup.Record(hash)
		return models.Task{}, err
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("error creating task: %w", err)
	}

	sess.Dedup.Record(hash)
	sess.Tasks.ApplyLocal(models.Inserted(created))
	return created, nil
}

func (s *taskService) ExtractFromNote(ctx context.Context, noteID string) ([]Outcome, error) {
	sess, err := current(s.sessions)
	if err != nil {
		return nil, err
	}

	note, ok := sess.Notes.Snapshot().Get(noteID)
	if !ok {
		return nil, fmt.Errorf("note %s: %w", noteID, common.ErrNotFound)
	}

	candidates, err := s.extractor.Extract(ctx, note.Content)
	if err != nil {
		return nil, fmt.Errorf("error extracting tasks: %w", err)
	}

	return s.CreateExtracted(ctx, noteID, candidates)
}

func forgetTaskIfGone(sess *session.Session, id string, err error) {
	if errors.Is(err, common.ErrNotFound) {
		sess.Tasks.ApplyLocal(models.Deleted(models.Task{ID: id, OwnerID: sess.OwnerID}))
	}
}

package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Kaktotak00p/notes/internal/client/feed"
	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/client/repositories/categories"
	"github.com/Kaktotak00p/notes/internal/client/repositories/notes"
	"github.com/Kaktotak00p/notes/internal/client/repositories/profiles"
	"github.com/Kaktotak00p/notes/internal/client/repositories/tasks"
	"github.com/Kaktotak00p/notes/internal/client/session"
	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/Kaktotak00p/notes/internal/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// ---- in-memory gateways ----

type memNotes struct {
	notes.Repository
	mu   sync.Mutex
	rows map[string]models.Note
	err  error
}

func (m *memNotes) FetchAll(_ context.Context, owner string) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Note{}
	for _, n := range m.rows {
		if n.OwnerID == owner {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotes) Get(_ context.Context, owner, id string) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok || n.OwnerID != owner {
		return models.Note{}, common.ErrNotFound
	}
	return n, nil
}

func (m *memNotes) Create(_ context.Context, n models.Note) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Note{}, m.err
	}
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	m.rows[n.ID] = n
	return n, nil
}

func (m *memNotes) Update(_ context.Context, owner, id string, p models.NotePatch) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok || n.OwnerID != owner {
		return models.Note{}, common.ErrNotFound
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.FileName != nil {
		n.FileName = *p.FileName
	}
	if p.Deleted != nil {
		n.Deleted = *p.Deleted
	}
	if p.ClearCategory {
		n.CategoryID = nil
	} else if p.CategoryID != nil {
		n.CategoryID = p.CategoryID
	}
	n.UpdatedAt = time.Now()
	m.rows[id] = n
	return n, nil
}

func (m *memNotes) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok || n.OwnerID != owner {
		return common.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memNotes) RestoreAll(_ context.Context, owner string) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Note{}
	for id, n := range m.rows {
		if n.OwnerID == owner && n.Deleted {
			n.Deleted = false
			m.rows[id] = n
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotes) EmptyTrash(_ context.Context, owner string) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Note{}
	for id, n := range m.rows {
		if n.OwnerID == owner && n.Deleted {
			delete(m.rows, id)
			out = append(out, n)
		}
	}
	return out, nil
}

type memTasks struct {
	tasks.Repository
	mu      sync.Mutex
	rows    map[string]models.Task
	creates int
	// raceHash simulates a concurrent client inserting the same hash first.
	raceHash string
}

func (m *memTasks) FetchAll(_ context.Context, owner string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Task{}
	for _, t := range m.rows {
		if t.OwnerID == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasks) Get(_ context.Context, owner, id string) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.OwnerID != owner {
		return models.Task{}, common.ErrNotFound
	}
	return t, nil
}

func (m *memTasks) Create(_ context.Context, t models.Task) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Hash != nil {
		if *t.Hash == m.raceHash {
			return models.Task{}, common.ErrDuplicateSkipped
		}
		for _, row := range m.rows {
			if row.OwnerID == t.OwnerID && row.Hash != nil && *row.Hash == *t.Hash {
				return models.Task{}, common.ErrDuplicateSkipped
			}
		}
	}
	m.creates++
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.rows[t.ID] = t
	return t, nil
}

func (m *memTasks) Update(_ context.Context, owner, id string, p models.TaskPatch) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.OwnerID != owner {
		return models.Task{}, common.ErrNotFound
	}
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	m.rows[id] = t
	return t, nil
}

func (m *memTasks) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.OwnerID != owner {
		return common.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memTasks) FindByHash(_ context.Context, owner, hash string) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.OwnerID == owner && t.Hash != nil && *t.Hash == hash {
			return t, nil
		}
	}
	return models.Task{}, common.ErrNotFound
}

type memCategories struct {
	categories.Repository
	mu   sync.Mutex
	rows map[string]models.Category
}

func (m *memCategories) FetchAll(_ context.Context, owner string) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Category{}
	for _, c := range m.rows {
		if c.OwnerID == owner {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCategories) Get(_ context.Context, owner, id string) (models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.OwnerID != owner {
		return models.Category{}, common.ErrNotFound
	}
	return c, nil
}

func (m *memCategories) Create(_ context.Context, c models.Category) (models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.NewString()
	m.rows[c.ID] = c
	return c, nil
}

func (m *memCategories) Update(_ context.Context, owner, id string, p models.CategoryPatch) (models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.OwnerID != owner {
		return models.Category{}, common.ErrNotFound
	}
	if p.Label != nil {
		c.Label = *p.Label
	}
	m.rows[id] = c
	return c, nil
}

func (m *memCategories) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.OwnerID != owner {
		return common.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memProfiles struct {
	profiles.Repository
	mu   sync.Mutex
	rows map[string]models.Profile
}

func (m *memProfiles) FetchAll(_ context.Context, owner string) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[owner]; ok {
		return []models.Profile{p}, nil
	}
	return []models.Profile{}, nil
}

func (m *memProfiles) Get(_ context.Context, owner, id string) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || id != owner {
		return models.Profile{}, common.ErrNotFound
	}
	return p, nil
}

func (m *memProfiles) Create(_ context.Context, p models.Profile) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[p.ID]; ok {
		return models.Profile{}, common.ErrDuplicateSkipped
	}
	now := time.Now()
	p.UpdatedAt = &now
	m.rows[p.ID] = p
	return p, nil
}

func (m *memProfiles) Update(_ context.Context, owner string, patch models.ProfilePatch) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[owner]
	if !ok {
		return models.Profile{}, common.ErrNotFound
	}
	p = patch.Apply(p)
	now := time.Now()
	p.UpdatedAt = &now
	m.rows[owner] = p
	return p, nil
}

// memAvatars records puts and removes instead of talking to S3.
type memAvatars struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removed   []string
	putErr    error
	removeErr error
	seq       int
}

func (m *memAvatars) Put(_ context.Context, owner, fileName string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return "", m.putErr
	}
	m.seq++
	key := fmt.Sprintf("%s/%d-%s", owner, m.seq, fileName)
	m.objects[key] = data
	return key, nil
}

func (m *memAvatars) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, key)
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.objects, key)
	return nil
}

// ---- feed that never delivers ----

type idleStream struct{}

func (idleStream) Next(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (idleStream) Close(context.Context) error { return nil }

type idleListener struct{}

func (idleListener) Listen(context.Context, string) (feed.Stream, error) { return idleStream{}, nil }

// ---- fixture ----

type fixture struct {
	notes      *memNotes
	tasks      *memTasks
	categories *memCategories
	profiles   *memProfiles
	coord      *session.Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		notes:      &memNotes{rows: map[string]models.Note{}},
		tasks:      &memTasks{rows: map[string]models.Task{}},
		categories: &memCategories{rows: map[string]models.Category{}},
		profiles:   &memProfiles{rows: map[string]models.Profile{}},
	}
	f.coord = session.NewCoordinator(session.Gateways{
		Notes:      f.notes,
		Tasks:      f.tasks,
		Categories: f.categories,
		Profiles:   f.profiles,
	}, idleListener{}, logging.Nop())
	return f
}

func (f *fixture) start(t *testing.T, owner string) *session.Session {
	t.Helper()
	s, err := f.coord.Start(context.Background(), owner)
	require.NoError(t, err)
	t.Cleanup(f.coord.Stop)
	return s
}

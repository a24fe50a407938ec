package cli

import (
	"context"
	"time"

	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/client/services"
	"github.com/Kaktotak00p/notes/internal/client/session"
	"github.com/Kaktotak00p/notes/internal/common"
)

type fakeAuth struct {
	loginToken string
	loginOwner string
	loginErr   error

	resumeOwner string
	resumeErr   error

	logoutCalled bool
	logoutErr    error

	pingErr error
}

func (f *fakeAuth) Login(_ context.Context, token string) (string, error) {
	f.loginToken = token
	return f.loginOwner, f.loginErr
}
func (f *fakeAuth) Resume(context.Context) (string, error) { return f.resumeOwner, f.resumeErr }
func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}
func (f *fakeAuth) Ping(context.Context) error  { return f.pingErr }
func (f *fakeAuth) Close(context.Context) error { return nil }

type fakeSessions struct {
	started  []string
	startErr error
	stopped  int
	resubErr error
	current  *session.Session
}

func (f *fakeSessions) Start(_ context.Context, owner string) (*session.Session, error) {
	f.started = append(f.started, owner)
	return nil, f.startErr
}
func (f *fakeSessions) Stop()                             { f.stopped++ }
func (f *fakeSessions) Resubscribe(context.Context) error { return f.resubErr }
func (f *fakeSessions) Current() *session.Session         { return f.current }

type fakeNotes struct {
	services.NoteService

	active      []models.Note
	newestFirst bool
	trashed     []string
	restoredAll int
}

func (f *fakeNotes) Active(newestFirst bool) ([]models.Note, error) {
	f.newestFirst = newestFirst
	return f.active, nil
}

func (f *fakeNotes) MoveToTrash(_ context.Context, id string) (models.Note, error) {
	f.trashed = append(f.trashed, id)
	return models.Note{ID: id, Deleted: true}, nil
}

func (f *fakeNotes) RestoreAll(context.Context) (int, error) { return f.restoredAll, nil }

type fakeTasks struct {
	services.TaskService

	created   []models.Task
	outcomes  []services.Outcome
	extracted string
}

func (f *fakeTasks) Create(_ context.Context, text string, due *time.Time, noteID *string) (models.Task, error) {
	t := models.Task{ID: "t1", Text: text, DueDate: due, NoteID: noteID}
	f.created = append(f.created, t)
	return t, nil
}

func (f *fakeTasks) ExtractFromNote(_ context.Context, noteID string) ([]services.Outcome, error) {
	f.extracted = noteID
	return f.outcomes, nil
}

type fakeCategories struct {
	services.CategoryService
	labels []string
}

func (f *fakeCategories) Create(_ context.Context, label string) (models.Category, error) {
	f.labels = append(f.labels, label)
	return models.Category{ID: "c1", Label: label}, nil
}

func (f *fakeCategories) Get(id string) (models.Category, error) {
	return models.Category{}, common.ErrNotFound
}

type fakeProfile struct {
	services.ProfileService

	profile  *models.Profile
	saved    []models.ProfilePatch
	uploaded []string
	types    []string
}

func (f *fakeProfile) Get() (models.Profile, error) {
	if f.profile == nil {
		return models.Profile{}, common.ErrNotFound
	}
	return *f.profile, nil
}

func (f *fakeProfile) Save(_ context.Context, p models.ProfilePatch) (models.Profile, error) {
	f.saved = append(f.saved, p)
	base := models.Profile{ID: "u1"}
	if f.profile != nil {
		base = *f.profile
	}
	updated := p.Apply(base)
	f.profile = &updated
	return updated, nil
}

func (f *fakeProfile) UploadAvatar(_ context.Context, fileName string, _ []byte, contentType string) (models.Profile, error) {
	f.uploaded = append(f.uploaded, fileName)
	f.types = append(f.types, contentType)
	key := "u1/1-" + fileName
	return models.Profile{ID: "u1", AvatarURL: &key}, nil
}

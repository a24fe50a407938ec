package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Kaktotak00p/notes/internal/client/dedup"
	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

type fakeClient struct {
	ExtractRet  []string
	ExtractErr  error
	LastContent string

	PingErr  error
	CloseErr error
	Token    string
}

func (f *fakeClient) Extract(_ context.Context, content string) ([]string, error) {
	f.LastContent = content
	return f.ExtractRet, f.ExtractErr
}
func (f *fakeClient) Ping(context.Context) error   { return f.PingErr }
func (f *fakeClient) SetAccessToken(token string) { f.Token = token }
func (f *fakeClient) Close() error                { return f.CloseErr }

func countCreated(out []Outcome) (created, skipped int) {
	for _, o := range out {
		switch {
		case o.Created():
			created++
		case o.Skipped():
			skipped++
		}
	}
	return
}

func TestTaskService_CreateCompleteDelete(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t, "u1")
	svc := NewTaskService(f.coord, f.tasks, &fakeClient{})
	ctx := context.Background()

	task, err := svc.Create(ctx, "Call Bob", nil, nil)
	require.NoError(t, err)
	assert.False(t, task.AIGenerated)

	open, err := svc.Open()
	require.NoError(t, err)
	require.Len(t, open, 1)

	_, err = svc.Complete(ctx, task.ID, true)
	require.NoError(t, err)
	open, _ = svc.Open()
	assert.Empty(t, open)

	require.NoError(t, svc.Delete(ctx, task.ID))
	assert.Equal(t, 0, sess.Tasks.Snapshot().Len())
}

func TestTaskService_DedupAcrossRuns(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t, "u1")
	svc := NewTaskService(f.coord, f.tasks, &fakeClient{})
	ctx := context.Background()

	out, err := svc.CreateExtracted(ctx, "n1", []string{"Call Bob", "Pay rent", "  "})
	require.NoError(t, err)
	created, skipped := countCreated(out)
	assert.Equal(t, 2, created)
	assert.Equal(t, 0, skipped)

	for _, o := range out {
		assert.True(t, o.Task.AIGenerated)
		require.NotNil(t, o.Task.NoteID)
		assert.Equal(t, "n1", *o.Task.NoteID)
	}

	out, err = svc.CreateExtracted(ctx, "n1", []string{"call   BOB", "Pay rent"})
	require.NoError(t, err)
	created, skipped = countCreated(out)
	assert.Equal(t, 0, created)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, 2, f.tasks.creates)
	assert.Equal(t, 2, sess.Tasks.Snapshot().Len())
}

func TestTaskService_DedupFallsBackToRemote(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t, "u1")
	svc := NewTaskService(f.coord, f.tasks, &fakeClient{})
	ctx := context.Background()

	_, err := svc.CreateExtracted(ctx, "", []string{"Call Bob"})
	require.NoError(t, err)

	// Another device knows the hash but this session's index was reset.
	sess.Dedup.Reset(nil)

	out, err := svc.CreateExtracted(ctx, "", []string{"call bob"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Skipped())
	assert.True(t, sess.Dedup.IsKnown(dedup.Hash("Call Bob")))
	assert.Equal(t, 1, f.tasks.creates)
}

func TestTaskService_ConcurrentInsertReportedAsDuplicate(t *testing.T) {
	f := newFixture(t)
	f.start(t, "u1")
	f.tasks.raceHash = dedup.Hash("Pay rent")
	svc := NewTaskService(f.coord, f.tasks, &fakeClient{})

	out, err := svc.CreateExtracted(context.Background(), "", []string{"Pay rent"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.ErrorIs(t, out[0].Err, common.ErrDuplicateSkipped)
}

func TestTaskService_ExtractFromNote(t *testing.T) {
	f := newFixture(t)
	f.start(t, "u1")
	notes := NewNoteService(f.coord, f.notes)
	ext := &fakeClient{ExtractRet: []string{"Call Bob", "Buy milk"}}
	svc := NewTaskService(f.coord, f.tasks, ext)
	ctx := context.Background()

	n, err := notes.Create(ctx, "meeting.txt", "Call Bob tomorrow, buy milk", nil)
	require.NoError(t, err)

	out, err := svc.ExtractFromNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Call Bob tomorrow, buy milk", ext.LastContent)
	created, _ := countCreated(out)
	assert.Equal(t, 2, created)

	forNote, err := svc.ForNote(n.ID)
	require.NoError(t, err)
	assert.Len(t, forNote, 2)

	_, err = svc.ExtractFromNote(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)

	ext.ExtractErr = common.ErrRemoteUnavailable
	_, err = svc.ExtractFromNote(ctx, n.ID)
	require.True(t, errors.Is(err, common.ErrRemoteUnavailable))
}

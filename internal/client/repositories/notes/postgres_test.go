package notes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/Kaktotak00p/notes/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	created = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	updated = created.Add(time.Hour)
	cols    = []string{"id", "user_id", "file_name", "content", "category_id", "created_at", "updated_at", "deleted"}
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db, logging.Nop(), time.Second), mock
}

func ptr[T any](v T) *T { return &v }

/*************
 * FetchAll tests
 *************/

func TestFetchAll_FiltersByOwner(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows(cols).
		AddRow("n1", "u1", "a.md", "hello", "c1", created, updated, false).
		AddRow("n2", "u2", "spy.md", "other user", nil, created, updated, false).
		AddRow("n3", "u1", "b.md", "bye", nil, created, updated, true)
	mock.ExpectQuery(`^SELECT id, user_id, .+ FROM notes WHERE user_id = \$1$`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := repo.FetchAll(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "n1", got[0].ID)
	require.NotNil(t, got[0].CategoryID)
	assert.Equal(t, "c1", *got[0].CategoryID)
	assert.Equal(t, created, got[0].CreatedAt)

	assert.Equal(t, "n3", got[1].ID)
	assert.Nil(t, got[1].CategoryID)
	assert.True(t, got[1].Deleted)
}

func TestFetchAll_FailureIsEmptyAndUnavailable(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM notes`).WithArgs("u1").WillReturnError(errors.New("connection reset"))

	got, err := repo.FetchAll(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrRemoteUnavailable)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchAll_NoRows(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM notes`).WithArgs("u1").WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.FetchAll(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

/*************
 * Create / Get tests
 *************/

func TestCreate_AssignsIDAndReturnsRow(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^INSERT INTO notes \(id, user_id, file_name, content, category_id, deleted\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\) RETURNING id`).
		WithArgs(sqlmock.AnyArg(), "u1", "todo.md", "buy milk", nil, false).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("generated", "u1", "todo.md", "buy milk", nil, created, created, false))

	got, err := repo.Create(context.Background(), models.Note{OwnerID: "u1", FileName: "todo.md", Content: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "generated", got.ID)
	assert.Equal(t, created, got.UpdatedAt)
}

func TestCreate_KeepsGivenID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^INSERT INTO notes`).
		WithArgs("fixed", "u1", "", "", "c9", false).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("fixed", "u1", "", "", "c9", created, created, false))

	got, err := repo.Create(context.Background(), models.Note{ID: "fixed", OwnerID: "u1", CategoryID: ptr("c9")})
	require.NoError(t, err)
	assert.Equal(t, "fixed", got.ID)
}

func TestCreate_Unavailable(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^INSERT INTO notes`).WillReturnError(context.DeadlineExceeded)

	_, err := repo.Create(context.Background(), models.Note{OwnerID: "u1"})
	require.ErrorIs(t, err, common.ErrRemoteUnavailable)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM notes WHERE id = \$1 AND user_id = \$2$`).
		WithArgs("ghost", "u1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "u1", "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

/*************
 * Update tests
 *************/

func TestUpdate_SendsOnlyPresentFields(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^UPDATE notes SET content = \$1, deleted = \$2 WHERE id = \$3 AND user_id = \$4 RETURNING id`).
		WithArgs("new text", true, "n1", "u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("n1", "u1", "a.md", "new text", nil, created, updated, true))

	got, err := repo.Update(context.Background(), "u1", "n1", models.NotePatch{Content: ptr("new text"), Deleted: ptr(true)})
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.Equal(t, "new text", got.Content)
}

func TestUpdate_ClearCategory(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^UPDATE notes SET category_id = \$1 WHERE id = \$2 AND user_id = \$3`).
		WithArgs(nil, "n1", "u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("n1", "u1", "a.md", "", nil, created, updated, false))

	got, err := repo.Update(context.Background(), "u1", "n1", models.NotePatch{CategoryID: ptr("ignored"), ClearCategory: true})
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^UPDATE notes SET file_name = \$1`).
		WithArgs("x", "gone", "u1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "u1", "gone", models.NotePatch{FileName: ptr("x")})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdate_EmptyPatchReads(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT .+ FROM notes WHERE id = \$1 AND user_id = \$2$`).
		WithArgs("n1", "u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("n1", "u1", "a.md", "", nil, created, updated, false))

	got, err := repo.Update(context.Background(), "u1", "n1", models.NotePatch{})
	require.NoError(t, err)
	assert.Equal(t, "n1", got.ID)
}

/*************
 * Delete / trash tests
 *************/

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^DELETE FROM notes WHERE id = \$1 AND user_id = \$2$`).
		WithArgs("n1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM notes`).
		WithArgs("n1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "u1", "n1"))
	require.ErrorIs(t, repo.Delete(context.Background(), "u1", "n1"), common.ErrNotFound)
}

func TestRestoreAll(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^UPDATE notes SET deleted = false WHERE user_id = \$1 AND deleted = true RETURNING`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("n1", "u1", "a", "", nil, created, updated, false).
			AddRow("n2", "u1", "b", "", nil, created, updated, false))

	got, err := repo.RestoreAll(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestEmptyTrash_RunsInTransaction(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE tasks SET note_id = NULL WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`^DELETE FROM notes WHERE user_id = \$1 AND deleted = true RETURNING`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("n9", "u1", "old", "", nil, created, updated, true))
	mock.ExpectCommit()

	got, err := repo.EmptyTrash(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "n9", got[0].ID)
}

func TestEmptyTrash_RollsBackOnError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE tasks`).WithArgs("u1").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := repo.EmptyTrash(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrRemoteUnavailable)
}

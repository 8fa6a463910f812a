package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttbackend/apiserver/types"
)

func newTaskRepoWithMock(t *testing.T) (*TaskRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewTaskRepository(db), mock
}

func TestTaskList(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM task`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`(?s)SELECT\s+task_id,\s*task_description\s+FROM\s+task\s+ORDER BY task_id`).
		WithArgs(0, 20).
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "task_description"}).
			AddRow(1, "first task").
			AddRow(2, nil))

	tasks, total, err := repo.List(context.Background(), 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, tasks, 2)
	require.NotNil(t, tasks[0].Description)
	assert.Equal(t, "first task", *tasks[0].Description)
	assert.Nil(t, tasks[1].Description)
}

func TestTaskCreate(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)

	desc := "write report"
	mock.ExpectQuery(`INSERT\s+INTO\s+task`).
		WithArgs(desc).
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "task_description"}).AddRow(5, desc))

	got, err := repo.Create(context.Background(), types.Task{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, 5, got.ID)
}

func TestTaskGet_NotFound(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+task_id\s*=\s*\$1`).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 9)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTaskDelete_NotFound(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM task`).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Delete(context.Background(), 9), ErrNotFound)
}

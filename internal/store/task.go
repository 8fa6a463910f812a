package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ttbackend/apiserver/types"
)

// TaskRepository handles persistence for tasks.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context, offset, limit int) ([]types.Task, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM task`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT task_id, task_description
		FROM task
		ORDER BY task_id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]types.Task, 0, limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int) (types.Task, error) {
	const query = `
		SELECT task_id, task_description
		FROM task
		WHERE task_id = $1`
	return r.one(ctx, query, id)
}

func (r *TaskRepository) Create(ctx context.Context, task types.Task) (types.Task, error) {
	const query = `
		INSERT INTO task (task_description)
		VALUES ($1)
		RETURNING task_id, task_description`
	return r.one(ctx, query, task.Description)
}

func (r *TaskRepository) Update(ctx context.Context, task types.Task) (types.Task, error) {
	const query = `
		UPDATE task
		SET task_description = $2
		WHERE task_id = $1
		RETURNING task_id, task_description`
	return r.one(ctx, query, task.ID, task.Description)
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM task WHERE task_id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *TaskRepository) one(ctx context.Context, query string, args ...any) (types.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	return task, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (types.Task, error) {
	var (
		task        types.Task
		description sql.NullString
	)
	if err := row.Scan(&task.ID, &description); err != nil {
		return types.Task{}, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	return task, nil
}

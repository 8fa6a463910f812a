package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ttbackend/apiserver/types"
)

// ErrInvalidTask is returned for a task payload that cannot be stored.
var ErrInvalidTask = errors.New("invalid task")

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Task, int, error)
	Get(ctx context.Context, id int) (types.Task, error)
	Create(ctx context.Context, task types.Task) (types.Task, error)
	Update(ctx context.Context, task types.Task) (types.Task, error)
	Delete(ctx context.Context, id int) error
}

// TaskService encapsulates task use-cases.
type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) List(ctx context.Context, offset, limit int) ([]types.Task, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *TaskService) Get(ctx context.Context, id int) (types.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) Create(ctx context.Context, task types.Task) (types.Task, error) {
	task.Description = normalizeDescription(task.Description)
	return s.repo.Create(ctx, task)
}

func (s *TaskService) Update(ctx context.Context, task types.Task) (types.Task, error) {
	if task.ID < 1 {
		return types.Task{}, ErrInvalidTask
	}
	task.Description = normalizeDescription(task.Description)
	return s.repo.Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// normalizeDescription maps blank descriptions to NULL.
func normalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

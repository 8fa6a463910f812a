package services

import (
	"context"

	"github.com/ttbackend/apiserver/types"
)

// EmployeeRepository defines read access to employee profiles.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id int) (types.Employee, error)
}

// EmployeeService encapsulates employee profile use-cases.
type EmployeeService struct {
	repo EmployeeRepository
}

func NewEmployeeService(repo EmployeeRepository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

func (s *EmployeeService) GetByID(ctx context.Context, id int) (types.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

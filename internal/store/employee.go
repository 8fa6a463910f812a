package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ttbackend/apiserver/types"
)

// EmployeeRepository handles read access to employee profiles.
type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int) (types.Employee, error) {
	const query = `
		SELECT employee_id, first_name, last_name, email, pw_salt IS NULL
		FROM employee
		WHERE employee_id = $1`
	var employee types.Employee
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&employee.Email,
		&employee.FirstLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Employee{}, ErrNotFound
		}
		return types.Employee{}, err
	}
	return employee, nil
}

package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

type contextKey string

const employeeIDKey contextKey = "employee_id"

// ErrNoIdentity is returned when a context carries no authenticated employee.
var ErrNoIdentity = errors.New("no authenticated employee")

// WithEmployeeID returns a child context carrying the authenticated employee.
func WithEmployeeID(ctx context.Context, employeeID int) context.Context {
	return context.WithValue(ctx, employeeIDKey, employeeID)
}

// EmployeeIDFromContext returns the employee attached by the authentication gate.
func EmployeeIDFromContext(ctx context.Context) (int, error) {
	id, ok := ctx.Value(employeeIDKey).(int)
	if !ok || id < 1 {
		return 0, ErrNoIdentity
	}
	return id, nil
}

// Subject renders an employee id as a token subject.
func Subject(employeeID int) string {
	return strconv.Itoa(employeeID)
}

// EmployeeID parses a token subject back into an employee id.
func (c *Claims) EmployeeID() (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Subject))
	if err != nil || id < 1 {
		return 0, ErrTokenRejected
	}
	return id, nil
}

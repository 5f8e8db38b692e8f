package employee

import (
	"context"
	"time"
)

// EmployeeRepository defines data access methods for employees.
// Soft-deleted employees are invisible to every read.
type EmployeeRepository interface {
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	List(ctx context.Context, companyID string) ([]Employee, error)
	Update(ctx context.Context, employee Employee) error
	SoftDelete(ctx context.Context, id string, companyID string, deletedAt time.Time) error

	CreateSalaryHistory(ctx context.Context, history SalaryHistory) (SalaryHistory, error)
	ListSalaryHistory(ctx context.Context, employeeID string, companyID string) ([]SalaryHistory, error)
	DeleteSalaryHistory(ctx context.Context, employeeID string, companyID string) error
}

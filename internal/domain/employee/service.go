package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)

	// UpdateEmployee applies a partial update; a salary change appends a SalaryHistory row
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// DeleteEmployee removes unpaid payroll entries and salary history, keeps paid entries
	// and soft deletes the employee
	DeleteEmployee(ctx context.Context, id string) error

	GetSalaryHistory(ctx context.Context, id string) ([]SalaryHistoryResponse, error)

	// GetBalance returns display-only aggregates of unpaid salary and outstanding advances
	GetBalance(ctx context.Context, id string) (BalanceResponse, error)
}

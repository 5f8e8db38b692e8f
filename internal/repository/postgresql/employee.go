package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, company_id, name, position, current_salary, overtime_eligible, hire_date, created_at, updated_at, deleted_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.Name, &e.Position, &e.CurrentSalary, &e.OvertimeEligible,
		&e.HireDate, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	return e, err
}

func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (id, company_id, name, position, current_salary, overtime_eligible, hire_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.CompanyID, newEmployee.Name, newEmployee.Position, newEmployee.CurrentSalary,
		newEmployee.OvertimeEligible, newEmployee.HireDate, newEmployee.CreatedAt, newEmployee.UpdatedAt,
	))
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`

	e, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (r *employeeRepository) List(ctx context.Context, companyID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE company_id = $1 AND deleted_at IS NULL ORDER BY name, id`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *employeeRepository) Update(ctx context.Context, e employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET name = $3, position = $4, current_salary = $5, overtime_eligible = $6, hire_date = $7, updated_at = $8
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
	`

	tag, err := q.Exec(ctx, query, e.ID, e.CompanyID, e.Name, e.Position, e.CurrentSalary, e.OvertimeEligible, e.HireDate, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepository) SoftDelete(ctx context.Context, id string, companyID string, deletedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE employees SET deleted_at = $3, updated_at = $3 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`

	tag, err := q.Exec(ctx, query, id, companyID, deletedAt)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepository) CreateSalaryHistory(ctx context.Context, h employee.SalaryHistory) (employee.SalaryHistory, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_history (id, company_id, employee_id, old_salary, new_salary, increment_percentage, effective_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		h.ID, h.CompanyID, h.EmployeeID, h.OldSalary, h.NewSalary, h.IncrementPercentage, h.EffectiveDate, h.Notes, h.CreatedAt,
	)
	if err != nil {
		return employee.SalaryHistory{}, fmt.Errorf("failed to create salary history: %w", err)
	}
	return h, nil
}

func (r *employeeRepository) ListSalaryHistory(ctx context.Context, employeeID string, companyID string) ([]employee.SalaryHistory, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, old_salary, new_salary, increment_percentage, effective_date, notes, created_at
		FROM salary_history
		WHERE employee_id = $1 AND company_id = $2
		ORDER BY effective_date DESC, created_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary history: %w", err)
	}
	defer rows.Close()

	var history []employee.SalaryHistory
	for rows.Next() {
		var h employee.SalaryHistory
		if err := rows.Scan(
			&h.ID, &h.CompanyID, &h.EmployeeID, &h.OldSalary, &h.NewSalary, &h.IncrementPercentage, &h.EffectiveDate, &h.Notes, &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan salary history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *employeeRepository) DeleteSalaryHistory(ctx context.Context, employeeID string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM salary_history WHERE employee_id = $1 AND company_id = $2`, employeeID, companyID); err != nil {
		return fmt.Errorf("failed to delete salary history: %w", err)
	}
	return nil
}

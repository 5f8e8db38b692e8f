package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	err := r.store.do(ctx, func(st *state) error {
		st.employees[newEmployee.ID] = newEmployee
		return nil
	})
	return newEmployee, err
}

func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	var found employee.Employee
	err := r.store.do(ctx, func(st *state) error {
		e, ok := st.employees[id]
		if !ok || e.CompanyID != companyID || e.DeletedAt != nil {
			return employee.ErrEmployeeNotFound
		}
		found = e
		return nil
	})
	return found, err
}

func (r *employeeRepository) List(ctx context.Context, companyID string) ([]employee.Employee, error) {
	var result []employee.Employee
	err := r.store.do(ctx, func(st *state) error {
		for _, e := range st.employees {
			if e.CompanyID == companyID && e.DeletedAt == nil {
				result = append(result, e)
			}
		}
		return nil
	})
	slices.SortFunc(result, func(a, b employee.Employee) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, err
}

func (r *employeeRepository) Update(ctx context.Context, updated employee.Employee) error {
	return r.store.do(ctx, func(st *state) error {
		e, ok := st.employees[updated.ID]
		if !ok || e.CompanyID != updated.CompanyID || e.DeletedAt != nil {
			return employee.ErrEmployeeNotFound
		}
		st.employees[updated.ID] = updated
		return nil
	})
}

func (r *employeeRepository) SoftDelete(ctx context.Context, id string, companyID string, deletedAt time.Time) error {
	return r.store.do(ctx, func(st *state) error {
		e, ok := st.employees[id]
		if !ok || e.CompanyID != companyID || e.DeletedAt != nil {
			return employee.ErrEmployeeNotFound
		}
		e.DeletedAt = &deletedAt
		e.UpdatedAt = deletedAt
		st.employees[id] = e
		return nil
	})
}

func (r *employeeRepository) CreateSalaryHistory(ctx context.Context, history employee.SalaryHistory) (employee.SalaryHistory, error) {
	err := r.store.do(ctx, func(st *state) error {
		st.salaryHistory[history.ID] = history
		return nil
	})
	return history, err
}

func (r *employeeRepository) ListSalaryHistory(ctx context.Context, employeeID string, companyID string) ([]employee.SalaryHistory, error) {
	var result []employee.SalaryHistory
	err := r.store.do(ctx, func(st *state) error {
		for _, h := range st.salaryHistory {
			if h.EmployeeID == employeeID && h.CompanyID == companyID {
				result = append(result, h)
			}
		}
		return nil
	})
	slices.SortFunc(result, func(a, b employee.SalaryHistory) int {
		if c := a.EffectiveDate.Compare(b.EffectiveDate); c != 0 {
			return -c
		}
		return -a.CreatedAt.Compare(b.CreatedAt)
	})
	return result, err
}

func (r *employeeRepository) DeleteSalaryHistory(ctx context.Context, employeeID string, companyID string) error {
	return r.store.do(ctx, func(st *state) error {
		for id, h := range st.salaryHistory {
			if h.EmployeeID == employeeID && h.CompanyID == companyID {
				delete(st.salaryHistory, id)
			}
		}
		return nil
	})
}

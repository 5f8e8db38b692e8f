package employee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const eventEmployeeChanged = "employee.changed"

type EmployeeServiceImpl struct {
	transactor      database.Transactor
	employeeRepo    employee.EmployeeRepository
	payrollRepo     payroll.PayrollRepository
	payrollService  payroll.PayrollService
	advanceService  advance.AdvanceService
	activityService activity.Service
	hub             *sse.Hub
	now             func() time.Time
}

func NewEmployeeService(
	transactor database.Transactor,
	employeeRepo employee.EmployeeRepository,
	payrollRepo payroll.PayrollRepository,
	payrollService payroll.PayrollService,
	advanceService advance.AdvanceService,
	activityService activity.Service,
	hub *sse.Hub,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		transactor:      transactor,
		employeeRepo:    employeeRepo,
		payrollRepo:     payrollRepo,
		payrollService:  payrollService,
		advanceService:  advanceService,
		activityService: activityService,
		hub:             hub,
		now:             time.Now,
	}
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	hireDate, _ := validator.IsValidDate(req.HireDate)
	if hireDate.After(today(s.now())) {
		return employee.EmployeeResponse{}, employee.ErrFutureHireDate
	}

	now := s.now()
	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		ID:               uuid.Must(uuid.NewV7()).String(),
		CompanyID:        companyID,
		Name:             req.Name,
		Position:         req.Position,
		CurrentSalary:    money.Round(req.CurrentSalary.Decimal()),
		OvertimeEligible: req.OvertimeEligible,
		HireDate:         hireDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "employee.created",
		Module:      activity.ModuleEmployee,
		TargetID:    created.ID,
		Description: fmt.Sprintf("Added employee %s", created.Name),
	})
	s.hub.Publish(companyID, eventEmployeeChanged, map[string]string{"id": created.ID})

	return employee.ToResponse(created), nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return employee.ToResponse(emp), nil
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	result := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		result = append(result, employee.ToResponse(emp))
	}
	return result, nil
}

func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	var updated employee.Employee
	var salaryChanged bool

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.employeeRepo.GetByID(ctx, req.ID, companyID)
		if err != nil {
			return err
		}

		now := s.now()
		updated = current
		updated.UpdatedAt = now

		if req.Name != nil {
			updated.Name = *req.Name
		}
		if req.Position != nil {
			updated.Position = *req.Position
		}
		if req.OvertimeEligible != nil {
			updated.OvertimeEligible = *req.OvertimeEligible
		}
		if req.HireDate != nil {
			hireDate, _ := validator.IsValidDate(*req.HireDate)
			if hireDate.After(today(now)) {
				return employee.ErrFutureHireDate
			}
			updated.HireDate = hireDate
		}

		if req.CurrentSalary != nil {
			newSalary := money.Round(req.CurrentSalary.Decimal())
			if !newSalary.Equal(current.CurrentSalary) {
				salaryChanged = true
				updated.CurrentSalary = newSalary

				effective := today(now)
				if req.EffectiveDate != nil {
					effective, _ = validator.IsValidDate(*req.EffectiveDate)
				}

				if _, err := s.employeeRepo.CreateSalaryHistory(ctx, employee.SalaryHistory{
					ID:                  uuid.Must(uuid.NewV7()).String(),
					CompanyID:           companyID,
					EmployeeID:          current.ID,
					OldSalary:           current.CurrentSalary,
					NewSalary:           newSalary,
					IncrementPercentage: money.Percentage(current.CurrentSalary, newSalary),
					EffectiveDate:       effective,
					Notes:               req.SalaryNotes,
					CreatedAt:           now,
				}); err != nil {
					return fmt.Errorf("failed to record salary history: %w", err)
				}
			}
		}

		return s.employeeRepo.Update(ctx, updated)
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	description := fmt.Sprintf("Updated employee %s", updated.Name)
	if salaryChanged {
		description = fmt.Sprintf("Updated employee %s, salary now %s", updated.Name, money.Format(updated.CurrentSalary))
	}
	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "employee.updated",
		Module:      activity.ModuleEmployee,
		TargetID:    updated.ID,
		Description: description,
	})
	s.hub.Publish(companyID, eventEmployeeChanged, map[string]string{"id": updated.ID})

	return employee.ToResponse(updated), nil
}

func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	var (
		emp     employee.Employee
		removed int
	)
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err = s.employeeRepo.GetByID(ctx, id, companyID)
		if err != nil {
			return err
		}

		removed, err = s.payrollService.RemoveUnpaidEntriesForEmployee(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to remove unpaid payroll entries: %w", err)
		}

		if err := s.employeeRepo.DeleteSalaryHistory(ctx, id, companyID); err != nil {
			return fmt.Errorf("failed to delete salary history: %w", err)
		}

		return s.employeeRepo.SoftDelete(ctx, id, companyID, s.now())
	})
	if err != nil {
		return err
	}

	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "employee.deleted",
		Module:      activity.ModuleEmployee,
		TargetID:    id,
		Description: fmt.Sprintf("Deleted employee %s", emp.Name),
		Metadata:    map[string]interface{}{"removed_unpaid_entries": removed},
	})
	s.hub.Publish(companyID, eventEmployeeChanged, map[string]string{"id": id})

	return nil
}

func (s *EmployeeServiceImpl) GetSalaryHistory(ctx context.Context, id string) ([]employee.SalaryHistoryResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, id, companyID); err != nil {
		return nil, err
	}

	history, err := s.employeeRepo.ListSalaryHistory(ctx, id, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary history: %w", err)
	}

	result := make([]employee.SalaryHistoryResponse, 0, len(history))
	for _, h := range history {
		result = append(result, employee.SalaryHistoryResponse{
			ID:                  h.ID,
			EmployeeID:          h.EmployeeID,
			OldSalary:           h.OldSalary,
			NewSalary:           h.NewSalary,
			IncrementPercentage: h.IncrementPercentage,
			EffectiveDate:       h.EffectiveDate.Format("2006-01-02"),
			Notes:               h.Notes,
			CreatedAt:           h.CreatedAt,
		})
	}
	return result, nil
}

func (s *EmployeeServiceImpl) GetBalance(ctx context.Context, id string) (employee.BalanceResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return employee.BalanceResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, id, companyID); err != nil {
		return employee.BalanceResponse{}, err
	}

	entries, err := s.payrollRepo.ListEntriesByEmployee(ctx, companyID, id)
	if err != nil {
		return employee.BalanceResponse{}, fmt.Errorf("failed to list payroll entries: %w", err)
	}

	unpaid := decimal.Zero
	for _, e := range entries {
		if !e.IsPaid {
			unpaid = money.Add(unpaid, e.NetSalary)
		}
	}

	// Claimed advances are already netted out of the unpaid entries
	unclaimed, err := s.advanceService.EligibleForDeduction(ctx, id)
	if err != nil {
		return employee.BalanceResponse{}, err
	}
	outstanding := decimal.Zero
	for _, a := range unclaimed {
		outstanding = money.Add(outstanding, a.RemainingAmount)
	}

	return employee.BalanceResponse{
		EmployeeID:          id,
		UnpaidSalary:        money.Round(unpaid),
		OutstandingAdvances: money.Round(outstanding),
		NetBalance:          money.Round(money.Sub(unpaid, outstanding)),
	}, nil
}

package overtime

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const eventOvertimeChanged = "overtime.changed"

type OvertimeServiceImpl struct {
	overtimeRepo    overtime.OvertimeRepository
	employeeRepo    employee.EmployeeRepository
	activityService activity.Service
	hub             *sse.Hub
	now             func() time.Time
}

func NewOvertimeService(
	overtimeRepo overtime.OvertimeRepository,
	employeeRepo employee.EmployeeRepository,
	activityService activity.Service,
	hub *sse.Hub,
) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		overtimeRepo:    overtimeRepo,
		employeeRepo:    employeeRepo,
		activityService: activityService,
		hub:             hub,
		now:             time.Now,
	}
}

// checkDate validates a work date against today and the employee's hire date
func (s *OvertimeServiceImpl) checkDate(emp employee.Employee, date time.Time) error {
	y, m, d := s.now().Date()
	if date.After(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		return overtime.ErrFutureDate
	}
	if date.Before(emp.HireDate) {
		return overtime.ErrDateBeforeHireDate
	}
	return nil
}

func (s *OvertimeServiceImpl) RecordEntry(ctx context.Context, req overtime.RecordEntryRequest) (overtime.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.EntryResponse{}, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return overtime.EntryResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID)
	if err != nil {
		return overtime.EntryResponse{}, err
	}
	if !emp.OvertimeEligible {
		return overtime.EntryResponse{}, overtime.ErrEmployeeNotOvertimeEligible
	}

	date, _ := validator.IsValidDate(req.Date)
	if err := s.checkDate(emp, date); err != nil {
		return overtime.EntryResponse{}, err
	}

	now := s.now()
	created, err := s.overtimeRepo.Create(ctx, overtime.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EmployeeID: emp.ID,
		Date:       date,
		Hours:      req.Hours,
		Month:      overtime.MonthOf(date),
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return overtime.EntryResponse{}, fmt.Errorf("failed to record overtime: %w", err)
	}

	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "overtime.recorded",
		Module:      activity.ModuleOvertime,
		TargetID:    created.ID,
		Description: fmt.Sprintf("Recorded %s overtime hours for %s on %s", created.Hours.String(), emp.Name, req.Date),
	})
	s.hub.Publish(companyID, eventOvertimeChanged, map[string]string{"id": created.ID, "month": created.Month})

	return overtime.ToResponse(created), nil
}

func (s *OvertimeServiceImpl) UpdateEntry(ctx context.Context, req overtime.UpdateEntryRequest) (overtime.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.EntryResponse{}, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return overtime.EntryResponse{}, err
	}

	current, err := s.overtimeRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return overtime.EntryResponse{}, err
	}
	if current.IsLocked() {
		return overtime.EntryResponse{}, overtime.ErrOvertimeEntryLocked
	}

	emp, err := s.employeeRepo.GetByID(ctx, current.EmployeeID, companyID)
	if err != nil {
		return overtime.EntryResponse{}, err
	}

	date, _ := validator.IsValidDate(req.Date)
	if err := s.checkDate(emp, date); err != nil {
		return overtime.EntryResponse{}, err
	}

	updated := current
	updated.Date = date
	updated.Month = overtime.MonthOf(date)
	updated.Hours = req.Hours
	updated.Notes = req.Notes
	updated.UpdatedAt = s.now()

	if err := s.overtimeRepo.Update(ctx, updated); err != nil {
		return overtime.EntryResponse{}, err
	}

	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "overtime.updated",
		Module:      activity.ModuleOvertime,
		TargetID:    updated.ID,
		Description: fmt.Sprintf("Updated overtime for %s on %s to %s hours", emp.Name, req.Date, updated.Hours.String()),
	})
	s.hub.Publish(companyID, eventOvertimeChanged, map[string]string{"id": updated.ID, "month": updated.Month})

	return overtime.ToResponse(updated), nil
}

func (s *OvertimeServiceImpl) DeleteEntry(ctx context.Context, id string) error {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	current, err := s.overtimeRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return err
	}

	if err := s.overtimeRepo.Delete(ctx, id, companyID); err != nil {
		return err
	}

	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "overtime.deleted",
		Module:      activity.ModuleOvertime,
		TargetID:    id,
		Description: fmt.Sprintf("Deleted overtime entry of %s", current.Date.Format("2006-01-02")),
	})
	s.hub.Publish(companyID, eventOvertimeChanged, map[string]string{"id": id, "month": current.Month})

	return nil
}

func (s *OvertimeServiceImpl) ListEntries(ctx context.Context, filter overtime.ListFilter) ([]overtime.EntryResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.overtimeRepo.List(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime entries: %w", err)
	}

	result := make([]overtime.EntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, overtime.ToResponse(e))
	}
	return result, nil
}

func (s *OvertimeServiceImpl) HoursForEmployeeMonth(ctx context.Context, employeeID string, month string) (decimal.Decimal, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	entries, err := s.overtimeRepo.List(ctx, companyID, overtime.ListFilter{EmployeeID: employeeID, Month: month})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list overtime entries: %w", err)
	}

	total := decimal.Zero
	for _, e := range entries {
		total = money.Add(total, e.Hours)
	}
	return total, nil
}

// SummaryByEmployee groups the month's entries per employee, ordered by employee name
func (s *OvertimeServiceImpl) SummaryByEmployee(ctx context.Context, month string) ([]overtime.EmployeeSummary, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.overtimeRepo.List(ctx, companyID, overtime.ListFilter{Month: month})
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime entries: %w", err)
	}

	byEmployee := make(map[string]*overtime.EmployeeSummary)
	for _, e := range entries {
		summary, ok := byEmployee[e.EmployeeID]
		if !ok {
			summary = &overtime.EmployeeSummary{EmployeeID: e.EmployeeID, TotalHours: decimal.Zero}
			emp, err := s.employeeRepo.GetByID(ctx, e.EmployeeID, companyID)
			switch {
			case err == nil:
				summary.EmployeeName = emp.Name
			case !errors.Is(err, employee.ErrEmployeeNotFound):
				return nil, err
			}
			byEmployee[e.EmployeeID] = summary
		}
		summary.TotalHours = money.Add(summary.TotalHours, e.Hours)
		summary.Entries = append(summary.Entries, overtime.ToResponse(e))
	}

	result := make([]overtime.EmployeeSummary, 0, len(byEmployee))
	for _, summary := range byEmployee {
		result = append(result, *summary)
	}
	slices.SortFunc(result, func(a, b overtime.EmployeeSummary) int {
		return cmp.Or(strings.Compare(a.EmployeeName, b.EmployeeName), strings.Compare(a.EmployeeID, b.EmployeeID))
	})
	return result, nil
}

func (s *OvertimeServiceImpl) LinkToPayroll(ctx context.Context, payrollID string, entryIDs []string) error {
	if len(entryIDs) == 0 {
		return nil
	}
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	return s.overtimeRepo.LinkToPayroll(ctx, companyID, payrollID, entryIDs)
}

func (s *OvertimeServiceImpl) UnlinkPayroll(ctx context.Context, payrollIDs []string) error {
	if len(payrollIDs) == 0 {
		return nil
	}
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	return s.overtimeRepo.UnlinkPayroll(ctx, companyID, payrollIDs)
}

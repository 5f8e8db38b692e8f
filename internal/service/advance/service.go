package advance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const eventAdvanceChanged = "advance.changed"

type AdvanceServiceImpl struct {
	advanceRepo     advance.AdvanceRepository
	employeeRepo    employee.EmployeeRepository
	activityService activity.Service
	hub             *sse.Hub
	now             func() time.Time
}

func NewAdvanceService(
	advanceRepo advance.AdvanceRepository,
	employeeRepo employee.EmployeeRepository,
	activityService activity.Service,
	hub *sse.Hub,
) advance.AdvanceService {
	return &AdvanceServiceImpl{
		advanceRepo:     advanceRepo,
		employeeRepo:    employeeRepo,
		activityService: activityService,
		hub:             hub,
		now:             time.Now,
	}
}

func (s *AdvanceServiceImpl) CreateAdvance(ctx context.Context, req advance.CreateAdvanceRequest) (advance.AdvanceResponse, error) {
	if err := req.Validate(); err != nil {
		return advance.AdvanceResponse{}, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	date, _ := validator.IsValidDate(req.Date)
	now := s.now()
	y, m, d := now.Date()
	if date.After(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		return advance.AdvanceResponse{}, advance.ErrFutureDate
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	amount := money.Round(req.Amount.Decimal())
	created, err := s.advanceRepo.Create(ctx, advance.Advance{
		ID:              uuid.Must(uuid.NewV7()).String(),
		CompanyID:       companyID,
		EmployeeID:      emp.ID,
		Amount:          amount,
		RemainingAmount: amount,
		Status:          advance.StatusActive,
		Date:            date,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return advance.AdvanceResponse{}, fmt.Errorf("failed to create advance: %w", err)
	}

	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "advance.created",
		Module:      activity.ModuleAdvance,
		TargetID:    created.ID,
		Description: fmt.Sprintf("Recorded advance of %s for %s", money.Format(amount), emp.Name),
	})
	s.hub.Publish(companyID, eventAdvanceChanged, map[string]string{"id": created.ID, "employee_id": emp.ID})

	return advance.ToResponse(created), nil
}

func (s *AdvanceServiceImpl) CancelAdvance(ctx context.Context, id string) (advance.AdvanceResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	if err := s.advanceRepo.Cancel(ctx, id, companyID); err != nil {
		return advance.AdvanceResponse{}, err
	}

	cancelled, err := s.advanceRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "advance.cancelled",
		Module:      activity.ModuleAdvance,
		TargetID:    id,
		Description: fmt.Sprintf("Cancelled advance of %s", money.Format(cancelled.Amount)),
	})
	s.hub.Publish(companyID, eventAdvanceChanged, map[string]string{"id": id, "employee_id": cancelled.EmployeeID})

	return advance.ToResponse(cancelled), nil
}

func (s *AdvanceServiceImpl) GetAdvance(ctx context.Context, id string) (advance.AdvanceResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	a, err := s.advanceRepo.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, advance.ErrAdvanceNotFound) {
			return advance.AdvanceResponse{}, advance.ErrAdvanceNotFound
		}
		return advance.AdvanceResponse{}, fmt.Errorf("failed to get advance: %w", err)
	}
	return advance.ToResponse(a), nil
}

func (s *AdvanceServiceImpl) ListAdvances(ctx context.Context, filter advance.ListFilter) ([]advance.AdvanceResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	advances, err := s.advanceRepo.List(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}

	result := make([]advance.AdvanceResponse, 0, len(advances))
	for _, a := range advances {
		result = append(result, advance.ToResponse(a))
	}
	return result, nil
}

func (s *AdvanceServiceImpl) EligibleForDeduction(ctx context.Context, employeeID string) ([]advance.Advance, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	eligible, err := s.advanceRepo.ListEligible(ctx, companyID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible advances: %w", err)
	}
	return eligible, nil
}

func (s *AdvanceServiceImpl) OutstandingBalance(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	active, err := s.advanceRepo.List(ctx, companyID, advance.ListFilter{
		EmployeeID: employeeID,
		Status:     advance.StatusActive,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list active advances: %w", err)
	}

	total := decimal.Zero
	for _, a := range active {
		total = money.Add(total, a.RemainingAmount)
	}
	return money.Round(total), nil
}

func (s *AdvanceServiceImpl) Claim(ctx context.Context, ids []string, month string) error {
	return s.transition(ctx, ids, func(companyID string) error {
		return s.advanceRepo.Claim(ctx, companyID, month, ids)
	})
}

func (s *AdvanceServiceImpl) Release(ctx context.Context, ids []string) error {
	return s.transition(ctx, ids, func(companyID string) error {
		return s.advanceRepo.Release(ctx, companyID, ids)
	})
}

func (s *AdvanceServiceImpl) Settle(ctx context.Context, ids []string, transactionID string) error {
	return s.transition(ctx, ids, func(companyID string) error {
		return s.advanceRepo.Settle(ctx, companyID, transactionID, ids)
	})
}

func (s *AdvanceServiceImpl) Restore(ctx context.Context, ids []string) error {
	return s.transition(ctx, ids, func(companyID string) error {
		return s.advanceRepo.Restore(ctx, companyID, ids)
	})
}

// transition runs a claim protocol step. Callers own the transaction and
// publish the change once it commits.
func (s *AdvanceServiceImpl) transition(ctx context.Context, ids []string, fn func(companyID string) error) error {
	if len(ids) == 0 {
		return nil
	}
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	return fn(companyID)
}

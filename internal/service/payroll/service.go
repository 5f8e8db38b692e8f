package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventProcessed   = "payroll.processed"
	EventPaid        = "payroll.paid"
	EventReversed    = "payroll.reversed"
	EventDeleted     = "payroll.deleted"
	EventMonthUndone = "payroll.month_undone"

	eventAdvanceChanged  = "advance.changed"
	eventOvertimeChanged = "overtime.changed"
)

type PayrollServiceImpl struct {
	transactor            database.Transactor
	payrollRepo           payroll.PayrollRepository
	employeeRepo          employee.EmployeeRepository
	overtimeService       overtime.OvertimeService
	advanceService        advance.AdvanceService
	reconciliationService reconciliation.Service
	activityService       activity.Service
	hub                   *sse.Hub
	policy                Policy
	now                   func() time.Time
}

func NewPayrollService(
	transactor database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	overtimeService overtime.OvertimeService,
	advanceService advance.AdvanceService,
	reconciliationService reconciliation.Service,
	activityService activity.Service,
	hub *sse.Hub,
	policy Policy,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		transactor:            transactor,
		payrollRepo:           payrollRepo,
		employeeRepo:          employeeRepo,
		overtimeService:       overtimeService,
		advanceService:        advanceService,
		reconciliationService: reconciliationService,
		activityService:       activityService,
		hub:                   hub,
		policy:                policy,
		now:                   time.Now,
	}
}

func monthError(month string) error {
	if _, ok := validator.IsValidMonth(month); !ok {
		return validator.ValidationErrors{{Field: "month", Message: "must be in YYYY-MM format"}}
	}
	return nil
}

// ========== PROCESSING ==========

func (s *PayrollServiceImpl) ProcessMonth(ctx context.Context, req payroll.ProcessPayrollRequest) (payroll.ProcessResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.ProcessResult{}, err
	}

	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.ProcessResult{}, err
	}

	period, err := NewPeriod(req.Month)
	if err != nil {
		return payroll.ProcessResult{}, monthError(req.Month)
	}
	if period.IsAfter(s.now()) {
		return payroll.ProcessResult{}, payroll.ErrFutureMonth
	}

	result := payroll.ProcessResult{Month: req.Month, Entries: []payroll.EntryResponse{}}
	var entries []payroll.Entry

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		// Early exit only; CreateRun below is the real guard
		total, _, err := s.payrollRepo.CountEntriesByMonth(ctx, companyID, req.Month)
		if err != nil {
			return fmt.Errorf("failed to check existing payroll: %w", err)
		}
		if total > 0 {
			return payroll.ErrMonthAlreadyProcessed
		}

		employees, err := s.employeeRepo.List(ctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to get employees: %w", err)
		}

		known := make(map[string]bool, len(employees))
		for _, emp := range employees {
			known[emp.ID] = true
		}
		var unknown validator.ValidationErrors
		for employeeID := range req.Adjustments {
			if !known[employeeID] {
				unknown = append(unknown, validator.ValidationError{
					Field:   "adjustments." + employeeID,
					Message: "employee not found",
				})
			}
		}
		if len(unknown) > 0 {
			return unknown
		}

		summaries, err := s.overtimeService.SummaryByEmployee(ctx, req.Month)
		if err != nil {
			return fmt.Errorf("failed to get overtime summary: %w", err)
		}
		overtimeByEmployee := make(map[string]overtime.EmployeeSummary, len(summaries))
		for _, summary := range summaries {
			overtimeByEmployee[summary.EmployeeID] = summary
		}

		now := s.now()
		for _, emp := range employees {
			if !emp.HiredBy(period.End) {
				result.SkippedCount++
				continue
			}

			advances, err := s.advanceService.EligibleForDeduction(ctx, emp.ID)
			if err != nil {
				return err
			}

			summary := overtimeByEmployee[emp.ID]
			entry, ok := s.policy.Calculate(Input{
				Employee:      emp,
				Period:        period,
				OvertimeHours: summary.TotalHours,
				OvertimeIDs:   summary.EntryIDs(),
				Adjustments:   req.Adjustments[emp.ID],
				Advances:      advances,
			})
			if !ok {
				result.SkippedCount++
				continue
			}

			entry.ID = uuid.Must(uuid.NewV7()).String()
			entry.CompanyID = companyID
			entry.CreatedAt = now
			entry.UpdatedAt = now
			entries = append(entries, entry)
		}

		if len(entries) == 0 {
			return nil
		}

		run := payroll.Run{
			CompanyID:   companyID,
			Month:       req.Month,
			EntryCount:  len(entries),
			ProcessedAt: now,
		}
		if userID != "" {
			run.ProcessedBy = &userID
		}
		if err := s.payrollRepo.CreateRun(ctx, run); err != nil {
			return err
		}

		for _, entry := range entries {
			if _, err := s.payrollRepo.CreateEntry(ctx, entry); err != nil {
				return fmt.Errorf("failed to create payroll entry for employee %s: %w", entry.EmployeeID, err)
			}
			if err := s.advanceService.Claim(ctx, entry.AdvanceIDs, req.Month); err != nil {
				return fmt.Errorf("failed to claim advances for employee %s: %w", entry.EmployeeID, err)
			}
			if err := s.overtimeService.LinkToPayroll(ctx, entry.ID, entry.OvertimeEntryIDs); err != nil {
				return fmt.Errorf("failed to link overtime for employee %s: %w", entry.EmployeeID, err)
			}
		}
		return nil
	})
	if err != nil {
		return payroll.ProcessResult{}, err
	}

	for _, entry := range entries {
		result.Entries = append(result.Entries, payroll.ToResponse(entry))
	}
	result.ProcessedCount = len(entries)

	if result.ProcessedCount > 0 {
		s.activityService.Log(ctx, activity.LogRequest{
			Action:      "payroll.processed",
			Module:      activity.ModulePayroll,
			TargetID:    req.Month,
			Description: fmt.Sprintf("Processed payroll for %s: %d entries, %d skipped", req.Month, result.ProcessedCount, result.SkippedCount),
		})
		s.hub.Publish(companyID, EventProcessed, map[string]interface{}{"month": req.Month, "count": result.ProcessedCount})
		s.hub.Publish(companyID, eventAdvanceChanged, map[string]string{"month": req.Month})
		s.hub.Publish(companyID, eventOvertimeChanged, map[string]string{"month": req.Month})
	}

	return result, nil
}

// ========== PAYMENT ==========

func paymentNotes(entry payroll.Entry) string {
	notes := fmt.Sprintf("Salary payment for %s", entry.Month)
	if entry.AdvanceDeduction.IsPositive() {
		notes += fmt.Sprintf(" (advance deduction %s from total %s)",
			money.Format(entry.AdvanceDeduction),
			money.Format(entry.TotalSalary))
	}
	return notes
}

func (s *PayrollServiceImpl) MarkAsPaid(ctx context.Context, id string) (payroll.EntryResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	var paid payroll.Entry
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.payrollRepo.GetEntryByID(ctx, id, companyID)
		if err != nil {
			return err
		}
		if entry.IsPaid {
			return payroll.ErrPayrollEntryAlreadyPaid
		}

		transactionID := uuid.Must(uuid.NewV7()).String()
		if err := s.payrollRepo.MarkPaid(ctx, companyID, id, s.now(), transactionID); err != nil {
			return err
		}

		if err := s.advanceService.Settle(ctx, entry.AdvanceIDs, transactionID); err != nil {
			return fmt.Errorf("failed to settle advances: %w", err)
		}

		// Disbursed amount is the net; the advance part was paid out earlier
		if _, err := s.reconciliationService.Record(ctx, reconciliation.RecordRequest{
			Kind:          reconciliation.KindDebit,
			Amount:        entry.NetSalary,
			PartyName:     entry.EmployeeName,
			ReferenceID:   entry.ID,
			TransactionID: transactionID,
			Notes:         paymentNotes(entry),
		}); err != nil {
			return err
		}

		paid, err = s.payrollRepo.GetEntryByID(ctx, id, companyID)
		return err
	})
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "payroll.paid",
		Module:      activity.ModulePayroll,
		TargetID:    paid.ID,
		Description: fmt.Sprintf("Paid %s salary of %s for %s", money.Format(paid.NetSalary), paid.EmployeeName, paid.Month),
	})
	s.hub.Publish(companyID, EventPaid, map[string]string{"id": paid.ID, "month": paid.Month})
	if len(paid.AdvanceIDs) > 0 {
		s.hub.Publish(companyID, eventAdvanceChanged, map[string]string{"employee_id": paid.EmployeeID})
	}

	return payroll.ToResponse(paid), nil
}

func (s *PayrollServiceImpl) ReversePayment(ctx context.Context, id string) (payroll.EntryResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	var reversed payroll.Entry
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.payrollRepo.GetEntryByID(ctx, id, companyID)
		if err != nil {
			return err
		}
		if !entry.IsPaid {
			return payroll.ErrPayrollEntryNotPaid
		}

		var original *string
		if entry.LinkedTransactionID != nil {
			txID := *entry.LinkedTransactionID
			original = &txID
		}

		if err := s.payrollRepo.MarkUnpaid(ctx, companyID, id); err != nil {
			return err
		}

		if err := s.advanceService.Restore(ctx, entry.AdvanceIDs); err != nil {
			return fmt.Errorf("failed to restore advances: %w", err)
		}

		if _, err := s.reconciliationService.Record(ctx, reconciliation.RecordRequest{
			Kind:                  reconciliation.KindCredit,
			Amount:                entry.NetSalary,
			PartyName:             entry.EmployeeName,
			ReferenceID:           entry.ID,
			TransactionID:         uuid.Must(uuid.NewV7()).String(),
			ReversedTransactionID: original,
			Notes:                 fmt.Sprintf("Reversal of salary payment for %s", entry.Month),
		}); err != nil {
			return err
		}

		reversed, err = s.payrollRepo.GetEntryByID(ctx, id, companyID)
		return err
	})
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "payroll.reversed",
		Module:      activity.ModulePayroll,
		TargetID:    reversed.ID,
		Description: fmt.Sprintf("Reversed salary payment of %s for %s", reversed.EmployeeName, reversed.Month),
	})
	s.hub.Publish(companyID, EventReversed, map[string]string{"id": reversed.ID, "month": reversed.Month})
	if len(reversed.AdvanceIDs) > 0 {
		s.hub.Publish(companyID, eventAdvanceChanged, map[string]string{"employee_id": reversed.EmployeeID})
	}

	return payroll.ToResponse(reversed), nil
}

// ========== DELETION ==========

// releaseEntries frees every claim held by the given unpaid entries and
// drops runs of months left without entries.
func (s *PayrollServiceImpl) releaseEntries(ctx context.Context, companyID string, entries []payroll.Entry) (releasedAdvances int, err error) {
	var advanceIDs, entryIDs []string
	months := make(map[string]bool)
	for _, e := range entries {
		advanceIDs = append(advanceIDs, e.AdvanceIDs...)
		entryIDs = append(entryIDs, e.ID)
		months[e.Month] = true
	}

	if err := s.advanceService.Release(ctx, advanceIDs); err != nil {
		return 0, fmt.Errorf("failed to release advances: %w", err)
	}
	if err := s.overtimeService.UnlinkPayroll(ctx, entryIDs); err != nil {
		return 0, fmt.Errorf("failed to unlink overtime: %w", err)
	}

	for month := range months {
		total, _, err := s.payrollRepo.CountEntriesByMonth(ctx, companyID, month)
		if err != nil {
			return 0, err
		}
		if total == 0 {
			if err := s.payrollRepo.DeleteRun(ctx, companyID, month); err != nil {
				return 0, fmt.Errorf("failed to delete payroll run: %w", err)
			}
		}
	}
	return len(advanceIDs), nil
}

func (s *PayrollServiceImpl) DeleteEntry(ctx context.Context, id string) error {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	var deleted payroll.Entry
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		deleted, err = s.payrollRepo.GetEntryByID(ctx, id, companyID)
		if err != nil {
			return err
		}
		if deleted.IsPaid {
			return payroll.ErrCannotDeletePaidEntry
		}

		if err := s.payrollRepo.DeleteEntry(ctx, companyID, id); err != nil {
			return err
		}

		_, err := s.releaseEntries(ctx, companyID, []payroll.Entry{deleted})
		return err
	})
	if err != nil {
		return err
	}

	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "payroll.deleted",
		Module:      activity.ModulePayroll,
		TargetID:    id,
		Description: fmt.Sprintf("Deleted payroll entry of %s for %s", deleted.EmployeeName, deleted.Month),
	})
	s.hub.Publish(companyID, EventDeleted, map[string]string{"id": id, "month": deleted.Month})

	return nil
}

func (s *PayrollServiceImpl) UndoMonth(ctx context.Context, month string) (payroll.UndoMonthResult, error) {
	if err := monthError(month); err != nil {
		return payroll.UndoMonthResult{}, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.UndoMonthResult{}, err
	}

	result := payroll.UndoMonthResult{Month: month}
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		entries, err := s.payrollRepo.ListEntriesByMonth(ctx, companyID, month)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return payroll.ErrMonthNotProcessed
		}

		paid := 0
		for _, e := range entries {
			if e.IsPaid {
				paid++
			}
		}
		if paid > 0 {
			return fmt.Errorf("%w: %d of %d entries already paid, reverse them first", payroll.ErrMonthPartiallyPaid, paid, len(entries))
		}

		result.DeletedCount, err = s.payrollRepo.DeleteUnpaidEntriesByMonth(ctx, companyID, month)
		if err != nil {
			return fmt.Errorf("failed to delete payroll entries: %w", err)
		}
		// An entry paid after the listing above must keep its claims
		if result.DeletedCount != len(entries) {
			return fmt.Errorf("%w: %d of %d entries already paid, reverse them first",
				payroll.ErrMonthPartiallyPaid, len(entries)-result.DeletedCount, len(entries))
		}

		result.ReleasedAdvanceCount, err = s.releaseEntries(ctx, companyID, entries)
		return err
	})
	if err != nil {
		return payroll.UndoMonthResult{}, err
	}

	s.activityService.Log(ctx, activity.LogRequest{
		Action:      "payroll.month_undone",
		Module:      activity.ModulePayroll,
		TargetID:    month,
		Description: fmt.Sprintf("Undid payroll for %s: %d entries deleted", month, result.DeletedCount),
	})
	s.hub.Publish(companyID, EventMonthUndone, result)
	s.hub.Publish(companyID, eventAdvanceChanged, map[string]string{"month": month})
	s.hub.Publish(companyID, eventOvertimeChanged, map[string]string{"month": month})

	return result, nil
}

func (s *PayrollServiceImpl) RemoveUnpaidEntriesForEmployee(ctx context.Context, employeeID string) (int, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var removed []payroll.Entry
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		entries, err := s.payrollRepo.ListEntriesByEmployee(ctx, companyID, employeeID)
		if err != nil {
			return err
		}

		for _, e := range entries {
			if e.IsPaid {
				continue
			}
			if err := s.payrollRepo.DeleteEntry(ctx, companyID, e.ID); err != nil {
				return err
			}
			removed = append(removed, e)
		}
		if len(removed) == 0 {
			return nil
		}

		_, err = s.releaseEntries(ctx, companyID, removed)
		return err
	})
	if err != nil {
		return 0, err
	}

	for _, e := range removed {
		s.hub.Publish(companyID, EventDeleted, map[string]string{"id": e.ID, "month": e.Month})
	}
	return len(removed), nil
}

// ========== QUERIES ==========

func (s *PayrollServiceImpl) GetEntry(ctx context.Context, id string) (payroll.EntryResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	entry, err := s.payrollRepo.GetEntryByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollEntryNotFound) {
			return payroll.EntryResponse{}, payroll.ErrPayrollEntryNotFound
		}
		return payroll.EntryResponse{}, fmt.Errorf("failed to get payroll entry: %w", err)
	}
	return payroll.ToResponse(entry), nil
}

func (s *PayrollServiceImpl) GetMonth(ctx context.Context, month string) (payroll.MonthResponse, error) {
	if err := monthError(month); err != nil {
		return payroll.MonthResponse{}, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.MonthResponse{}, err
	}

	entries, err := s.payrollRepo.ListEntriesByMonth(ctx, companyID, month)
	if err != nil {
		return payroll.MonthResponse{}, fmt.Errorf("failed to list payroll entries: %w", err)
	}

	responses := make([]payroll.EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, payroll.ToResponse(e))
	}

	return payroll.MonthResponse{
		Month:   month,
		Entries: responses,
		Summary: Summarize(entries),
	}, nil
}

// Summarize derives month totals and counts from its entries
func Summarize(entries []payroll.Entry) payroll.MonthSummary {
	summary := payroll.MonthSummary{
		EntryCount:            len(entries),
		TotalBaseSalary:       decimal.Zero,
		TotalOvertimePay:      decimal.Zero,
		TotalBonus:            decimal.Zero,
		TotalDeduction:        decimal.Zero,
		TotalAdvanceDeduction: decimal.Zero,
		TotalSalary:           decimal.Zero,
		TotalNetSalary:        decimal.Zero,
		PaidAmount:            decimal.Zero,
		UnpaidAmount:          decimal.Zero,
	}

	for _, e := range entries {
		if e.IsPaid {
			summary.PaidCount++
			summary.PaidAmount = money.Add(summary.PaidAmount, e.NetSalary)
		} else {
			summary.UnpaidCount++
			summary.UnpaidAmount = money.Add(summary.UnpaidAmount, e.NetSalary)
		}
		if e.IsProrated {
			summary.ProratedCount++
		}
		if len(e.AdvanceIDs) > 0 {
			summary.AdvanceLinkedCount++
		}

		summary.TotalBaseSalary = money.Add(summary.TotalBaseSalary, e.BaseSalary)
		summary.TotalOvertimePay = money.Add(summary.TotalOvertimePay, e.OvertimePay)
		summary.TotalBonus = money.Add(summary.TotalBonus, e.TotalBonus)
		summary.TotalDeduction = money.Add(summary.TotalDeduction, e.TotalDeduction)
		summary.TotalAdvanceDeduction = money.Add(summary.TotalAdvanceDeduction, e.AdvanceDeduction)
		summary.TotalSalary = money.Add(summary.TotalSalary, e.TotalSalary)
		summary.TotalNetSalary = money.Add(summary.TotalNetSalary, e.NetSalary)
	}

	return summary
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context) ([]payroll.RunResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	runs, err := s.payrollRepo.ListRuns(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}

	result := make([]payroll.RunResponse, 0, len(runs))
	for _, r := range runs {
		result = append(result, payroll.RunResponse{
			Month:       r.Month,
			EntryCount:  r.EntryCount,
			ProcessedBy: r.ProcessedBy,
			ProcessedAt: r.ProcessedAt,
		})
	}
	return result, nil
}

package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ProcessPayrollRequest struct {
	Month string `json:"month"`
	// Adjustments keyed by employee ID
	Adjustments map[string][]Adjustment `json:"adjustments,omitempty"`
}

func (r *ProcessPayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month == "" {
		errs.Add("month", "is required")
	} else if _, ok := validator.IsValidMonth(r.Month); !ok {
		errs.Add("month", "must be in YYYY-MM format")
	}

	for employeeID, adjustments := range r.Adjustments {
		for i, a := range adjustments {
			field := fmt.Sprintf("adjustments.%s[%d]", employeeID, i)
			if a.Kind != KindBonus && a.Kind != KindDeduction {
				errs.Add(field+".kind", "must be 'bonus' or 'deduction'")
			} else if !a.Kind.Allows(a.Type) {
				errs.Add(field+".type", fmt.Sprintf("is not a valid %s type", a.Kind))
			}
			if !a.Amount.IsPositive() {
				errs.Add(field+".amount", "must be greater than 0")
			}
		}
	}

	return errs.Err()
}

type EntryResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	EmployeeName        string          `json:"employee_name"`
	Month               string          `json:"month"`
	BaseSalary          decimal.Decimal `json:"base_salary"`
	FullMonthlySalary   decimal.Decimal `json:"full_monthly_salary"`
	DaysWorked          int             `json:"days_worked"`
	DaysInMonth         int             `json:"days_in_month"`
	IsProrated          bool            `json:"is_prorated"`
	OvertimeHours       decimal.Decimal `json:"overtime_hours"`
	OvertimePay         decimal.Decimal `json:"overtime_pay"`
	Bonuses             []Adjustment    `json:"bonuses"`
	Deductions          []Adjustment    `json:"deductions"`
	TotalBonus          decimal.Decimal `json:"total_bonus"`
	TotalDeduction      decimal.Decimal `json:"total_deduction"`
	AdvanceDeduction    decimal.Decimal `json:"advance_deduction"`
	AdvanceIDs          []string        `json:"advance_ids"`
	OvertimeEntryIDs    []string        `json:"overtime_entry_ids"`
	TotalSalary         decimal.Decimal `json:"total_salary"`
	NetSalary           decimal.Decimal `json:"net_salary"`
	IsPaid              bool            `json:"is_paid"`
	PaidDate            *time.Time      `json:"paid_date,omitempty"`
	LinkedTransactionID *string         `json:"linked_transaction_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

func ToResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:                  e.ID,
		EmployeeID:          e.EmployeeID,
		EmployeeName:        e.EmployeeName,
		Month:               e.Month,
		BaseSalary:          e.BaseSalary,
		FullMonthlySalary:   e.FullMonthlySalary,
		DaysWorked:          e.DaysWorked,
		DaysInMonth:         e.DaysInMonth,
		IsProrated:          e.IsProrated,
		OvertimeHours:       e.OvertimeHours,
		OvertimePay:         e.OvertimePay,
		Bonuses:             nonNilAdjustments(e.Bonuses),
		Deductions:          nonNilAdjustments(e.Deductions),
		TotalBonus:          e.TotalBonus,
		TotalDeduction:      e.TotalDeduction,
		AdvanceDeduction:    e.AdvanceDeduction,
		AdvanceIDs:          nonNilIDs(e.AdvanceIDs),
		OvertimeEntryIDs:    nonNilIDs(e.OvertimeEntryIDs),
		TotalSalary:         e.TotalSalary,
		NetSalary:           e.NetSalary,
		IsPaid:              e.IsPaid,
		PaidDate:            e.PaidDate,
		LinkedTransactionID: e.LinkedTransactionID,
		CreatedAt:           e.CreatedAt,
	}
}

func nonNilAdjustments(a []Adjustment) []Adjustment {
	if a == nil {
		return []Adjustment{}
	}
	return a
}

func nonNilIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

type ProcessResult struct {
	Month          string          `json:"month"`
	ProcessedCount int             `json:"processed_count"`
	SkippedCount   int             `json:"skipped_count"`
	Entries        []EntryResponse `json:"entries"`
}

type MonthSummary struct {
	EntryCount         int `json:"entry_count"`
	PaidCount          int `json:"paid_count"`
	UnpaidCount        int `json:"unpaid_count"`
	ProratedCount      int `json:"prorated_count"`
	AdvanceLinkedCount int `json:"advance_linked_count"`

	TotalBaseSalary       decimal.Decimal `json:"total_base_salary"`
	TotalOvertimePay      decimal.Decimal `json:"total_overtime_pay"`
	TotalBonus            decimal.Decimal `json:"total_bonus"`
	TotalDeduction        decimal.Decimal `json:"total_deduction"`
	TotalAdvanceDeduction decimal.Decimal `json:"total_advance_deduction"`
	TotalSalary           decimal.Decimal `json:"total_salary"`
	TotalNetSalary        decimal.Decimal `json:"total_net_salary"`
	PaidAmount            decimal.Decimal `json:"paid_amount"`
	UnpaidAmount          decimal.Decimal `json:"unpaid_amount"`
}

type MonthResponse struct {
	Month   string          `json:"month"`
	Entries []EntryResponse `json:"entries"`
	Summary MonthSummary    `json:"summary"`
}

type RunResponse struct {
	Month       string    `json:"month"`
	EntryCount  int       `json:"entry_count"`
	ProcessedBy *string   `json:"processed_by,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

type UndoMonthResult struct {
	Month                string `json:"month"`
	DeletedCount         int    `json:"deleted_count"`
	ReleasedAdvanceCount int    `json:"released_advance_count"`
}

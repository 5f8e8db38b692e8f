package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentKind tags an Adjustment as money added to or taken from the total
type AdjustmentKind string

const (
	KindBonus     AdjustmentKind = "bonus"
	KindDeduction AdjustmentKind = "deduction"
)

type AdjustmentType string

const (
	BonusPerformance AdjustmentType = "performance"
	BonusAttendance  AdjustmentType = "attendance"
	BonusHoliday     AdjustmentType = "holiday"
	BonusCommission  AdjustmentType = "commission"

	DeductionAbsence AdjustmentType = "absence"
	DeductionLate    AdjustmentType = "late"
	DeductionPenalty AdjustmentType = "penalty"
	DeductionTax     AdjustmentType = "tax"

	AdjustmentOther AdjustmentType = "other"
)

var adjustmentTypes = map[AdjustmentKind][]AdjustmentType{
	KindBonus:     {BonusPerformance, BonusAttendance, BonusHoliday, BonusCommission, AdjustmentOther},
	KindDeduction: {DeductionAbsence, DeductionLate, DeductionPenalty, DeductionTax, AdjustmentOther},
}

// Allows reports whether t is a valid type for kind k
func (k AdjustmentKind) Allows(t AdjustmentType) bool {
	for _, allowed := range adjustmentTypes[k] {
		if allowed == t {
			return true
		}
	}
	return false
}

// Adjustment is one bonus or deduction line on a payroll entry
type Adjustment struct {
	Kind        AdjustmentKind  `json:"kind"`
	Type        AdjustmentType  `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Entry is one employee's payroll for one month.
// NetSalary = TotalSalary - AdvanceDeduction is what gets disbursed.
type Entry struct {
	ID                  string
	CompanyID           string
	EmployeeID          string
	EmployeeName        string
	Month               string
	BaseSalary          decimal.Decimal
	FullMonthlySalary   decimal.Decimal
	DaysWorked          int
	DaysInMonth         int
	IsProrated          bool
	OvertimeHours       decimal.Decimal
	OvertimePay         decimal.Decimal
	Bonuses             []Adjustment
	Deductions          []Adjustment
	TotalBonus          decimal.Decimal
	TotalDeduction      decimal.Decimal
	AdvanceDeduction    decimal.Decimal
	AdvanceIDs          []string
	OvertimeEntryIDs    []string
	TotalSalary         decimal.Decimal
	NetSalary           decimal.Decimal
	IsPaid              bool
	PaidDate            *time.Time
	LinkedTransactionID *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Run marks a month as processed for a company. At most one exists per
// (company, month); its insert is what makes processing all-or-nothing.
type Run struct {
	CompanyID   string
	Month       string
	EntryCount  int
	ProcessedBy *string
	ProcessedAt time.Time
}

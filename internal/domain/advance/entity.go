package advance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive        Status = "ACTIVE"
	StatusFullyDeducted Status = "FULLY_DEDUCTED"
	StatusCancelled     Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusFullyDeducted, StatusCancelled:
		return true
	}
	return false
}

// Advance is cash paid to an employee ahead of payroll. Amount never changes;
// RemainingAmount drops to zero once the payroll entry that claimed it is paid.
type Advance struct {
	ID                  string
	CompanyID           string
	EmployeeID          string
	Amount              decimal.Decimal
	RemainingAmount     decimal.Decimal
	Status              Status
	Date                time.Time
	Notes               *string
	LinkedPayrollMonth  *string
	LinkedTransactionID *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsEligible reports whether a new payroll run may claim the advance
func (a Advance) IsEligible() bool {
	return a.Status == StatusActive && a.LinkedPayrollMonth == nil
}

package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	CompanyID        string
	Name             string
	Position         string
	CurrentSalary    decimal.Decimal
	OvertimeEligible bool
	HireDate         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// HiredBy reports whether the employee started on or before the given day.
func (e Employee) HiredBy(day time.Time) bool {
	return !e.HireDate.After(day)
}

// SalaryHistory is appended every time CurrentSalary changes and is never edited.
type SalaryHistory struct {
	ID                  string
	CompanyID           string
	EmployeeID          string
	OldSalary           decimal.Decimal
	NewSalary           decimal.Decimal
	IncrementPercentage decimal.Decimal
	EffectiveDate       time.Time
	Notes               *string
	CreatedAt           time.Time
}

package overtime

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxHoursPerDay caps a single entry
var MaxHoursPerDay = decimal.NewFromInt(24)

// Entry is overtime logged for one employee on one day. Once a payroll run
// links it (LinkedPayrollID set) the entry is read-only.
type Entry struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	Date            time.Time
	Hours           decimal.Decimal
	Month           string // "YYYY-MM", derived from Date
	Notes           *string
	LinkedPayrollID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (e Entry) IsLocked() bool {
	return e.LinkedPayrollID != nil
}

// MonthOf derives the payroll month key of a date
func MonthOf(date time.Time) string {
	return date.Format("2006-01")
}

package overtime

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type RecordEntryRequest struct {
	EmployeeID string          `json:"employee_id"`
	Date       string          `json:"date"`
	Hours      decimal.Decimal `json:"hours"`
	Notes      *string         `json:"notes,omitempty"`
}

func (r *RecordEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs.Add("employee_id", "is required")
	}
	errs = append(errs, validateDateAndHours(r.Date, r.Hours)...)

	return errs.Err()
}

type UpdateEntryRequest struct {
	ID    string          `json:"-"`
	Date  string          `json:"date"`
	Hours decimal.Decimal `json:"hours"`
	Notes *string         `json:"notes,omitempty"`
}

func (r *UpdateEntryRequest) Validate() error {
	return validateDateAndHours(r.Date, r.Hours).Err()
}

func validateDateAndHours(date string, hours decimal.Decimal) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if date == "" {
		errs.Add("date", "is required")
	} else if _, ok := validator.IsValidDate(date); !ok {
		errs.Add("date", "must be in YYYY-MM-DD format")
	}
	if !hours.IsPositive() {
		errs.Add("hours", "must be greater than 0")
	} else if hours.GreaterThan(MaxHoursPerDay) {
		errs.Add("hours", "must be at most 24")
	}
	return errs
}

type ListFilter struct {
	EmployeeID string
	Month      string
}

type EntryResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	Date            string          `json:"date"`
	Hours           decimal.Decimal `json:"hours"`
	Month           string          `json:"month"`
	Notes           *string         `json:"notes,omitempty"`
	LinkedPayrollID *string         `json:"linked_payroll_id,omitempty"`
	Locked          bool            `json:"locked"`
	CreatedAt       time.Time       `json:"created_at"`
}

func ToResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:              e.ID,
		EmployeeID:      e.EmployeeID,
		Date:            e.Date.Format("2006-01-02"),
		Hours:           e.Hours,
		Month:           e.Month,
		Notes:           e.Notes,
		LinkedPayrollID: e.LinkedPayrollID,
		Locked:          e.IsLocked(),
		CreatedAt:       e.CreatedAt,
	}
}

// EmployeeSummary groups one employee's entries for a month
type EmployeeSummary struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	TotalHours   decimal.Decimal `json:"total_hours"`
	Entries      []EntryResponse `json:"entries"`
}

func (s EmployeeSummary) EntryIDs() []string {
	ids := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		ids = append(ids, e.ID)
	}
	return ids
}

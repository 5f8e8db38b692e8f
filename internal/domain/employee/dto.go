package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	Name             string       `json:"name"`
	Position         string       `json:"position"`
	CurrentSalary    money.Amount `json:"current_salary"`
	OvertimeEligible bool         `json:"overtime_eligible"`
	HireDate         string       `json:"hire_date"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "is required")
	}
	if !r.CurrentSalary.Decimal().IsPositive() {
		errs.Add("current_salary", "must be greater than 0")
	}
	if r.HireDate == "" {
		errs.Add("hire_date", "is required")
	} else if _, ok := validator.IsValidDate(r.HireDate); !ok {
		errs.Add("hire_date", "must be in YYYY-MM-DD format")
	}

	return errs.Err()
}

type UpdateEmployeeRequest struct {
	ID               string        `json:"-"`
	Name             *string       `json:"name,omitempty"`
	Position         *string       `json:"position,omitempty"`
	CurrentSalary    *money.Amount `json:"current_salary,omitempty"`
	OvertimeEligible *bool         `json:"overtime_eligible,omitempty"`
	HireDate         *string       `json:"hire_date,omitempty"`

	// Only used when CurrentSalary changes
	EffectiveDate *string `json:"effective_date,omitempty"`
	SalaryNotes   *string `json:"salary_notes,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "cannot be empty")
	}
	if r.CurrentSalary != nil && !r.CurrentSalary.Decimal().IsPositive() {
		errs.Add("current_salary", "must be greater than 0")
	}
	if r.HireDate != nil {
		if _, ok := validator.IsValidDate(*r.HireDate); !ok {
			errs.Add("hire_date", "must be in YYYY-MM-DD format")
		}
	}
	if r.EffectiveDate != nil {
		if _, ok := validator.IsValidDate(*r.EffectiveDate); !ok {
			errs.Add("effective_date", "must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

type EmployeeResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Position         string          `json:"position"`
	CurrentSalary    decimal.Decimal `json:"current_salary"`
	OvertimeEligible bool            `json:"overtime_eligible"`
	HireDate         string          `json:"hire_date"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:               e.ID,
		Name:             e.Name,
		Position:         e.Position,
		CurrentSalary:    e.CurrentSalary,
		OvertimeEligible: e.OvertimeEligible,
		HireDate:         e.HireDate.Format("2006-01-02"),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

type SalaryHistoryResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	OldSalary           decimal.Decimal `json:"old_salary"`
	NewSalary           decimal.Decimal `json:"new_salary"`
	IncrementPercentage decimal.Decimal `json:"increment_percentage"`
	EffectiveDate       string          `json:"effective_date"`
	Notes               *string         `json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

type BalanceResponse struct {
	EmployeeID          string          `json:"employee_id"`
	UnpaidSalary        decimal.Decimal `json:"unpaid_salary"`
	OutstandingAdvances decimal.Decimal `json:"outstanding_advances"`
	NetBalance          decimal.Decimal `json:"net_balance"`
}

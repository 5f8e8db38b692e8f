package advance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateAdvanceRequest struct {
	EmployeeID string       `json:"employee_id"`
	Amount     money.Amount `json:"amount"`
	Date       string       `json:"date"`
	Notes      *string      `json:"notes,omitempty"`
}

func (r *CreateAdvanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs.Add("employee_id", "is required")
	}
	if !r.Amount.Decimal().IsPositive() {
		errs.Add("amount", "must be greater than 0")
	}
	if r.Date == "" {
		errs.Add("date", "is required")
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "must be in YYYY-MM-DD format")
	}

	return errs.Err()
}

type ListFilter struct {
	EmployeeID string
	Status     Status
}

type AdvanceResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	Amount              decimal.Decimal `json:"amount"`
	RemainingAmount     decimal.Decimal `json:"remaining_amount"`
	Status              Status          `json:"status"`
	Date                string          `json:"date"`
	Notes               *string         `json:"notes,omitempty"`
	LinkedPayrollMonth  *string         `json:"linked_payroll_month,omitempty"`
	LinkedTransactionID *string         `json:"linked_transaction_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

func ToResponse(a Advance) AdvanceResponse {
	return AdvanceResponse{
		ID:                  a.ID,
		EmployeeID:          a.EmployeeID,
		Amount:              a.Amount,
		RemainingAmount:     a.RemainingAmount,
		Status:              a.Status,
		Date:                a.Date.Format("2006-01-02"),
		Notes:               a.Notes,
		LinkedPayrollMonth:  a.LinkedPayrollMonth,
		LinkedTransactionID: a.LinkedTransactionID,
		CreatedAt:           a.CreatedAt,
	}
}

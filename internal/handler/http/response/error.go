package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, jwt.ErrMissingCompanyClaim):
		Unauthorized(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrInvalidSalary),
		errors.Is(err, employee.ErrFutureHireDate):
		BadRequest(w, err.Error(), nil)

	// Overtime domain errors
	case errors.Is(err, overtime.ErrOvertimeEntryNotFound):
		NotFound(w, "Overtime entry not found")
	case errors.Is(err, overtime.ErrOvertimeEntryLocked):
		Conflict(w, err.Error())
	case errors.Is(err, overtime.ErrEmployeeNotOvertimeEligible),
		errors.Is(err, overtime.ErrFutureDate),
		errors.Is(err, overtime.ErrDateBeforeHireDate):
		BadRequest(w, err.Error(), nil)

	// Advance domain errors
	case errors.Is(err, advance.ErrAdvanceNotFound):
		NotFound(w, "Advance not found")
	case errors.Is(err, advance.ErrAdvanceNotActive),
		errors.Is(err, advance.ErrAdvanceClaimed),
		errors.Is(err, advance.ErrAdvanceAlreadyClaimed):
		Conflict(w, err.Error())
	case errors.Is(err, advance.ErrFutureDate):
		BadRequest(w, err.Error(), nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollEntryNotFound):
		NotFound(w, "Payroll entry not found")
	case errors.Is(err, payroll.ErrMonthNotProcessed):
		NotFound(w, err.Error())
	case errors.Is(err, payroll.ErrFutureMonth):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrPayrollEntryAlreadyPaid),
		errors.Is(err, payroll.ErrPayrollEntryNotPaid),
		errors.Is(err, payroll.ErrCannotDeletePaidEntry),
		errors.Is(err, payroll.ErrMonthAlreadyProcessed):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrMonthPartiallyPaid):
		// message carries the paid count
		Conflict(w, err.Error())

	// Reconciliation domain errors
	case errors.Is(err, reconciliation.ErrRecordNotFound):
		NotFound(w, "Reconciliation record not found")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

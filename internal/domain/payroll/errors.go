package payroll

import "errors"

var (
	ErrPayrollEntryNotFound    = errors.New("payroll entry not found")
	ErrPayrollEntryAlreadyPaid = errors.New("payroll entry already paid")
	ErrPayrollEntryNotPaid     = errors.New("payroll entry is not paid")
	ErrCannotDeletePaidEntry   = errors.New("cannot delete paid payroll entry, reverse the payment first")
	ErrMonthAlreadyProcessed   = errors.New("payroll already processed for this month")
	ErrMonthNotProcessed       = errors.New("payroll has not been processed for this month")
	ErrMonthPartiallyPaid      = errors.New("payroll month has paid entries")
	ErrFutureMonth             = errors.New("cannot process payroll for a future month")
)

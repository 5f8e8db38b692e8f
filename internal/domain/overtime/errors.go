package overtime

import "errors"

var (
	ErrOvertimeEntryNotFound       = errors.New("overtime entry not found")
	ErrOvertimeEntryLocked         = errors.New("overtime entry is linked to a processed payroll and cannot be changed")
	ErrEmployeeNotOvertimeEligible = errors.New("employee is not eligible for overtime")
	ErrFutureDate                  = errors.New("overtime date cannot be in the future")
	ErrDateBeforeHireDate          = errors.New("overtime date cannot be before the employee hire date")
)

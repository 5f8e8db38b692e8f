package advance

import "errors"

var (
	ErrAdvanceNotFound       = errors.New("advance not found")
	ErrAdvanceNotActive      = errors.New("advance is not active")
	ErrAdvanceClaimed        = errors.New("advance is claimed by an unpaid payroll month")
	ErrAdvanceAlreadyClaimed = errors.New("advance was already claimed by another payroll month")
	ErrFutureDate            = errors.New("advance date cannot be in the future")
)

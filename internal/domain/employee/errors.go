package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidSalary    = errors.New("salary must be greater than 0")
	ErrFutureHireDate   = errors.New("hire date cannot be in the future")
)

package payroll

import "context"

type PayrollService interface {
	// ProcessMonth creates one unpaid entry per employee hired by the end of the month
	ProcessMonth(ctx context.Context, req ProcessPayrollRequest) (ProcessResult, error)

	MarkAsPaid(ctx context.Context, id string) (EntryResponse, error)
	ReversePayment(ctx context.Context, id string) (EntryResponse, error)
	DeleteEntry(ctx context.Context, id string) error
	UndoMonth(ctx context.Context, month string) (UndoMonthResult, error)

	GetEntry(ctx context.Context, id string) (EntryResponse, error)
	GetMonth(ctx context.Context, month string) (MonthResponse, error)
	ListRuns(ctx context.Context) ([]RunResponse, error)

	// RemoveUnpaidEntriesForEmployee deletes the employee's unpaid entries, releasing
	// their advance and overtime claims. Paid entries stay.
	RemoveUnpaidEntriesForEmployee(ctx context.Context, employeeID string) (int, error)
}

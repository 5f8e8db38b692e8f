package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll.
// All methods include companyID parameter to prevent cross-company data access attacks.
type PayrollRepository interface {
	// Runs
	CreateRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, companyID string) ([]Run, error)
	DeleteRun(ctx context.Context, companyID string, month string) error

	// Entries
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)
	GetEntryByID(ctx context.Context, id string, companyID string) (Entry, error)
	ListEntriesByMonth(ctx context.Context, companyID string, month string) ([]Entry, error)
	ListEntriesByEmployee(ctx context.Context, companyID string, employeeID string) ([]Entry, error)
	CountEntriesByMonth(ctx context.Context, companyID string, month string) (total int, paid int, err error)

	// State transitions, each guarded on the current paid flag
	MarkPaid(ctx context.Context, companyID string, id string, paidAt time.Time, transactionID string) error
	MarkUnpaid(ctx context.Context, companyID string, id string) error
	DeleteEntry(ctx context.Context, companyID string, id string) error
	DeleteUnpaidEntriesByMonth(ctx context.Context, companyID string, month string) (int, error)
}

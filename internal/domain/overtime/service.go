package overtime

import (
	"context"

	"github.com/shopspring/decimal"
)

type OvertimeService interface {
	RecordEntry(ctx context.Context, req RecordEntryRequest) (EntryResponse, error)
	UpdateEntry(ctx context.Context, req UpdateEntryRequest) (EntryResponse, error)
	DeleteEntry(ctx context.Context, id string) error
	ListEntries(ctx context.Context, filter ListFilter) ([]EntryResponse, error)

	HoursForEmployeeMonth(ctx context.Context, employeeID string, month string) (decimal.Decimal, error)
	SummaryByEmployee(ctx context.Context, month string) ([]EmployeeSummary, error)

	// Claim protocol, driven by the payroll engine
	LinkToPayroll(ctx context.Context, payrollID string, entryIDs []string) error
	UnlinkPayroll(ctx context.Context, payrollIDs []string) error
}

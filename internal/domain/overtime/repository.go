package overtime

import "context"

type OvertimeRepository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	GetByID(ctx context.Context, id string, companyID string) (Entry, error)

	// Update and Delete only touch unlinked entries and return ErrOvertimeEntryLocked otherwise
	Update(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, id string, companyID string) error

	List(ctx context.Context, companyID string, filter ListFilter) ([]Entry, error)

	LinkToPayroll(ctx context.Context, companyID string, payrollID string, entryIDs []string) error
	UnlinkPayroll(ctx context.Context, companyID string, payrollIDs []string) error
}

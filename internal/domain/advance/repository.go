package advance

import "context"

type AdvanceRepository interface {
	Create(ctx context.Context, advance Advance) (Advance, error)
	GetByID(ctx context.Context, id string, companyID string) (Advance, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]Advance, error)

	// ListEligible returns ACTIVE advances of the employee not yet claimed by a month
	ListEligible(ctx context.Context, companyID string, employeeID string) ([]Advance, error)

	// Cancel only affects an ACTIVE, unclaimed advance
	Cancel(ctx context.Context, id string, companyID string) error

	// Claim fails with ErrAdvanceAlreadyClaimed unless every id is still eligible
	Claim(ctx context.Context, companyID string, month string, ids []string) error
	Release(ctx context.Context, companyID string, ids []string) error
	Settle(ctx context.Context, companyID string, transactionID string, ids []string) error
	Restore(ctx context.Context, companyID string, ids []string) error
}

package advance

import (
	"context"

	"github.com/shopspring/decimal"
)

type AdvanceService interface {
	CreateAdvance(ctx context.Context, req CreateAdvanceRequest) (AdvanceResponse, error)
	CancelAdvance(ctx context.Context, id string) (AdvanceResponse, error)
	GetAdvance(ctx context.Context, id string) (AdvanceResponse, error)
	ListAdvances(ctx context.Context, filter ListFilter) ([]AdvanceResponse, error)

	// EligibleForDeduction is the selection rule the payroll engine claims from
	EligibleForDeduction(ctx context.Context, employeeID string) ([]Advance, error)
	OutstandingBalance(ctx context.Context, employeeID string) (decimal.Decimal, error)

	// Claim protocol, driven by the payroll engine
	Claim(ctx context.Context, ids []string, month string) error
	Release(ctx context.Context, ids []string) error
	Settle(ctx context.Context, ids []string, transactionID string) error
	Restore(ctx context.Context, ids []string) error
}

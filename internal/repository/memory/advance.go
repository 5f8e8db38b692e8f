package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/shopspring/decimal"
)

type advanceRepository struct {
	store *Store
}

func NewAdvanceRepository(store *Store) advance.AdvanceRepository {
	return &advanceRepository{store: store}
}

func (r *advanceRepository) Create(ctx context.Context, a advance.Advance) (advance.Advance, error) {
	err := r.store.do(ctx, func(st *state) error {
		st.advances[a.ID] = a
		return nil
	})
	return a, err
}

func (r *advanceRepository) GetByID(ctx context.Context, id string, companyID string) (advance.Advance, error) {
	var found advance.Advance
	err := r.store.do(ctx, func(st *state) error {
		a, ok := st.advances[id]
		if !ok || a.CompanyID != companyID {
			return advance.ErrAdvanceNotFound
		}
		found = a
		return nil
	})
	return found, err
}

func (r *advanceRepository) List(ctx context.Context, companyID string, filter advance.ListFilter) ([]advance.Advance, error) {
	return r.filter(ctx, func(a advance.Advance) bool {
		if a.CompanyID != companyID {
			return false
		}
		if filter.EmployeeID != "" && a.EmployeeID != filter.EmployeeID {
			return false
		}
		return filter.Status == "" || a.Status == filter.Status
	})
}

func (r *advanceRepository) ListEligible(ctx context.Context, companyID string, employeeID string) ([]advance.Advance, error) {
	return r.filter(ctx, func(a advance.Advance) bool {
		return a.CompanyID == companyID && a.EmployeeID == employeeID && a.IsEligible()
	})
}

func (r *advanceRepository) filter(ctx context.Context, match func(advance.Advance) bool) ([]advance.Advance, error) {
	var result []advance.Advance
	err := r.store.do(ctx, func(st *state) error {
		for _, a := range st.advances {
			if match(a) {
				result = append(result, a)
			}
		}
		return nil
	})
	slices.SortFunc(result, func(a, b advance.Advance) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result, err
}

func (r *advanceRepository) Cancel(ctx context.Context, id string, companyID string) error {
	return r.store.do(ctx, func(st *state) error {
		a, ok := st.advances[id]
		if !ok || a.CompanyID != companyID {
			return advance.ErrAdvanceNotFound
		}
		if a.Status != advance.StatusActive {
			return advance.ErrAdvanceNotActive
		}
		if a.LinkedPayrollMonth != nil {
			return advance.ErrAdvanceClaimed
		}
		a.Status = advance.StatusCancelled
		a.UpdatedAt = time.Now()
		st.advances[id] = a
		return nil
	})
}

func (r *advanceRepository) Claim(ctx context.Context, companyID string, month string, ids []string) error {
	return r.update(ctx, companyID, ids, func(a *advance.Advance) error {
		if !a.IsEligible() {
			return advance.ErrAdvanceAlreadyClaimed
		}
		claimed := month
		a.LinkedPayrollMonth = &claimed
		return nil
	})
}

func (r *advanceRepository) Release(ctx context.Context, companyID string, ids []string) error {
	return r.update(ctx, companyID, ids, func(a *advance.Advance) error {
		a.LinkedPayrollMonth = nil
		return nil
	})
}

func (r *advanceRepository) Settle(ctx context.Context, companyID string, transactionID string, ids []string) error {
	return r.update(ctx, companyID, ids, func(a *advance.Advance) error {
		txID := transactionID
		a.RemainingAmount = decimal.Zero
		a.Status = advance.StatusFullyDeducted
		a.LinkedTransactionID = &txID
		return nil
	})
}

func (r *advanceRepository) Restore(ctx context.Context, companyID string, ids []string) error {
	return r.update(ctx, companyID, ids, func(a *advance.Advance) error {
		a.RemainingAmount = a.Amount
		a.Status = advance.StatusActive
		a.LinkedTransactionID = nil
		return nil
	})
}

func (r *advanceRepository) update(ctx context.Context, companyID string, ids []string, fn func(a *advance.Advance) error) error {
	return r.store.do(ctx, func(st *state) error {
		updated := make([]advance.Advance, 0, len(ids))
		for _, id := range ids {
			a, ok := st.advances[id]
			if !ok || a.CompanyID != companyID {
				return advance.ErrAdvanceNotFound
			}
			if err := fn(&a); err != nil {
				return err
			}
			a.UpdatedAt = time.Now()
			updated = append(updated, a)
		}
		for _, a := range updated {
			st.advances[a.ID] = a
		}
		return nil
	})
}

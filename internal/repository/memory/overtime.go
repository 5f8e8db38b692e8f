package memory

import (
	"context"
	"slices"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
)

type overtimeRepository struct {
	store *Store
}

func NewOvertimeRepository(store *Store) overtime.OvertimeRepository {
	return &overtimeRepository{store: store}
}

func (r *overtimeRepository) Create(ctx context.Context, entry overtime.Entry) (overtime.Entry, error) {
	err := r.store.do(ctx, func(st *state) error {
		st.overtime[entry.ID] = entry
		return nil
	})
	return entry, err
}

func (r *overtimeRepository) GetByID(ctx context.Context, id string, companyID string) (overtime.Entry, error) {
	var found overtime.Entry
	err := r.store.do(ctx, func(st *state) error {
		e, ok := st.overtime[id]
		if !ok || e.CompanyID != companyID {
			return overtime.ErrOvertimeEntryNotFound
		}
		found = e
		return nil
	})
	return found, err
}

func (r *overtimeRepository) Update(ctx context.Context, entry overtime.Entry) error {
	return r.store.do(ctx, func(st *state) error {
		current, ok := st.overtime[entry.ID]
		if !ok || current.CompanyID != entry.CompanyID {
			return overtime.ErrOvertimeEntryNotFound
		}
		if current.IsLocked() {
			return overtime.ErrOvertimeEntryLocked
		}
		entry.LinkedPayrollID = nil
		st.overtime[entry.ID] = entry
		return nil
	})
}

func (r *overtimeRepository) Delete(ctx context.Context, id string, companyID string) error {
	return r.store.do(ctx, func(st *state) error {
		current, ok := st.overtime[id]
		if !ok || current.CompanyID != companyID {
			return overtime.ErrOvertimeEntryNotFound
		}
		if current.IsLocked() {
			return overtime.ErrOvertimeEntryLocked
		}
		delete(st.overtime, id)
		return nil
	})
}

func (r *overtimeRepository) List(ctx context.Context, companyID string, filter overtime.ListFilter) ([]overtime.Entry, error) {
	var result []overtime.Entry
	err := r.store.do(ctx, func(st *state) error {
		for _, e := range st.overtime {
			if e.CompanyID != companyID {
				continue
			}
			if filter.EmployeeID != "" && e.EmployeeID != filter.EmployeeID {
				continue
			}
			if filter.Month != "" && e.Month != filter.Month {
				continue
			}
			result = append(result, e)
		}
		return nil
	})
	slices.SortFunc(result, func(a, b overtime.Entry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result, err
}

func (r *overtimeRepository) LinkToPayroll(ctx context.Context, companyID string, payrollID string, entryIDs []string) error {
	return r.store.do(ctx, func(st *state) error {
		for _, id := range entryIDs {
			e, ok := st.overtime[id]
			if !ok || e.CompanyID != companyID {
				return overtime.ErrOvertimeEntryNotFound
			}
			if e.IsLocked() {
				return overtime.ErrOvertimeEntryLocked
			}
		}
		for _, id := range entryIDs {
			e := st.overtime[id]
			linked := payrollID
			e.LinkedPayrollID = &linked
			st.overtime[id] = e
		}
		return nil
	})
}

func (r *overtimeRepository) UnlinkPayroll(ctx context.Context, companyID string, payrollIDs []string) error {
	return r.store.do(ctx, func(st *state) error {
		for id, e := range st.overtime {
			if e.CompanyID == companyID && e.LinkedPayrollID != nil && contains(payrollIDs, *e.LinkedPayrollID) {
				e.LinkedPayrollID = nil
				st.overtime[id] = e
			}
		}
		return nil
	})
}

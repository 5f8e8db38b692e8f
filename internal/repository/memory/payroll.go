package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

type payrollRepository struct {
	store *Store
}

func NewPayrollRepository(store *Store) payroll.PayrollRepository {
	return &payrollRepository{store: store}
}

// ========== RUNS ==========

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.Run) error {
	return r.store.do(ctx, func(st *state) error {
		key := runKey(run.CompanyID, run.Month)
		if _, exists := st.payrollRuns[key]; exists {
			return payroll.ErrMonthAlreadyProcessed
		}
		st.payrollRuns[key] = run
		return nil
	})
}

func (r *payrollRepository) ListRuns(ctx context.Context, companyID string) ([]payroll.Run, error) {
	var runs []payroll.Run
	err := r.store.do(ctx, func(st *state) error {
		counts := make(map[string]int)
		for _, e := range st.payrollEntries {
			if e.CompanyID == companyID {
				counts[e.Month]++
			}
		}
		for _, run := range st.payrollRuns {
			if run.CompanyID == companyID {
				run.EntryCount = counts[run.Month]
				runs = append(runs, run)
			}
		}
		return nil
	})
	slices.SortFunc(runs, func(a, b payroll.Run) int {
		return strings.Compare(b.Month, a.Month)
	})
	return runs, err
}

func (r *payrollRepository) DeleteRun(ctx context.Context, companyID string, month string) error {
	return r.store.do(ctx, func(st *state) error {
		delete(st.payrollRuns, runKey(companyID, month))
		return nil
	})
}

// ========== ENTRIES ==========

func (r *payrollRepository) CreateEntry(ctx context.Context, entry payroll.Entry) (payroll.Entry, error) {
	err := r.store.do(ctx, func(st *state) error {
		for _, e := range st.payrollEntries {
			if e.CompanyID == entry.CompanyID && e.EmployeeID == entry.EmployeeID && e.Month == entry.Month {
				return payroll.ErrMonthAlreadyProcessed
			}
		}
		st.payrollEntries[entry.ID] = entry
		return nil
	})
	return entry, err
}

func (r *payrollRepository) GetEntryByID(ctx context.Context, id string, companyID string) (payroll.Entry, error) {
	var found payroll.Entry
	err := r.store.do(ctx, func(st *state) error {
		e, ok := st.payrollEntries[id]
		if !ok || e.CompanyID != companyID {
			return payroll.ErrPayrollEntryNotFound
		}
		found = e
		return nil
	})
	return found, err
}

func (r *payrollRepository) ListEntriesByMonth(ctx context.Context, companyID string, month string) ([]payroll.Entry, error) {
	return r.filter(ctx, func(e payroll.Entry) bool {
		return e.CompanyID == companyID && e.Month == month
	})
}

func (r *payrollRepository) ListEntriesByEmployee(ctx context.Context, companyID string, employeeID string) ([]payroll.Entry, error) {
	return r.filter(ctx, func(e payroll.Entry) bool {
		return e.CompanyID == companyID && e.EmployeeID == employeeID
	})
}

func (r *payrollRepository) filter(ctx context.Context, match func(payroll.Entry) bool) ([]payroll.Entry, error) {
	var result []payroll.Entry
	err := r.store.do(ctx, func(st *state) error {
		for _, e := range st.payrollEntries {
			if match(e) {
				result = append(result, e)
			}
		}
		return nil
	})
	slices.SortFunc(result, func(a, b payroll.Entry) int {
		if c := strings.Compare(b.Month, a.Month); c != 0 {
			return c
		}
		return strings.Compare(a.EmployeeName, b.EmployeeName)
	})
	return result, err
}

func (r *payrollRepository) CountEntriesByMonth(ctx context.Context, companyID string, month string) (int, int, error) {
	var total, paid int
	err := r.store.do(ctx, func(st *state) error {
		for _, e := range st.payrollEntries {
			if e.CompanyID == companyID && e.Month == month {
				total++
				if e.IsPaid {
					paid++
				}
			}
		}
		return nil
	})
	return total, paid, err
}

func (r *payrollRepository) MarkPaid(ctx context.Context, companyID string, id string, paidAt time.Time, transactionID string) error {
	return r.transition(ctx, companyID, id, func(e *payroll.Entry) error {
		if e.IsPaid {
			return payroll.ErrPayrollEntryAlreadyPaid
		}
		txID := transactionID
		e.IsPaid = true
		e.PaidDate = &paidAt
		e.LinkedTransactionID = &txID
		e.UpdatedAt = paidAt
		return nil
	})
}

func (r *payrollRepository) MarkUnpaid(ctx context.Context, companyID string, id string) error {
	return r.transition(ctx, companyID, id, func(e *payroll.Entry) error {
		if !e.IsPaid {
			return payroll.ErrPayrollEntryNotPaid
		}
		e.IsPaid = false
		e.PaidDate = nil
		e.LinkedTransactionID = nil
		e.UpdatedAt = time.Now()
		return nil
	})
}

func (r *payrollRepository) transition(ctx context.Context, companyID string, id string, fn func(e *payroll.Entry) error) error {
	return r.store.do(ctx, func(st *state) error {
		e, ok := st.payrollEntries[id]
		if !ok || e.CompanyID != companyID {
			return payroll.ErrPayrollEntryNotFound
		}
		if err := fn(&e); err != nil {
			return err
		}
		st.payrollEntries[id] = e
		return nil
	})
}

func (r *payrollRepository) DeleteEntry(ctx context.Context, companyID string, id string) error {
	return r.store.do(ctx, func(st *state) error {
		e, ok := st.payrollEntries[id]
		if !ok || e.CompanyID != companyID {
			return payroll.ErrPayrollEntryNotFound
		}
		if e.IsPaid {
			return payroll.ErrCannotDeletePaidEntry
		}
		delete(st.payrollEntries, id)
		return nil
	})
}

func (r *payrollRepository) DeleteUnpaidEntriesByMonth(ctx context.Context, companyID string, month string) (int, error) {
	deleted := 0
	err := r.store.do(ctx, func(st *state) error {
		for id, e := range st.payrollEntries {
			if e.CompanyID == companyID && e.Month == month && !e.IsPaid {
				delete(st.payrollEntries, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

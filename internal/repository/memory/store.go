package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
)

type state struct {
	employees      map[string]employee.Employee
	salaryHistory  map[string]employee.SalaryHistory
	overtime       map[string]overtime.Entry
	advances       map[string]advance.Advance
	payrollEntries map[string]payroll.Entry
	payrollRuns    map[string]payroll.Run // keyed by runKey
	records        map[string]reconciliation.Record
	activity       []activity.Log
}

func newState() *state {
	return &state{
		employees:      make(map[string]employee.Employee),
		salaryHistory:  make(map[string]employee.SalaryHistory),
		overtime:       make(map[string]overtime.Entry),
		advances:       make(map[string]advance.Advance),
		payrollEntries: make(map[string]payroll.Entry),
		payrollRuns:    make(map[string]payroll.Run),
		records:        make(map[string]reconciliation.Record),
	}
}

// clone copies every table. Stored values are replaced, never mutated in
// place, so copying the maps is enough for a rollback snapshot.
func (s *state) clone() *state {
	return &state{
		employees:      maps.Clone(s.employees),
		salaryHistory:  maps.Clone(s.salaryHistory),
		overtime:       maps.Clone(s.overtime),
		advances:       maps.Clone(s.advances),
		payrollEntries: maps.Clone(s.payrollEntries),
		payrollRuns:    maps.Clone(s.payrollRuns),
		records:        maps.Clone(s.records),
		activity:       append([]activity.Log(nil), s.activity...),
	}
}

func runKey(companyID, month string) string {
	return companyID + "/" + month
}

// Store is an in-process implementation of every repository. Transactions
// are serialised and roll back to a snapshot on error.
type Store struct {
	mu   sync.Mutex
	data *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// WithinTransaction implements database.Transactor
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// do runs fn against the current state, taking the lock unless ctx already holds it
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

package employee

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	activityservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/activity"
	advanceservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/advance"
	overtimeservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/overtime"
	payrollservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	reconciliationservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/reconciliation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ctx      context.Context
	svc      employee.EmployeeService
	payroll  payroll.PayrollService
	advances advance.AdvanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	hub := sse.NewHub()
	employeeRepo := memory.NewEmployeeRepository(store)
	payrollRepo := memory.NewPayrollRepository(store)

	activitySvc := activityservice.NewActivityService(memory.NewActivityRepository(store))
	t.Cleanup(activitySvc.Close)

	overtimeSvc := overtimeservice.NewOvertimeService(memory.NewOvertimeRepository(store), employeeRepo, activitySvc, hub)
	advanceSvc := advanceservice.NewAdvanceService(memory.NewAdvanceRepository(store), employeeRepo, activitySvc, hub)
	reconciliationSvc := reconciliationservice.NewReconciliationService(memory.NewRecordRepository(store), nil, reconciliationservice.Options{})
	payrollSvc := payrollservice.NewPayrollService(store, payrollRepo, employeeRepo, overtimeSvc, advanceSvc,
		reconciliationSvc, activitySvc, hub, payrollservice.DefaultPolicy())

	svc := NewEmployeeService(store, employeeRepo, payrollRepo, payrollSvc, advanceSvc, activitySvc, hub)
	svc.(*EmployeeServiceImpl).now = func() time.Time {
		return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	}

	ctx, err := jwt.NewContext(context.Background(), "user-1", "company-1")
	require.NoError(t, err)

	return &testEnv{ctx: ctx, svc: svc, payroll: payrollSvc, advances: advanceSvc}
}

func (e *testEnv) create(t *testing.T, name, salary, hireDate string) employee.EmployeeResponse {
	t.Helper()
	emp, err := e.svc.CreateEmployee(e.ctx, employee.CreateEmployeeRequest{
		Name:          name,
		Position:      "Engineer",
		CurrentSalary: money.Amount(salary),
		HireDate:      hireDate,
	})
	require.NoError(t, err)
	return emp
}

func TestCreateEmployee(t *testing.T) {
	env := newTestEnv(t)

	emp := env.create(t, "Ana", "600", "2025-01-10")
	assert.Equal(t, "Ana", emp.Name)
	assert.Equal(t, "600", emp.CurrentSalary.String())
	assert.Equal(t, "2025-01-10", emp.HireDate)

	_, err := env.svc.CreateEmployee(env.ctx, employee.CreateEmployeeRequest{Name: "Budi", CurrentSalary: "600", HireDate: "2025-07-01"})
	assert.ErrorIs(t, err, employee.ErrFutureHireDate)

	list, err := env.svc.ListEmployees(env.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateEmployee_SalaryChangeAppendsHistory(t *testing.T) {
	env := newTestEnv(t)
	emp := env.create(t, "Ana", "600", "2025-01-10")

	salary := money.Amount("660")
	notes := "annual review"
	effective := "2025-06-01"
	updated, err := env.svc.UpdateEmployee(env.ctx, employee.UpdateEmployeeRequest{
		ID:            emp.ID,
		CurrentSalary: &salary,
		EffectiveDate: &effective,
		SalaryNotes:   &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "660", updated.CurrentSalary.String())

	history, err := env.svc.GetSalaryHistory(env.ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "600", history[0].OldSalary.String())
	assert.Equal(t, "660", history[0].NewSalary.String())
	assert.Equal(t, "10", history[0].IncrementPercentage.String())
	assert.Equal(t, "2025-06-01", history[0].EffectiveDate)
	assert.Equal(t, "annual review", *history[0].Notes)

	// a non-salary edit or the same salary does not add history
	position := "Lead"
	_, err = env.svc.UpdateEmployee(env.ctx, employee.UpdateEmployeeRequest{ID: emp.ID, Position: &position, CurrentSalary: &salary})
	require.NoError(t, err)

	history, err = env.svc.GetSalaryHistory(env.ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestUpdateEmployee_NotFound(t *testing.T) {
	env := newTestEnv(t)
	name := "X"
	_, err := env.svc.UpdateEmployee(env.ctx, employee.UpdateEmployeeRequest{ID: "missing", Name: &name})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDeleteEmployee_RemovesUnpaidKeepsPaid(t *testing.T) {
	env := newTestEnv(t)
	emp := env.create(t, "Ana", "1000", "2024-06-01")

	january, err := env.payroll.ProcessMonth(env.ctx, payroll.ProcessPayrollRequest{Month: "2025-01"})
	require.NoError(t, err)
	_, err = env.payroll.MarkAsPaid(env.ctx, january.Entries[0].ID)
	require.NoError(t, err)

	_, err = env.advances.CreateAdvance(env.ctx, advance.CreateAdvanceRequest{EmployeeID: emp.ID, Amount: "200", Date: "2025-02-03"})
	require.NoError(t, err)

	_, err = env.payroll.ProcessMonth(env.ctx, payroll.ProcessPayrollRequest{Month: "2025-02"})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteEmployee(env.ctx, emp.ID))

	_, err = env.svc.GetEmployee(env.ctx, emp.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	paid, err := env.payroll.GetEntry(env.ctx, january.Entries[0].ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)

	february, err := env.payroll.GetMonth(env.ctx, "2025-02")
	require.NoError(t, err)
	assert.Empty(t, february.Entries)

	runs, err := env.payroll.ListRuns(env.ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "2025-01", runs[0].Month)

	// the advance claimed by the deleted February entry is free again
	eligible, err := env.advances.EligibleForDeduction(env.ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, eligible, 1)
}

func TestGetBalance(t *testing.T) {
	env := newTestEnv(t)
	emp := env.create(t, "Ana", "1000", "2024-06-01")

	_, err := env.payroll.ProcessMonth(env.ctx, payroll.ProcessPayrollRequest{Month: "2025-01"})
	require.NoError(t, err)

	_, err = env.advances.CreateAdvance(env.ctx, advance.CreateAdvanceRequest{EmployeeID: emp.ID, Amount: "250", Date: "2025-02-03"})
	require.NoError(t, err)

	balance, err := env.svc.GetBalance(env.ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000", balance.UnpaidSalary.String())
	assert.Equal(t, "250", balance.OutstandingAdvances.String())
	assert.Equal(t, "750", balance.NetBalance.String())
}

func TestGetBalance_ClaimedAdvanceCountedOnce(t *testing.T) {
	env := newTestEnv(t)
	emp := env.create(t, "Ana", "1000", "2024-06-01")

	_, err := env.advances.CreateAdvance(env.ctx, advance.CreateAdvanceRequest{EmployeeID: emp.ID, Amount: "300", Date: "2025-01-05"})
	require.NoError(t, err)

	_, err = env.payroll.ProcessMonth(env.ctx, payroll.ProcessPayrollRequest{Month: "2025-01"})
	require.NoError(t, err)

	balance, err := env.svc.GetBalance(env.ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "700", balance.UnpaidSalary.String())
	assert.True(t, balance.OutstandingAdvances.IsZero())
	assert.Equal(t, "700", balance.NetBalance.String())
}

package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustPeriod(t *testing.T, month string) Period {
	t.Helper()
	p, err := NewPeriod(month)
	require.NoError(t, err)
	return p
}

func TestNewPeriod(t *testing.T) {
	p := mustPeriod(t, "2024-02")
	assert.Equal(t, 29, p.DaysInMonth)
	assert.Equal(t, date("2024-02-01"), p.Start)
	assert.Equal(t, date("2024-02-29"), p.End)

	_, err := NewPeriod("2024-13")
	assert.Error(t, err)
}

func TestPeriodIsAfter(t *testing.T) {
	now := time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)
	assert.False(t, mustPeriod(t, "2025-06").IsAfter(now))
	assert.False(t, mustPeriod(t, "2025-01").IsAfter(now))
	assert.True(t, mustPeriod(t, "2025-07").IsAfter(now))
	assert.True(t, mustPeriod(t, "2099-01").IsAfter(now))
}

func TestCalculateProratedWithOvertime(t *testing.T) {
	emp := employee.Employee{ID: "e1", Name: "Ana", CurrentSalary: dec("600"), OvertimeEligible: true, HireDate: date("2025-01-10")}

	entry, ok := DefaultPolicy().Calculate(Input{
		Employee:      emp,
		Period:        mustPeriod(t, "2025-01"),
		OvertimeHours: dec("10"),
		OvertimeIDs:   []string{"ot-1"},
	})
	require.True(t, ok)

	assert.True(t, entry.IsProrated)
	assert.Equal(t, 22, entry.DaysWorked)
	assert.Equal(t, 31, entry.DaysInMonth)
	assert.Equal(t, "425.81", entry.BaseSalary.String())
	assert.Equal(t, "600", entry.FullMonthlySalary.String())
	assert.Equal(t, "28.85", entry.OvertimePay.String())
	assert.Equal(t, "454.66", entry.TotalSalary.String())
	assert.Equal(t, "454.66", entry.NetSalary.String())
	assert.Equal(t, []string{"ot-1"}, entry.OvertimeEntryIDs)
}

func TestCalculateProration(t *testing.T) {
	cases := []struct {
		name       string
		hireDate   string
		prorated   bool
		daysWorked int
		base       string
	}{
		{"hired before month", "2024-05-20", false, 31, "3100"},
		{"hired on first day", "2025-01-01", false, 31, "3100"},
		{"hired on second day", "2025-01-02", true, 30, "3000"},
		{"hired on last day", "2025-01-31", true, 1, "100"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			emp := employee.Employee{ID: "e1", CurrentSalary: dec("3100"), HireDate: date(c.hireDate)}
			entry, ok := DefaultPolicy().Calculate(Input{Employee: emp, Period: mustPeriod(t, "2025-01")})
			require.True(t, ok)
			assert.Equal(t, c.prorated, entry.IsProrated)
			assert.Equal(t, c.daysWorked, entry.DaysWorked)
			assert.True(t, entry.BaseSalary.Equal(dec(c.base)), "base = %s", entry.BaseSalary)
		})
	}
}

func TestCalculateMultipliesBeforeDividing(t *testing.T) {
	// 1000 * 17 / 30 = 566.666.. -> 566.67; dividing first gives 33.33 * 17 = 566.61
	emp := employee.Employee{CurrentSalary: dec("1000"), HireDate: date("2025-04-14")}
	entry, ok := DefaultPolicy().Calculate(Input{Employee: emp, Period: mustPeriod(t, "2025-04")})
	require.True(t, ok)
	assert.Equal(t, 17, entry.DaysWorked)
	assert.Equal(t, "566.67", entry.BaseSalary.String())
}

func TestCalculateSkipsEmployeeHiredAfterMonth(t *testing.T) {
	emp := employee.Employee{CurrentSalary: dec("600"), HireDate: date("2025-02-01")}
	_, ok := DefaultPolicy().Calculate(Input{Employee: emp, Period: mustPeriod(t, "2025-01")})
	assert.False(t, ok)
}

func TestCalculateIgnoresOvertimeForIneligibleEmployee(t *testing.T) {
	emp := employee.Employee{CurrentSalary: dec("600"), HireDate: date("2024-01-01")}
	entry, ok := DefaultPolicy().Calculate(Input{
		Employee:      emp,
		Period:        mustPeriod(t, "2025-01"),
		OvertimeHours: dec("10"),
		OvertimeIDs:   []string{"ot-1"},
	})
	require.True(t, ok)
	assert.True(t, entry.OvertimePay.IsZero())
	assert.True(t, entry.OvertimeHours.IsZero())
	assert.Empty(t, entry.OvertimeEntryIDs)
}

func TestOvertimePayMultiplier(t *testing.T) {
	policy := DefaultPolicy()
	policy.OvertimeMultiplier = dec("1.5")
	assert.Equal(t, "43.27", policy.OvertimePay(dec("600"), dec("10")).String())

	assert.Equal(t, "28.85", DefaultPolicy().OvertimePay(dec("600"), dec("10")).String())
}

func TestCalculateAdjustmentsAndAdvances(t *testing.T) {
	emp := employee.Employee{ID: "e1", CurrentSalary: dec("1000"), HireDate: date("2024-01-01")}
	entry, ok := DefaultPolicy().Calculate(Input{
		Employee: emp,
		Period:   mustPeriod(t, "2025-01"),
		Adjustments: []payroll.Adjustment{
			{Kind: payroll.KindBonus, Type: payroll.BonusPerformance, Amount: dec("50.005")},
			{Kind: payroll.KindDeduction, Type: payroll.DeductionTax, Amount: dec("20")},
			{Kind: payroll.KindDeduction, Type: payroll.DeductionLate, Amount: dec("5.50")},
		},
		Advances: []advance.Advance{
			{ID: "a1", Amount: dec("300"), RemainingAmount: dec("300")},
			{ID: "a2", Amount: dec("100"), RemainingAmount: dec("100")},
		},
	})
	require.True(t, ok)

	assert.Len(t, entry.Bonuses, 1)
	assert.Len(t, entry.Deductions, 2)
	assert.Equal(t, "50.01", entry.TotalBonus.String())
	assert.Equal(t, "25.5", entry.TotalDeduction.String())
	assert.Equal(t, "1024.51", entry.TotalSalary.String())
	assert.Equal(t, "400", entry.AdvanceDeduction.String())
	assert.Equal(t, []string{"a1", "a2"}, entry.AdvanceIDs)
	assert.Equal(t, "624.51", entry.NetSalary.String())
}

func TestCalculateNetMayGoNegative(t *testing.T) {
	emp := employee.Employee{CurrentSalary: dec("200"), HireDate: date("2024-01-01")}
	entry, ok := DefaultPolicy().Calculate(Input{
		Employee: emp,
		Period:   mustPeriod(t, "2025-01"),
		Advances: []advance.Advance{{ID: "a1", Amount: dec("300"), RemainingAmount: dec("300")}},
	})
	require.True(t, ok)
	assert.Equal(t, "-100", entry.NetSalary.String())
}

func TestCalculateFormulasHold(t *testing.T) {
	salaries := []string{"600", "1234.56", "999.99", "45000"}
	hires := []string{"2024-12-15", "2025-03-01", "2025-03-07", "2025-03-31"}

	for _, salary := range salaries {
		for _, hire := range hires {
			emp := employee.Employee{CurrentSalary: dec(salary), OvertimeEligible: true, HireDate: date(hire)}
			entry, ok := DefaultPolicy().Calculate(Input{
				Employee:      emp,
				Period:        mustPeriod(t, "2025-03"),
				OvertimeHours: dec("7.5"),
				Adjustments:   []payroll.Adjustment{{Kind: payroll.KindBonus, Type: payroll.AdjustmentOther, Amount: dec("12.34")}},
				Advances:      []advance.Advance{{ID: "a", RemainingAmount: dec("77.77")}},
			})
			require.True(t, ok)

			wantTotal := entry.BaseSalary.Add(entry.OvertimePay).Add(entry.TotalBonus).Sub(entry.TotalDeduction).Round(2)
			assert.True(t, entry.TotalSalary.Equal(wantTotal), "total for %s/%s", salary, hire)
			assert.True(t, entry.NetSalary.Equal(entry.TotalSalary.Sub(entry.AdvanceDeduction).Round(2)), "net for %s/%s", salary, hire)

			if entry.IsProrated {
				wantBase := emp.CurrentSalary.Mul(decimal.NewFromInt(int64(entry.DaysWorked))).Div(decimal.NewFromInt(31)).Round(2)
				assert.True(t, entry.BaseSalary.Equal(wantBase), "base for %s/%s", salary, hire)
			}
		}
	}
}

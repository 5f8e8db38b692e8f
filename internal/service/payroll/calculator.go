package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// DefaultStandardMonthlyHours is 26 working days of 8 hours
const DefaultStandardMonthlyHours = 208

// Policy holds the configurable parts of the salary formula
type Policy struct {
	OvertimeMultiplier   decimal.Decimal
	StandardMonthlyHours decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		OvertimeMultiplier:   decimal.NewFromInt(1),
		StandardMonthlyHours: decimal.NewFromInt(DefaultStandardMonthlyHours),
	}
}

// Period is a payroll month resolved to calendar bounds
type Period struct {
	Month       string
	Start       time.Time
	End         time.Time // last day of the month
	DaysInMonth int
}

func NewPeriod(month string) (Period, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return Period{}, err
	}
	end := start.AddDate(0, 1, -1)
	return Period{
		Month:       month,
		Start:       start,
		End:         end,
		DaysInMonth: end.Day(),
	}, nil
}

// IsAfter reports whether the period starts after the month containing t
func (p Period) IsAfter(t time.Time) bool {
	current := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return p.Start.After(current)
}

// Input is everything needed to price one employee for one period
type Input struct {
	Employee      employee.Employee
	Period        Period
	OvertimeHours decimal.Decimal
	OvertimeIDs   []string
	Adjustments   []payroll.Adjustment
	Advances      []advance.Advance
}

// Calculate prices one employee's month. The returned entry has no ID,
// tenant or timestamps yet. ok is false when the employee was hired after
// the period.
func (p Policy) Calculate(in Input) (entry payroll.Entry, ok bool) {
	emp := in.Employee
	if !emp.HiredBy(in.Period.End) {
		return payroll.Entry{}, false
	}

	salary := emp.CurrentSalary
	daysWorked := in.Period.DaysInMonth
	baseSalary := salary
	prorated := false

	if !emp.HireDate.Before(in.Period.Start) && emp.HireDate.Day() > 1 {
		daysWorked = in.Period.DaysInMonth - emp.HireDate.Day() + 1
		// multiply before dividing
		baseSalary = money.Round(money.Div(
			money.Mul(salary, decimal.NewFromInt(int64(daysWorked))),
			decimal.NewFromInt(int64(in.Period.DaysInMonth)),
		))
		prorated = true
	}

	overtimeHours := decimal.Zero
	overtimePay := decimal.Zero
	var overtimeIDs []string
	if emp.OvertimeEligible && in.OvertimeHours.IsPositive() {
		overtimeHours = in.OvertimeHours
		overtimeIDs = in.OvertimeIDs
		overtimePay = p.OvertimePay(salary, overtimeHours)
	}

	var bonuses, deductions []payroll.Adjustment
	for _, a := range in.Adjustments {
		a.Amount = money.Round(a.Amount)
		if a.Kind == payroll.KindBonus {
			bonuses = append(bonuses, a)
		} else {
			deductions = append(deductions, a)
		}
	}
	totalBonus := sumAdjustments(bonuses)
	totalDeduction := sumAdjustments(deductions)

	totalSalary := money.Round(money.Sub(money.Sum(baseSalary, overtimePay, totalBonus), totalDeduction))

	advanceDeduction := decimal.Zero
	var advanceIDs []string
	for _, a := range in.Advances {
		advanceDeduction = money.Add(advanceDeduction, a.RemainingAmount)
		advanceIDs = append(advanceIDs, a.ID)
	}
	advanceDeduction = money.Round(advanceDeduction)

	return payroll.Entry{
		EmployeeID:        emp.ID,
		EmployeeName:      emp.Name,
		Month:             in.Period.Month,
		BaseSalary:        baseSalary,
		FullMonthlySalary: salary,
		DaysWorked:        daysWorked,
		DaysInMonth:       in.Period.DaysInMonth,
		IsProrated:        prorated,
		OvertimeHours:     overtimeHours,
		OvertimePay:       overtimePay,
		Bonuses:           bonuses,
		Deductions:        deductions,
		TotalBonus:        totalBonus,
		TotalDeduction:    totalDeduction,
		AdvanceDeduction:  advanceDeduction,
		AdvanceIDs:        advanceIDs,
		OvertimeEntryIDs:  overtimeIDs,
		TotalSalary:       totalSalary,
		// may go negative when advances exceed the month's pay
		NetSalary: money.Round(money.Sub(totalSalary, advanceDeduction)),
	}, true
}

// OvertimePay is round(salary / standard hours * hours * multiplier), computed
// with the divisions last.
func (p Policy) OvertimePay(salary, hours decimal.Decimal) decimal.Decimal {
	return money.Round(money.Div(
		money.Mul(money.Mul(salary, hours), p.OvertimeMultiplier),
		p.StandardMonthlyHours,
	))
}

func sumAdjustments(adjustments []payroll.Adjustment) decimal.Decimal {
	total := decimal.Zero
	for _, a := range adjustments {
		total = money.Add(total, a.Amount)
	}
	return money.Round(total)
}

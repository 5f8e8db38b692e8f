package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== RUNS ==========

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.Run) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (company_id, month, entry_count, processed_by, processed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := q.Exec(ctx, query, run.CompanyID, run.Month, run.EntryCount, run.ProcessedBy, run.ProcessedAt); err != nil {
		if isUniqueViolation(err, "payroll_runs_pkey") {
			return payroll.ErrMonthAlreadyProcessed
		}
		return fmt.Errorf("failed to create payroll run: %w", err)
	}
	return nil
}

func (r *payrollRepository) ListRuns(ctx context.Context, companyID string) ([]payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	// entry_count is live so deleted entries are reflected
	query := `
		SELECT pr.company_id, pr.month,
		       (SELECT COUNT(*) FROM payroll_entries pe WHERE pe.company_id = pr.company_id AND pe.month = pr.month),
		       pr.processed_by, pr.processed_at
		FROM payroll_runs pr
		WHERE pr.company_id = $1
		ORDER BY pr.month DESC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.Run
	for rows.Next() {
		var run payroll.Run
		if err := rows.Scan(&run.CompanyID, &run.Month, &run.EntryCount, &run.ProcessedBy, &run.ProcessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *payrollRepository) DeleteRun(ctx context.Context, companyID string, month string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_runs WHERE company_id = $1 AND month = $2`, companyID, month); err != nil {
		return fmt.Errorf("failed to delete payroll run: %w", err)
	}
	return nil
}

// ========== ENTRIES ==========

const entryColumns = `id, company_id, employee_id, employee_name, month, base_salary, full_monthly_salary,
	days_worked, days_in_month, is_prorated, overtime_hours, overtime_pay, bonuses, deductions,
	total_bonus, total_deduction, advance_deduction, advance_ids, overtime_entry_ids,
	total_salary, net_salary, is_paid, paid_date, linked_transaction_id, created_at, updated_at`

func scanEntry(row pgx.Row) (payroll.Entry, error) {
	var (
		e                   payroll.Entry
		bonuses, deductions []byte
	)
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.EmployeeID, &e.EmployeeName, &e.Month, &e.BaseSalary, &e.FullMonthlySalary,
		&e.DaysWorked, &e.DaysInMonth, &e.IsProrated, &e.OvertimeHours, &e.OvertimePay, &bonuses, &deductions,
		&e.TotalBonus, &e.TotalDeduction, &e.AdvanceDeduction, &e.AdvanceIDs, &e.OvertimeEntryIDs,
		&e.TotalSalary, &e.NetSalary, &e.IsPaid, &e.PaidDate, &e.LinkedTransactionID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return payroll.Entry{}, err
	}
	if err := json.Unmarshal(bonuses, &e.Bonuses); err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to decode bonuses: %w", err)
	}
	if err := json.Unmarshal(deductions, &e.Deductions); err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to decode deductions: %w", err)
	}
	return e, nil
}

func collectEntries(rows pgx.Rows) ([]payroll.Entry, error) {
	defer rows.Close()

	var entries []payroll.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func encodeAdjustments(adjustments []payroll.Adjustment) ([]byte, error) {
	if adjustments == nil {
		adjustments = []payroll.Adjustment{}
	}
	return json.Marshal(adjustments)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func (r *payrollRepository) CreateEntry(ctx context.Context, entry payroll.Entry) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	bonuses, err := encodeAdjustments(entry.Bonuses)
	if err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to encode bonuses: %w", err)
	}
	deductions, err := encodeAdjustments(entry.Deductions)
	if err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to encode deductions: %w", err)
	}

	query := `
		INSERT INTO payroll_entries (
			id, company_id, employee_id, employee_name, month, base_salary, full_monthly_salary,
			days_worked, days_in_month, is_prorated, overtime_hours, overtime_pay, bonuses, deductions,
			total_bonus, total_deduction, advance_deduction, advance_ids, overtime_entry_ids,
			total_salary, net_salary, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING ` + entryColumns

	created, err := scanEntry(q.QueryRow(ctx, query,
		entry.ID, entry.CompanyID, entry.EmployeeID, entry.EmployeeName, entry.Month, entry.BaseSalary, entry.FullMonthlySalary,
		entry.DaysWorked, entry.DaysInMonth, entry.IsProrated, entry.OvertimeHours, entry.OvertimePay, bonuses, deductions,
		entry.TotalBonus, entry.TotalDeduction, entry.AdvanceDeduction, nonNil(entry.AdvanceIDs), nonNil(entry.OvertimeEntryIDs),
		entry.TotalSalary, entry.NetSalary, entry.CreatedAt, entry.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err, "uk_payroll_entry_employee_month") {
			return payroll.Entry{}, payroll.ErrMonthAlreadyProcessed
		}
		return payroll.Entry{}, fmt.Errorf("failed to create payroll entry: %w", err)
	}
	return created, nil
}

func (r *payrollRepository) GetEntryByID(ctx context.Context, id string, companyID string) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEntry(q.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM payroll_entries WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Entry{}, payroll.ErrPayrollEntryNotFound
		}
		return payroll.Entry{}, fmt.Errorf("failed to get payroll entry: %w", err)
	}
	return e, nil
}

// lockInTx holds listed entries until commit so a concurrent payment
// cannot slip between reading and deleting them.
func lockInTx(ctx context.Context) string {
	if _, ok := database.TxFromContext(ctx); ok {
		return " FOR UPDATE"
	}
	return ""
}

func (r *payrollRepository) ListEntriesByMonth(ctx context.Context, companyID string, month string) ([]payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT `+entryColumns+` FROM payroll_entries WHERE company_id = $1 AND month = $2 ORDER BY employee_name, id`+lockInTx(ctx),
		companyID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll entries: %w", err)
	}
	return collectEntries(rows)
}

func (r *payrollRepository) ListEntriesByEmployee(ctx context.Context, companyID string, employeeID string) ([]payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT `+entryColumns+` FROM payroll_entries WHERE company_id = $1 AND employee_id = $2 ORDER BY month DESC`+lockInTx(ctx),
		companyID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll entries: %w", err)
	}
	return collectEntries(rows)
}

func (r *payrollRepository) CountEntriesByMonth(ctx context.Context, companyID string, month string) (int, int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_paid)
		FROM payroll_entries
		WHERE company_id = $1 AND month = $2
	`

	var total, paid int
	if err := q.QueryRow(ctx, query, companyID, month).Scan(&total, &paid); err != nil {
		return 0, 0, fmt.Errorf("failed to count payroll entries: %w", err)
	}
	return total, paid, nil
}

// ========== STATE TRANSITIONS ==========

func (r *payrollRepository) MarkPaid(ctx context.Context, companyID string, id string, paidAt time.Time, transactionID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_entries
		SET is_paid = true, paid_date = $3, linked_transaction_id = $4, updated_at = $3
		WHERE id = $1 AND company_id = $2 AND is_paid = false
	`

	tag, err := q.Exec(ctx, query, id, companyID, paidAt, transactionID)
	if err != nil {
		return fmt.Errorf("failed to mark payroll entry paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.guardFailure(ctx, id, companyID, payroll.ErrPayrollEntryAlreadyPaid)
	}
	return nil
}

func (r *payrollRepository) MarkUnpaid(ctx context.Context, companyID string, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_entries
		SET is_paid = false, paid_date = NULL, linked_transaction_id = NULL, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND is_paid = true
	`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to mark payroll entry unpaid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.guardFailure(ctx, id, companyID, payroll.ErrPayrollEntryNotPaid)
	}
	return nil
}

func (r *payrollRepository) DeleteEntry(ctx context.Context, companyID string, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_entries WHERE id = $1 AND company_id = $2 AND is_paid = false`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.guardFailure(ctx, id, companyID, payroll.ErrCannotDeletePaidEntry)
	}
	return nil
}

func (r *payrollRepository) DeleteUnpaidEntriesByMonth(ctx context.Context, companyID string, month string) (int, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_entries WHERE company_id = $1 AND month = $2 AND is_paid = false`, companyID, month)
	if err != nil {
		return 0, fmt.Errorf("failed to delete payroll entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// guardFailure tells a missing entry apart from one in the wrong paid state
func (r *payrollRepository) guardFailure(ctx context.Context, id string, companyID string, stateErr error) error {
	if _, err := r.GetEntryByID(ctx, id, companyID); err != nil {
		return err
	}
	return stateErr
}

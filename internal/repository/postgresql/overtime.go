package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type overtimeRepository struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.OvertimeRepository {
	return &overtimeRepository{db: db}
}

const overtimeColumns = `id, company_id, employee_id, date, hours, month, notes, linked_payroll_id, created_at, updated_at`

func scanOvertime(row pgx.Row) (overtime.Entry, error) {
	var e overtime.Entry
	err := row.Scan(&e.ID, &e.CompanyID, &e.EmployeeID, &e.Date, &e.Hours, &e.Month, &e.Notes, &e.LinkedPayrollID, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *overtimeRepository) Create(ctx context.Context, entry overtime.Entry) (overtime.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_entries (id, company_id, employee_id, date, hours, month, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + overtimeColumns

	created, err := scanOvertime(q.QueryRow(ctx, query,
		entry.ID, entry.CompanyID, entry.EmployeeID, entry.Date, entry.Hours, entry.Month, entry.Notes, entry.CreatedAt, entry.UpdatedAt,
	))
	if err != nil {
		return overtime.Entry{}, fmt.Errorf("failed to create overtime entry: %w", err)
	}
	return created, nil
}

func (r *overtimeRepository) GetByID(ctx context.Context, id string, companyID string) (overtime.Entry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanOvertime(q.QueryRow(ctx,
		`SELECT `+overtimeColumns+` FROM overtime_entries WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Entry{}, overtime.ErrOvertimeEntryNotFound
		}
		return overtime.Entry{}, fmt.Errorf("failed to get overtime entry: %w", err)
	}
	return e, nil
}

// lockedOrMissing resolves why a guarded write touched no rows
func (r *overtimeRepository) lockedOrMissing(ctx context.Context, id string, companyID string) error {
	if _, err := r.GetByID(ctx, id, companyID); err != nil {
		return err
	}
	return overtime.ErrOvertimeEntryLocked
}

func (r *overtimeRepository) Update(ctx context.Context, entry overtime.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_entries
		SET date = $3, hours = $4, month = $5, notes = $6, updated_at = $7
		WHERE id = $1 AND company_id = $2 AND linked_payroll_id IS NULL
	`

	tag, err := q.Exec(ctx, query, entry.ID, entry.CompanyID, entry.Date, entry.Hours, entry.Month, entry.Notes, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update overtime entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.lockedOrMissing(ctx, entry.ID, entry.CompanyID)
	}
	return nil
}

func (r *overtimeRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`DELETE FROM overtime_entries WHERE id = $1 AND company_id = $2 AND linked_payroll_id IS NULL`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete overtime entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.lockedOrMissing(ctx, id, companyID)
	}
	return nil
}

func (r *overtimeRepository) List(ctx context.Context, companyID string, filter overtime.ListFilter) ([]overtime.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + overtimeColumns + `
		FROM overtime_entries
		WHERE company_id = $1
		  AND ($2 = '' OR employee_id::text = $2)
		  AND ($3 = '' OR month = $3)
		ORDER BY date, created_at
	`

	rows, err := q.Query(ctx, query, companyID, filter.EmployeeID, filter.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime entries: %w", err)
	}
	defer rows.Close()

	var entries []overtime.Entry
	for rows.Next() {
		e, err := scanOvertime(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overtime entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *overtimeRepository) LinkToPayroll(ctx context.Context, companyID string, payrollID string, entryIDs []string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_entries
		SET linked_payroll_id = $2, updated_at = NOW()
		WHERE company_id = $1 AND id::text = ANY($3) AND linked_payroll_id IS NULL
	`

	tag, err := q.Exec(ctx, query, companyID, payrollID, entryIDs)
	if err != nil {
		return fmt.Errorf("failed to link overtime entries: %w", err)
	}
	// Caller's transaction rolls the partial link back
	if int(tag.RowsAffected()) != len(entryIDs) {
		return overtime.ErrOvertimeEntryLocked
	}
	return nil
}

func (r *overtimeRepository) UnlinkPayroll(ctx context.Context, companyID string, payrollIDs []string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_entries
		SET linked_payroll_id = NULL, updated_at = NOW()
		WHERE company_id = $1 AND linked_payroll_id = ANY($2)
	`

	if _, err := q.Exec(ctx, query, companyID, payrollIDs); err != nil {
		return fmt.Errorf("failed to unlink overtime entries: %w", err)
	}
	return nil
}

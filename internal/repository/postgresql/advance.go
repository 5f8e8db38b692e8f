package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type advanceRepository struct {
	db *database.DB
}

func NewAdvanceRepository(db *database.DB) advance.AdvanceRepository {
	return &advanceRepository{db: db}
}

const advanceColumns = `id, company_id, employee_id, amount, remaining_amount, status, date, notes,
	linked_payroll_month, linked_transaction_id, created_at, updated_at`

func scanAdvance(row pgx.Row) (advance.Advance, error) {
	var a advance.Advance
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.EmployeeID, &a.Amount, &a.RemainingAmount, &a.Status, &a.Date, &a.Notes,
		&a.LinkedPayrollMonth, &a.LinkedTransactionID, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func collectAdvances(rows pgx.Rows) ([]advance.Advance, error) {
	defer rows.Close()

	var advances []advance.Advance
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advance: %w", err)
		}
		advances = append(advances, a)
	}
	return advances, rows.Err()
}

func (r *advanceRepository) Create(ctx context.Context, a advance.Advance) (advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO advances (id, company_id, employee_id, amount, remaining_amount, status, date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + advanceColumns

	created, err := scanAdvance(q.QueryRow(ctx, query,
		a.ID, a.CompanyID, a.EmployeeID, a.Amount, a.RemainingAmount, a.Status, a.Date, a.Notes, a.CreatedAt, a.UpdatedAt,
	))
	if err != nil {
		return advance.Advance{}, fmt.Errorf("failed to create advance: %w", err)
	}
	return created, nil
}

func (r *advanceRepository) GetByID(ctx context.Context, id string, companyID string) (advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAdvance(q.QueryRow(ctx,
		`SELECT `+advanceColumns+` FROM advances WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return advance.Advance{}, advance.ErrAdvanceNotFound
		}
		return advance.Advance{}, fmt.Errorf("failed to get advance: %w", err)
	}
	return a, nil
}

func (r *advanceRepository) List(ctx context.Context, companyID string, filter advance.ListFilter) ([]advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + advanceColumns + `
		FROM advances
		WHERE company_id = $1
		  AND ($2 = '' OR employee_id::text = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY date, created_at
	`

	rows, err := q.Query(ctx, query, companyID, filter.EmployeeID, string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}
	return collectAdvances(rows)
}

func (r *advanceRepository) ListEligible(ctx context.Context, companyID string, employeeID string) ([]advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + advanceColumns + `
		FROM advances
		WHERE company_id = $1 AND employee_id = $2 AND status = 'ACTIVE' AND linked_payroll_month IS NULL
		ORDER BY date, created_at
	`

	rows, err := q.Query(ctx, query, companyID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible advances: %w", err)
	}
	return collectAdvances(rows)
}

func (r *advanceRepository) Cancel(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE advances
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = 'ACTIVE' AND linked_payroll_month IS NULL
	`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to cancel advance: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	a, err := r.GetByID(ctx, id, companyID)
	if err != nil {
		return err
	}
	if a.Status != advance.StatusActive {
		return advance.ErrAdvanceNotActive
	}
	return advance.ErrAdvanceClaimed
}

func (r *advanceRepository) Claim(ctx context.Context, companyID string, month string, ids []string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE advances
		SET linked_payroll_month = $2, updated_at = NOW()
		WHERE company_id = $1 AND id::text = ANY($3) AND status = 'ACTIVE' AND linked_payroll_month IS NULL
	`

	tag, err := q.Exec(ctx, query, companyID, month, ids)
	if err != nil {
		return fmt.Errorf("failed to claim advances: %w", err)
	}
	// A shortfall means another month got there first; the caller's transaction undoes the partial claim
	if int(tag.RowsAffected()) != len(ids) {
		return advance.ErrAdvanceAlreadyClaimed
	}
	return nil
}

func (r *advanceRepository) Release(ctx context.Context, companyID string, ids []string) error {
	return r.updateAll(ctx, "release", `
		UPDATE advances
		SET linked_payroll_month = NULL, updated_at = NOW()
		WHERE company_id = $1 AND id::text = ANY($2)
	`, companyID, ids)
}

func (r *advanceRepository) Settle(ctx context.Context, companyID string, transactionID string, ids []string) error {
	return r.updateAll(ctx, "settle", `
		UPDATE advances
		SET remaining_amount = 0, status = 'FULLY_DEDUCTED', linked_transaction_id = $3, updated_at = NOW()
		WHERE company_id = $1 AND id::text = ANY($2)
	`, companyID, ids, transactionID)
}

func (r *advanceRepository) Restore(ctx context.Context, companyID string, ids []string) error {
	return r.updateAll(ctx, "restore", `
		UPDATE advances
		SET remaining_amount = amount, status = 'ACTIVE', linked_transaction_id = NULL, updated_at = NOW()
		WHERE company_id = $1 AND id::text = ANY($2)
	`, companyID, ids)
}

func (r *advanceRepository) updateAll(ctx context.Context, op string, query string, companyID string, ids []string, extra ...any) error {
	q := GetQuerier(ctx, r.db)

	args := append([]any{companyID, ids}, extra...)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s advances: %w", op, err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		return advance.ErrAdvanceNotFound
	}
	return nil
}

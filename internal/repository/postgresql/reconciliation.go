package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type recordRepository struct {
	db *database.DB
}

func NewRecordRepository(db *database.DB) reconciliation.RecordRepository {
	return &recordRepository{db: db}
}

const recordColumns = `id, company_id, kind, amount, party_name, reference_id, transaction_id, reversed_transaction_id,
	notes, status, attempts, last_error, created_at, delivered_at`

func scanRecord(row pgx.Row) (reconciliation.Record, error) {
	var rec reconciliation.Record
	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.Kind, &rec.Amount, &rec.PartyName, &rec.ReferenceID, &rec.TransactionID,
		&rec.ReversedTransactionID, &rec.Notes, &rec.Status, &rec.Attempts, &rec.LastError, &rec.CreatedAt, &rec.DeliveredAt,
	)
	return rec, err
}

func collectRecords(rows pgx.Rows) ([]reconciliation.Record, error) {
	defer rows.Close()

	var records []reconciliation.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *recordRepository) Create(ctx context.Context, rec reconciliation.Record) (reconciliation.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO reconciliation_records (id, company_id, kind, amount, party_name, reference_id, transaction_id,
			reversed_transaction_id, notes, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + recordColumns

	created, err := scanRecord(q.QueryRow(ctx, query,
		rec.ID, rec.CompanyID, rec.Kind, rec.Amount, rec.PartyName, rec.ReferenceID, rec.TransactionID,
		rec.ReversedTransactionID, rec.Notes, rec.Status, rec.Attempts, rec.CreatedAt,
	))
	if err != nil {
		return reconciliation.Record{}, fmt.Errorf("failed to create reconciliation record: %w", err)
	}
	return created, nil
}

func (r *recordRepository) List(ctx context.Context, companyID string, filter reconciliation.ListFilter) ([]reconciliation.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM reconciliation_records
		WHERE company_id = $1
		  AND ($2 = '' OR reference_id = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, companyID, filter.ReferenceID, string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliation records: %w", err)
	}
	return collectRecords(rows)
}

func (r *recordRepository) ListPending(ctx context.Context, companyID string, limit int) ([]reconciliation.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM reconciliation_records
		WHERE status = 'pending'
		  AND ($1 = '' OR company_id = $1)
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reconciliation records: %w", err)
	}
	return collectRecords(rows)
}

func (r *recordRepository) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE reconciliation_records
		SET status = 'delivered', attempts = attempts + 1, last_error = NULL, delivered_at = $2
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, deliveredAt)
	if err != nil {
		return fmt.Errorf("failed to mark reconciliation record delivered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return reconciliation.ErrRecordNotFound
	}
	return nil
}

func (r *recordRepository) MarkFailed(ctx context.Context, id string, reason string, maxAttempts int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE reconciliation_records
		SET attempts = attempts + 1,
		    last_error = $2,
		    status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE status END
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, reason, maxAttempts)
	if err != nil {
		return fmt.Errorf("failed to mark reconciliation record failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return reconciliation.ErrRecordNotFound
	}
	return nil
}

package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
)

type recordRepository struct {
	store *Store
}

func NewRecordRepository(store *Store) reconciliation.RecordRepository {
	return &recordRepository{store: store}
}

func (r *recordRepository) Create(ctx context.Context, record reconciliation.Record) (reconciliation.Record, error) {
	err := r.store.do(ctx, func(st *state) error {
		st.records[record.ID] = record
		return nil
	})
	return record, err
}

func (r *recordRepository) List(ctx context.Context, companyID string, filter reconciliation.ListFilter) ([]reconciliation.Record, error) {
	return r.filter(ctx, func(rec reconciliation.Record) bool {
		if rec.CompanyID != companyID {
			return false
		}
		if filter.ReferenceID != "" && rec.ReferenceID != filter.ReferenceID {
			return false
		}
		return filter.Status == "" || rec.Status == filter.Status
	}, 0)
}

func (r *recordRepository) ListPending(ctx context.Context, companyID string, limit int) ([]reconciliation.Record, error) {
	return r.filter(ctx, func(rec reconciliation.Record) bool {
		return rec.Status == reconciliation.StatusPending && (companyID == "" || rec.CompanyID == companyID)
	}, limit)
}

func (r *recordRepository) filter(ctx context.Context, match func(reconciliation.Record) bool, limit int) ([]reconciliation.Record, error) {
	var result []reconciliation.Record
	err := r.store.do(ctx, func(st *state) error {
		for _, rec := range st.records {
			if match(rec) {
				result = append(result, rec)
			}
		}
		return nil
	})
	slices.SortFunc(result, func(a, b reconciliation.Record) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, err
}

func (r *recordRepository) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) error {
	return r.store.do(ctx, func(st *state) error {
		rec, ok := st.records[id]
		if !ok {
			return reconciliation.ErrRecordNotFound
		}
		rec.Status = reconciliation.StatusDelivered
		rec.Attempts++
		rec.LastError = nil
		rec.DeliveredAt = &deliveredAt
		st.records[id] = rec
		return nil
	})
}

func (r *recordRepository) MarkFailed(ctx context.Context, id string, reason string, maxAttempts int) error {
	return r.store.do(ctx, func(st *state) error {
		rec, ok := st.records[id]
		if !ok {
			return reconciliation.ErrRecordNotFound
		}
		rec.Attempts++
		rec.LastError = &reason
		if rec.Attempts >= maxAttempts {
			rec.Status = reconciliation.StatusFailed
		}
		st.records[id] = rec
		return nil
	})
}

package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/google/uuid"
)

type Options struct {
	BatchSize   int
	MaxAttempts int
}

type ReconciliationServiceImpl struct {
	recordRepo reconciliation.RecordRepository
	journal    reconciliation.Journal
	opts       Options
	now        func() time.Time
}

func NewReconciliationService(
	recordRepo reconciliation.RecordRepository,
	journal reconciliation.Journal,
	opts Options,
) reconciliation.Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	return &ReconciliationServiceImpl{
		recordRepo: recordRepo,
		journal:    journal,
		opts:       opts,
		now:        time.Now,
	}
}

func (s *ReconciliationServiceImpl) Record(ctx context.Context, req reconciliation.RecordRequest) (reconciliation.Record, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return reconciliation.Record{}, err
	}

	record := reconciliation.Record{
		ID:                    uuid.Must(uuid.NewV7()).String(),
		CompanyID:             companyID,
		Kind:                  req.Kind,
		Amount:                money.Round(req.Amount),
		PartyName:             req.PartyName,
		ReferenceID:           req.ReferenceID,
		TransactionID:         req.TransactionID,
		ReversedTransactionID: req.ReversedTransactionID,
		Notes:                 req.Notes,
		Status:                reconciliation.StatusPending,
		CreatedAt:             s.now(),
	}

	created, err := s.recordRepo.Create(ctx, record)
	if err != nil {
		return reconciliation.Record{}, fmt.Errorf("failed to enqueue reconciliation record: %w", err)
	}
	return created, nil
}

func (s *ReconciliationServiceImpl) Relay(ctx context.Context) (reconciliation.RelayResult, error) {
	return s.relay(ctx, "")
}

func (s *ReconciliationServiceImpl) RelayCompany(ctx context.Context) (reconciliation.RelayResult, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return reconciliation.RelayResult{}, err
	}
	return s.relay(ctx, companyID)
}

func (s *ReconciliationServiceImpl) relay(ctx context.Context, companyID string) (reconciliation.RelayResult, error) {
	var result reconciliation.RelayResult

	pending, err := s.recordRepo.ListPending(ctx, companyID, s.opts.BatchSize)
	if err != nil {
		return result, fmt.Errorf("failed to list pending records: %w", err)
	}

	for _, record := range pending {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		if err := s.journal.Post(ctx, record); err != nil {
			slog.Warn("Journal delivery failed",
				"record_id", record.ID,
				"transaction_id", record.TransactionID,
				"attempt", record.Attempts+1,
				"error", err,
			)
			if markErr := s.recordRepo.MarkFailed(ctx, record.ID, err.Error(), s.opts.MaxAttempts); markErr != nil {
				slog.Error("Failed to mark record as failed", "record_id", record.ID, "error", markErr)
			}
			result.Failed++
			continue
		}

		if err := s.recordRepo.MarkDelivered(ctx, record.ID, s.now()); err != nil {
			slog.Error("Failed to mark record as delivered", "record_id", record.ID, "error", err)
			continue
		}
		result.Delivered++
	}

	return result, nil
}

func (s *ReconciliationServiceImpl) ListRecords(ctx context.Context, filter reconciliation.ListFilter) ([]reconciliation.RecordResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.recordRepo.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	result := make([]reconciliation.RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, reconciliation.ToResponse(r))
	}
	return result, nil
}

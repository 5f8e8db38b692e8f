package reconciliation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJournal struct {
	mu     sync.Mutex
	posted []reconciliation.Record
	err    error
}

func (j *fakeJournal) Post(ctx context.Context, record reconciliation.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.posted = append(j.posted, record)
	return nil
}

func setup(t *testing.T, journal reconciliation.Journal, maxAttempts int) (reconciliation.Service, context.Context) {
	t.Helper()
	repo := memory.NewRecordRepository(memory.NewStore())
	svc := NewReconciliationService(repo, journal, Options{BatchSize: 10, MaxAttempts: maxAttempts})

	ctx, err := jwt.NewContext(context.Background(), "user-1", "company-1")
	require.NoError(t, err)
	return svc, ctx
}

func debit(amount string) reconciliation.RecordRequest {
	return reconciliation.RecordRequest{
		Kind:          reconciliation.KindDebit,
		Amount:        decimal.RequireFromString(amount),
		PartyName:     "Alice",
		ReferenceID:   "payroll-1",
		TransactionID: "tx-1",
		Notes:         "Salary payment for 2025-01",
	}
}

func TestRecordIsPendingAndRounded(t *testing.T) {
	svc, ctx := setup(t, &fakeJournal{}, 3)

	rec, err := svc.Record(ctx, debit("154.666"))
	require.NoError(t, err)

	assert.Equal(t, "company-1", rec.CompanyID)
	assert.Equal(t, reconciliation.StatusPending, rec.Status)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("154.67")))
	assert.NotEmpty(t, rec.ID)
}

func TestRelayDeliversPendingRecords(t *testing.T) {
	journal := &fakeJournal{}
	svc, ctx := setup(t, journal, 3)

	_, err := svc.Record(ctx, debit("154.66"))
	require.NoError(t, err)

	result, err := svc.Relay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Delivered)
	assert.Len(t, journal.posted, 1)

	records, err := svc.ListRecords(ctx, reconciliation.ListFilter{ReferenceID: "payroll-1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, reconciliation.StatusDelivered, records[0].Status)
	assert.NotNil(t, records[0].DeliveredAt)

	// nothing left to deliver
	result, err = svc.Relay(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Delivered)
}

func TestRelayMarksFailedAfterMaxAttempts(t *testing.T) {
	journal := &fakeJournal{err: errors.New("journal down")}
	svc, ctx := setup(t, journal, 2)

	_, err := svc.Record(ctx, debit("100"))
	require.NoError(t, err)

	result, err := svc.Relay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	records, _ := svc.ListRecords(ctx, reconciliation.ListFilter{})
	require.Len(t, records, 1)
	assert.Equal(t, reconciliation.StatusPending, records[0].Status)
	assert.Equal(t, 1, records[0].Attempts)

	_, err = svc.Relay(context.Background())
	require.NoError(t, err)

	records, _ = svc.ListRecords(ctx, reconciliation.ListFilter{})
	assert.Equal(t, reconciliation.StatusFailed, records[0].Status)
	require.NotNil(t, records[0].LastError)
	assert.Equal(t, "journal down", *records[0].LastError)

	// failed records are no longer retried
	result, err = svc.Relay(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Failed)
}

func TestRelayCompanyLeavesOtherCompaniesPending(t *testing.T) {
	journal := &fakeJournal{}
	svc, ctx := setup(t, journal, 3)

	otherCtx, err := jwt.NewContext(context.Background(), "user-2", "company-2")
	require.NoError(t, err)

	_, err = svc.Record(ctx, debit("100"))
	require.NoError(t, err)
	_, err = svc.Record(otherCtx, debit("200"))
	require.NoError(t, err)

	result, err := svc.RelayCompany(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Delivered)
	require.Len(t, journal.posted, 1)
	assert.Equal(t, "company-1", journal.posted[0].CompanyID)

	others, err := svc.ListRecords(otherCtx, reconciliation.ListFilter{})
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, reconciliation.StatusPending, others[0].Status)

	_, err = svc.RelayCompany(context.Background())
	assert.Error(t, err)
}

func TestRecordRequiresClaims(t *testing.T) {
	svc, _ := setup(t, &fakeJournal{}, 3)
	_, err := svc.Record(context.Background(), debit("1"))
	assert.Error(t, err)
}

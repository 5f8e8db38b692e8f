package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTransactionRollsBackOnError(t *testing.T) {
	store := NewStore()
	repo := NewAdvanceRepository(store)
	ctx := context.Background()

	_, err := repo.Create(ctx, advance.Advance{ID: "adv-1", CompanyID: "c1", EmployeeID: "e1", Amount: decimal.NewFromInt(300), RemainingAmount: decimal.NewFromInt(300), Status: advance.StatusActive})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.Claim(ctx, "c1", "2025-01", []string{"adv-1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetByID(ctx, "adv-1", "c1")
	require.NoError(t, err)
	assert.Nil(t, got.LinkedPayrollMonth)
}

func TestWithinTransactionNests(t *testing.T) {
	store := NewStore()
	repo := NewPayrollRepository(store)
	ctx := context.Background()

	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		return store.WithinTransaction(ctx, func(ctx context.Context) error {
			return repo.CreateRun(ctx, payroll.Run{CompanyID: "c1", Month: "2025-01", ProcessedAt: time.Now()})
		})
	})
	require.NoError(t, err)

	runs, err := repo.ListRuns(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestCreateRunRejectsDuplicateMonth(t *testing.T) {
	repo := NewPayrollRepository(NewStore())
	ctx := context.Background()

	require.NoError(t, repo.CreateRun(ctx, payroll.Run{CompanyID: "c1", Month: "2025-01"}))
	assert.ErrorIs(t, repo.CreateRun(ctx, payroll.Run{CompanyID: "c1", Month: "2025-01"}), payroll.ErrMonthAlreadyProcessed)
	assert.NoError(t, repo.CreateRun(ctx, payroll.Run{CompanyID: "c2", Month: "2025-01"}))
}

func TestClaimIsAllOrNothing(t *testing.T) {
	repo := NewAdvanceRepository(NewStore())
	ctx := context.Background()
	claimed := "2024-12"

	_, _ = repo.Create(ctx, advance.Advance{ID: "a1", CompanyID: "c1", Status: advance.StatusActive})
	_, _ = repo.Create(ctx, advance.Advance{ID: "a2", CompanyID: "c1", Status: advance.StatusActive, LinkedPayrollMonth: &claimed})

	err := repo.Claim(ctx, "c1", "2025-01", []string{"a1", "a2"})
	assert.ErrorIs(t, err, advance.ErrAdvanceAlreadyClaimed)

	a1, _ := repo.GetByID(ctx, "a1", "c1")
	assert.Nil(t, a1.LinkedPayrollMonth)
}

func TestPaidEntryCannotBeDeleted(t *testing.T) {
	repo := NewPayrollRepository(NewStore())
	ctx := context.Background()

	_, err := repo.CreateEntry(ctx, payroll.Entry{ID: "p1", CompanyID: "c1", EmployeeID: "e1", Month: "2025-01"})
	require.NoError(t, err)
	require.NoError(t, repo.MarkPaid(ctx, "c1", "p1", time.Now(), "tx-1"))

	assert.ErrorIs(t, repo.DeleteEntry(ctx, "c1", "p1"), payroll.ErrCannotDeletePaidEntry)
	assert.ErrorIs(t, repo.MarkPaid(ctx, "c1", "p1", time.Now(), "tx-2"), payroll.ErrPayrollEntryAlreadyPaid)

	n, err := repo.DeleteUnpaidEntriesByMonth(ctx, "c1", "2025-01")
	require.NoError(t, err)
	assert.Zero(t, n)
}

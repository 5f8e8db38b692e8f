package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsImmediatelyAndStops(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.AddJob(Job{Name: "count", Interval: time.Hour, Fn: func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestSchedulerRunOnceContinuesAfterFailure(t *testing.T) {
	var order []string
	s := NewScheduler()
	s.AddJob(Job{Name: "fails", Interval: time.Minute, Fn: func(ctx context.Context) error {
		order = append(order, "fails")
		return errors.New("boom")
	}})
	s.AddJob(Job{Name: "ok", Interval: time.Minute, Fn: func(ctx context.Context) error {
		order = append(order, "ok")
		return nil
	}})

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"fails", "ok"}, order)
}

func TestSchedulerAppliesTimeout(t *testing.T) {
	s := NewScheduler()
	done := make(chan error, 1)
	s.AddJob(Job{Name: "slow", Interval: time.Minute, Timeout: 10 * time.Millisecond, Fn: func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	}})

	s.RunOnce(context.Background())
	assert.ErrorIs(t, <-done, context.DeadlineExceeded)
}

type stubReconciliation struct {
	reconciliation.Service
	calls  atomic.Int32
	result reconciliation.RelayResult
	err    error
}

func (s *stubReconciliation) Relay(ctx context.Context) (reconciliation.RelayResult, error) {
	s.calls.Add(1)
	return s.result, s.err
}

func TestReconciliationJobsRelayPending(t *testing.T) {
	stub := &stubReconciliation{result: reconciliation.RelayResult{Delivered: 2}}
	jobs := NewReconciliationJobs(stub, 0)
	assert.Equal(t, 30*time.Second, jobs.interval)

	require.NoError(t, jobs.RelayPending(context.Background()))
	assert.Equal(t, int32(1), stub.calls.Load())

	stub.err = errors.New("db down")
	assert.EqualError(t, jobs.RelayPending(context.Background()), "db down")
}

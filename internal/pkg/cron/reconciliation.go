package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
)

const RelayJobName = "reconciliation_relay"

type ReconciliationJobs struct {
	reconciliationService reconciliation.Service
	interval              time.Duration
}

func NewReconciliationJobs(reconciliationService reconciliation.Service, interval time.Duration) *ReconciliationJobs {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ReconciliationJobs{
		reconciliationService: reconciliationService,
		interval:              interval,
	}
}

func (j *ReconciliationJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{Name: RelayJobName, Interval: j.interval, Fn: j.RelayPending})
}

// RelayPending pushes queued payment records to the journal
func (j *ReconciliationJobs) RelayPending(ctx context.Context) error {
	result, err := j.reconciliationService.Relay(ctx)
	if err != nil {
		return err
	}
	if result.Delivered > 0 || result.Failed > 0 {
		slog.Info("reconciliation relay finished", "delivered", result.Delivered, "failed", result.Failed)
	}
	return nil
}

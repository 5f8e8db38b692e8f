package reconciliation

import (
	"context"
	"time"
)

type RecordRepository interface {
	Create(ctx context.Context, record Record) (Record, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]Record, error)

	// Outbox side. An empty companyID lists pending records of every company.
	ListPending(ctx context.Context, companyID string, limit int) ([]Record, error)
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) error
	// MarkFailed bumps the attempt counter; the record leaves the pending
	// queue once attempts reach maxAttempts.
	MarkFailed(ctx context.Context, id string, reason string, maxAttempts int) error
}

package reconciliation

import "context"

// Journal is the external bookkeeping ledger records are delivered to
type Journal interface {
	Post(ctx context.Context, record Record) error
}

type Service interface {
	// Record enqueues a record inside the caller's transaction
	Record(ctx context.Context, req RecordRequest) (Record, error)

	// Relay delivers pending records to the journal. Delivery failures are
	// counted on the record, never returned.
	Relay(ctx context.Context) (RelayResult, error)

	// RelayCompany delivers only the caller's company records
	RelayCompany(ctx context.Context) (RelayResult, error)

	ListRecords(ctx context.Context, filter ListFilter) ([]RecordResponse, error)
}

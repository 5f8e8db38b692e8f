package activity

import "context"

// Service is a fire-and-forget audit sink
type Service interface {
	// Log returns immediately; persistence failures are only logged
	Log(ctx context.Context, req LogRequest)
	List(ctx context.Context, filter ListFilter) ([]LogResponse, error)
	// Close waits for pending writes
	Close()
}

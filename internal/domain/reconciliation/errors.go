package reconciliation

import "errors"

var (
	ErrRecordNotFound  = errors.New("reconciliation record not found")
	ErrJournalRejected = errors.New("journal rejected the record")
)

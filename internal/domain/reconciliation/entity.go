package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindDebit  Kind = "debit"
	KindCredit Kind = "credit"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Record is the cash-flow consequence of a payroll payment or its reversal.
// It is written in the same transaction as the payroll change and delivered
// to the external journal later.
type Record struct {
	ID                    string
	CompanyID             string
	Kind                  Kind
	Amount                decimal.Decimal
	PartyName             string
	ReferenceID           string
	TransactionID         string
	ReversedTransactionID *string
	Notes                 string
	Status                Status
	Attempts              int
	LastError             *string
	CreatedAt             time.Time
	DeliveredAt           *time.Time
}

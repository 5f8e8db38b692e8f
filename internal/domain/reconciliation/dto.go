package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecordRequest struct {
	Kind                  Kind
	Amount                decimal.Decimal
	PartyName             string
	ReferenceID           string
	TransactionID         string
	ReversedTransactionID *string
	Notes                 string
}

type ListFilter struct {
	ReferenceID string
	Status      Status
}

type RelayResult struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

type RecordResponse struct {
	ID                    string          `json:"id"`
	Kind                  Kind            `json:"kind"`
	Amount                decimal.Decimal `json:"amount"`
	PartyName             string          `json:"party_name"`
	ReferenceID           string          `json:"reference_id"`
	TransactionID         string          `json:"transaction_id"`
	ReversedTransactionID *string         `json:"reversed_transaction_id,omitempty"`
	Notes                 string          `json:"notes"`
	Status                Status          `json:"status"`
	Attempts              int             `json:"attempts"`
	LastError             *string         `json:"last_error,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	DeliveredAt           *time.Time      `json:"delivered_at,omitempty"`
}

func ToResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:                    r.ID,
		Kind:                  r.Kind,
		Amount:                r.Amount,
		PartyName:             r.PartyName,
		ReferenceID:           r.ReferenceID,
		TransactionID:         r.TransactionID,
		ReversedTransactionID: r.ReversedTransactionID,
		Notes:                 r.Notes,
		Status:                r.Status,
		Attempts:              r.Attempts,
		LastError:             r.LastError,
		CreatedAt:             r.CreatedAt,
		DeliveredAt:           r.DeliveredAt,
	}
}

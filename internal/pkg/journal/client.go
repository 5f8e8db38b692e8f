package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
	"github.com/shopspring/decimal"
)

// Client posts reconciliation records to an external bookkeeping journal
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL string, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// APIError represents a non-2xx journal response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("journal API error [%d]: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return reconciliation.ErrJournalRejected
}

type entryPayload struct {
	ExternalID            string          `json:"external_id"`
	CompanyID             string          `json:"company_id"`
	Kind                  string          `json:"kind"`
	Amount                decimal.Decimal `json:"amount"`
	PartyName             string          `json:"party_name"`
	ReferenceID           string          `json:"reference_id"`
	TransactionID         string          `json:"transaction_id"`
	ReversedTransactionID *string         `json:"reversed_transaction_id,omitempty"`
	Notes                 string          `json:"notes"`
	RecordedAt            time.Time       `json:"recorded_at"`
}

// Post sends one record. The record ID doubles as the idempotency key so a
// retried delivery is not booked twice.
func (c *Client) Post(ctx context.Context, record reconciliation.Record) error {
	body, err := json.Marshal(entryPayload{
		ExternalID:            record.ID,
		CompanyID:             record.CompanyID,
		Kind:                  string(record.Kind),
		Amount:                record.Amount,
		PartyName:             record.PartyName,
		ReferenceID:           record.ReferenceID,
		TransactionID:         record.TransactionID,
		ReversedTransactionID: record.ReversedTransactionID,
		Notes:                 record.Notes,
		RecordedAt:            record.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/entries", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build journal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", record.ID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach journal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(msg))}
	}

	return nil
}

// LogJournal writes records to the application log. Used when no journal URL is configured.
type LogJournal struct {
	logger *slog.Logger
}

func NewLogJournal(logger *slog.Logger) *LogJournal {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogJournal{logger: logger}
}

func (j *LogJournal) Post(ctx context.Context, record reconciliation.Record) error {
	j.logger.InfoContext(ctx, "journal entry",
		"record_id", record.ID,
		"company_id", record.CompanyID,
		"kind", record.Kind,
		"amount", record.Amount.StringFixed(2),
		"party_name", record.PartyName,
		"reference_id", record.ReferenceID,
		"transaction_id", record.TransactionID,
		"notes", record.Notes,
	)
	return nil
}

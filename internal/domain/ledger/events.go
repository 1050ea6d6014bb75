package ledger

import (
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// TopicEntryAppended is the event stream for new ledger entries.
const TopicEntryAppended = "ledger.entry.appended"

// EntryAppended is published after a transaction that appended entries
// commits. Consumers (reporting, notifications) must treat delivery as
// best-effort; the database is the source of truth.
type EntryAppended struct {
	EntryID          id.ID           `json:"entryId"`
	CustomerID       id.ID           `json:"customerId"`
	InvoiceID        *id.ID          `json:"invoiceId,omitempty"`
	CreditAmount     types.Money     `json:"creditAmount"`
	DebitAmount      types.Money     `json:"debitAmount"`
	RemainingBalance types.Money     `json:"remainingBalance"`
	TransactionType  TransactionType `json:"transactionType"`
	ReferenceNumber  string          `json:"referenceNumber"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// NewEntryAppended builds the event for a stored entry.
func NewEntryAppended(e *Entry) EntryAppended {
	return EntryAppended{
		EntryID:          e.ID,
		CustomerID:       e.CustomerID,
		InvoiceID:        e.InvoiceID,
		CreditAmount:     e.CreditAmount,
		DebitAmount:      e.DebitAmount,
		RemainingBalance: e.RemainingBalance,
		TransactionType:  e.TransactionType,
		ReferenceNumber:  e.ReferenceNumber,
		CreatedAt:        e.CreatedAt,
	}
}

// EventPublisher delivers domain events to an external broker.
type EventPublisher interface {
	Publish(topic string, event any) error
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(string, any) error { return nil }

func newInvoiceDesync(invoiceID id.ID) error {
	return apperror.NewLedgerDesync("invoice", invoiceID.String())
}

func newPaymentDesync(reference string) error {
	return apperror.NewLedgerDesync("payment", reference)
}

package ledger

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/pkg/logger"
)

// Service is the ledger entry store and balance resolver.
//
// All mutating methods assume the caller (a transaction coordinator) has
// already opened a database transaction and taken a row lock on the customer,
// so that read-balance / compute / insert cannot interleave with a concurrent
// writer for the same customer.
type Service struct {
	repo Repository
}

// NewService creates a new ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CurrentBalance returns the remaining_balance snapshot of the customer's
// latest entry, or zero when no entries exist.
func (s *Service) CurrentBalance(ctx context.Context, customerID id.ID) (types.Money, error) {
	latest, err := s.repo.Latest(ctx, customerID)
	if err != nil {
		return types.Zero(), fmt.Errorf("resolve balance: %w", err)
	}
	if latest == nil {
		return types.Zero(), nil
	}
	return latest.RemainingBalance, nil
}

// Append resolves the prior balance, computes the new snapshot and inserts
// one entry. Returns the stored entry with its RemainingBalance set.
func (s *Service) Append(ctx context.Context, p AppendParams) (*Entry, error) {
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	balance, err := s.CurrentBalance(ctx, p.CustomerID)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:               id.New(),
		CustomerID:       p.CustomerID,
		InvoiceID:        p.InvoiceID,
		CreditAmount:     p.CreditAmount,
		DebitAmount:      p.DebitAmount,
		Description:      p.Description,
		PaymentMethod:    p.PaymentMethod,
		ReferenceNumber:  p.ReferenceNumber,
		RemainingBalance: balance.Add(p.CreditAmount).Sub(p.DebitAmount),
		TransactionType:  p.TransactionType,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("append entry: %w", err)
	}

	logger.Debug(ctx, "ledger entry appended",
		"customer_id", entry.CustomerID,
		"credit", entry.CreditAmount,
		"debit", entry.DebitAmount,
		"balance", entry.RemainingBalance,
	)

	return entry, nil
}

// AppendInvoice records an invoice's effect: credit = grand total.
func (s *Service) AppendInvoice(ctx context.Context, customerID, invoiceID id.ID, grandTotal types.Money, reference string) (*Entry, error) {
	return s.Append(ctx, AppendParams{
		CustomerID:      customerID,
		InvoiceID:       &invoiceID,
		CreditAmount:    grandTotal,
		DebitAmount:     types.Zero(),
		Description:     fmt.Sprintf("Invoice created - %s", reference),
		PaymentMethod:   "invoice",
		ReferenceNumber: reference,
		TransactionType: TypeInvoice,
	})
}

// AppendPayment records a cleared payment's effect: debit = amount.
func (s *Service) AppendPayment(ctx context.Context, customerID id.ID, amount types.Money, method, reference, description string) (*Entry, error) {
	if description == "" {
		description = fmt.Sprintf("Payment received via %s", method)
	}
	return s.Append(ctx, AppendParams{
		CustomerID:      customerID,
		CreditAmount:    types.Zero(),
		DebitAmount:     amount,
		Description:     description,
		PaymentMethod:   method,
		ReferenceNumber: reference,
		TransactionType: TypePayment,
	})
}

// ReviseForInvoice compensates for an invoice whose grand total changed.
//
// The log stays append-only: instead of rewriting the original entry (which
// would invalidate every later snapshot) a single adjustment entry carrying
// the delta is appended. No-op when the total did not change.
func (s *Service) ReviseForInvoice(ctx context.Context, customerID, invoiceID id.ID, reference string, oldTotal, newTotal types.Money) (*Entry, error) {
	if oldTotal.Equal(newTotal) {
		return nil, nil
	}

	if err := s.requireInvoiceTrace(ctx, invoiceID); err != nil {
		return nil, err
	}

	delta := newTotal.Sub(oldTotal)
	p := AppendParams{
		CustomerID:      customerID,
		InvoiceID:       &invoiceID,
		Description:     fmt.Sprintf("Invoice updated - %s", reference),
		PaymentMethod:   "invoice",
		ReferenceNumber: reference,
		TransactionType: TypeInvoice,
	}
	if delta.IsPositive() {
		p.CreditAmount = delta
		p.DebitAmount = types.Zero()
	} else {
		p.CreditAmount = types.Zero()
		p.DebitAmount = delta.Neg()
	}

	return s.Append(ctx, p)
}

// ReverseForInvoice compensates for a deleted invoice by appending a debit
// entry matching its outstanding credit. The history, including the original
// entry, is preserved as an audit trail.
func (s *Service) ReverseForInvoice(ctx context.Context, customerID, invoiceID id.ID, reference string, grandTotal types.Money) (*Entry, error) {
	if err := s.requireInvoiceTrace(ctx, invoiceID); err != nil {
		return nil, err
	}

	return s.Append(ctx, AppendParams{
		CustomerID:      customerID,
		InvoiceID:       &invoiceID,
		CreditAmount:    types.Zero(),
		DebitAmount:     grandTotal,
		Description:     fmt.Sprintf("Invoice deleted - %s", reference),
		PaymentMethod:   "invoice",
		ReferenceNumber: reference,
		TransactionType: TypeInvoice,
	})
}

// HasPaymentTrace reports whether any entry carries the payment's reference.
// Coordinators use it to decide if a deleted payment needs a reversal: a
// payment un-cleared before deletion still has its debit in the log.
func (s *Service) HasPaymentTrace(ctx context.Context, reference string) (bool, error) {
	found, err := s.repo.HasEntryForReference(ctx, reference)
	if err != nil {
		return false, fmt.Errorf("check payment trace: %w", err)
	}
	return found, nil
}

// ReverseForPayment compensates for a deleted payment by appending a
// credit entry that restores the balance.
func (s *Service) ReverseForPayment(ctx context.Context, customerID id.ID, reference string, amount types.Money, method string) (*Entry, error) {
	found, err := s.repo.HasEntryForReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("check payment trace: %w", err)
	}
	if !found {
		return nil, newPaymentDesync(reference)
	}

	return s.Append(ctx, AppendParams{
		CustomerID:      customerID,
		CreditAmount:    amount,
		DebitAmount:     types.Zero(),
		Description:     fmt.Sprintf("Payment deleted - %s", reference),
		PaymentMethod:   method,
		ReferenceNumber: reference,
		TransactionType: TypePayment,
	})
}

// CustomerLedger returns the customer's entries most-recent-first with totals.
// The summary's current balance is the latest entry's snapshot; totals are
// aggregated over the (optionally date-filtered) page.
func (s *Service) CustomerLedger(ctx context.Context, customerID id.ID, dateRange types.DateRange) (*View, error) {
	entries, err := s.repo.ListForCustomer(ctx, customerID, dateRange)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	view := &View{
		CustomerID: customerID,
		Entries:    entries,
		Summary: Summary{
			TotalCredit:    types.Zero(),
			TotalDebit:     types.Zero(),
			CurrentBalance: types.Zero(),
		},
	}

	for _, e := range entries {
		view.Summary.TotalCredit = view.Summary.TotalCredit.Add(e.CreditAmount)
		view.Summary.TotalDebit = view.Summary.TotalDebit.Add(e.DebitAmount)
	}
	if len(entries) > 0 {
		// Entries are most-recent-first; the head carries the balance.
		view.Summary.CurrentBalance = entries[0].RemainingBalance
	}

	return view, nil
}

// CustomersSummary returns every customer with their current balance.
func (s *Service) CustomersSummary(ctx context.Context) ([]CustomerBalance, error) {
	return s.repo.CustomersSummary(ctx)
}

// Statistics returns the shop-wide ledger overview.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx)
}

// TopCustomers returns the customers with the largest outstanding balances.
func (s *Service) TopCustomers(ctx context.Context, limit int) ([]CustomerBalance, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.TopCustomers(ctx, limit)
}

func (s *Service) requireInvoiceTrace(ctx context.Context, invoiceID id.ID) error {
	found, err := s.repo.HasEntriesForInvoice(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("check invoice trace: %w", err)
	}
	if !found {
		return newInvoiceDesync(invoiceID)
	}
	return nil
}

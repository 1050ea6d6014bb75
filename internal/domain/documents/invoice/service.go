package invoice

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/appctx"
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/lock"
	"shopledger/internal/core/tx"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/catalogs/customer"
	"shopledger/internal/domain/ledger"
	"shopledger/pkg/logger"
	"shopledger/pkg/refnum"
)

// Service is the invoice transaction coordinator. Document, lines and the
// customer ledger entry commit or roll back together; partial state is
// never visible.
type Service struct {
	repo      Repository
	customers customer.Repository
	ledger    *ledger.Service
	refnum    *refnum.Service
	txManager tx.Manager
	audit     audit.Logger
	locks     *lock.Keyed
	publisher ledger.EventPublisher
}

// NewService creates a new invoice coordinator.
func NewService(
	repo Repository,
	customers customer.Repository,
	ledgerSvc *ledger.Service,
	refnumSvc *refnum.Service,
	txManager tx.Manager,
	auditLog audit.Logger,
	locks *lock.Keyed,
	publisher ledger.EventPublisher,
) *Service {
	if publisher == nil {
		publisher = ledger.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		customers: customers,
		ledger:    ledgerSvc,
		refnum:    refnumSvc,
		txManager: txManager,
		audit:     auditLog,
		locks:     locks,
		publisher: publisher,
	}
}

// Create stores the invoice with its lines and, when a customer is attached,
// appends the matching ledger credit entry. Everything happens in one
// transaction under the customer's lock.
func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	inv.CalculateTotals()
	if err := inv.Validate(ctx); err != nil {
		return err
	}

	if user := appctx.GetUser(ctx); user != nil {
		if id.IsNil(inv.ShopID) {
			inv.ShopID = user.ShopID
		}
		if id.IsNil(inv.BranchID) {
			inv.BranchID = user.BranchID
		}
	}

	inv.ID = id.New()
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	var appended *ledger.Entry
	err := s.withCustomerLock(inv.CustomerID, func() error {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if inv.CustomerID != nil {
				cust, err := s.customers.GetForUpdate(ctx, *inv.CustomerID)
				if err != nil {
					return err
				}
				if cust.DeletionMark {
					return apperror.NewBusinessRule("customer is marked for deletion").
						WithDetail("customerId", cust.ID)
				}
			}

			if inv.Reference == "" {
				ref, err := s.refnum.Next(ctx, refnum.DefaultConfig("A"))
				if err != nil {
					return fmt.Errorf("generate reference: %w", err)
				}
				inv.Reference = ref
			}

			if err := s.repo.Create(ctx, inv); err != nil {
				return fmt.Errorf("create invoice: %w", err)
			}
			if err := s.repo.SaveItems(ctx, inv.ID, inv.Items); err != nil {
				return fmt.Errorf("save items: %w", err)
			}

			if inv.CustomerID != nil {
				entry, err := s.ledger.AppendInvoice(ctx, *inv.CustomerID, inv.ID, inv.GrandTotal, inv.Reference)
				if err != nil {
					return err
				}
				appended = entry
			}

			return s.audit.LogChange(ctx, "invoice", inv.ID, audit.ActionCreate, map[string]any{
				"reference":  inv.Reference,
				"grandTotal": inv.GrandTotal,
				"customerId": inv.CustomerID,
			})
		})
	})
	if err != nil {
		return err
	}

	s.publishEntry(ctx, appended)
	logger.Info(ctx, "invoice created", "invoice_id", inv.ID, "reference", inv.Reference)
	return nil
}

// Update replaces the invoice's attributes and lines. When the grand total
// changes for a ledger customer, a compensating adjustment entry is appended
// so history and every stored balance snapshot stay valid.
func (s *Service) Update(ctx context.Context, inv *Invoice) error {
	inv.CalculateTotals()
	if err := inv.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.Get(ctx, inv.ID)
	if err != nil {
		return err
	}
	// The customer binding is immutable: reassigning it, or attaching one to
	// a walk-in sale, would need ledger history the invoice never produced.
	// An omitted customer keeps the existing binding.
	if inv.CustomerID != nil && (existing.CustomerID == nil || *inv.CustomerID != *existing.CustomerID) {
		return apperror.NewBusinessRule("invoice customer cannot be changed").
			WithDetail("invoiceId", inv.ID)
	}

	var appended *ledger.Entry
	err = s.withCustomerLock(existing.CustomerID, func() error {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if existing.CustomerID != nil {
				if _, err := s.customers.GetForUpdate(ctx, *existing.CustomerID); err != nil {
					return err
				}
			}

			inv.ShopID = existing.ShopID
			inv.BranchID = existing.BranchID
			inv.Reference = existing.Reference
			inv.CustomerID = existing.CustomerID
			inv.CreatedAt = existing.CreatedAt
			inv.UpdatedAt = time.Now().UTC()

			if err := s.repo.Update(ctx, inv); err != nil {
				return fmt.Errorf("update invoice: %w", err)
			}
			if err := s.repo.SaveItems(ctx, inv.ID, inv.Items); err != nil {
				return fmt.Errorf("save items: %w", err)
			}

			if existing.CustomerID != nil {
				entry, err := s.ledger.ReviseForInvoice(ctx,
					*existing.CustomerID, inv.ID, inv.Reference,
					existing.GrandTotal, inv.GrandTotal)
				if err != nil {
					return err
				}
				appended = entry
			}

			return s.audit.LogChange(ctx, "invoice", inv.ID, audit.ActionUpdate, map[string]any{
				"reference":     inv.Reference,
				"oldGrandTotal": existing.GrandTotal,
				"newGrandTotal": inv.GrandTotal,
			})
		})
	})
	if err != nil {
		return err
	}

	s.publishEntry(ctx, appended)
	return nil
}

// NextReference previews the reference the next created invoice would get.
// Advisory only; the number is allocated for real inside Create's transaction.
func (s *Service) NextReference(ctx context.Context) (string, error) {
	return s.refnum.Peek(ctx, refnum.DefaultConfig("A"))
}

// Get retrieves an invoice with its lines.
func (s *Service) Get(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	inv.Items = items
	return inv, nil
}

// List retrieves invoices matching the filter with a total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Invoice, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// Delete removes the invoice and its lines. For ledger customers a reversal
// debit entry is appended first; the original entry stays in history with its
// invoice reference detached by the schema.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID) error {
	existing, err := s.repo.Get(ctx, invoiceID)
	if err != nil {
		return err
	}

	var appended *ledger.Entry
	err = s.withCustomerLock(existing.CustomerID, func() error {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if existing.CustomerID != nil {
				if _, err := s.customers.GetForUpdate(ctx, *existing.CustomerID); err != nil {
					return err
				}

				entry, err := s.ledger.ReverseForInvoice(ctx,
					*existing.CustomerID, existing.ID, existing.Reference, existing.GrandTotal)
				if err != nil {
					return err
				}
				appended = entry
			}

			if err := s.repo.DeleteItems(ctx, invoiceID); err != nil {
				return fmt.Errorf("delete items: %w", err)
			}
			if err := s.repo.Delete(ctx, invoiceID); err != nil {
				return fmt.Errorf("delete invoice: %w", err)
			}

			return s.audit.LogChange(ctx, "invoice", invoiceID, audit.ActionDelete, map[string]any{
				"reference":  existing.Reference,
				"grandTotal": existing.GrandTotal,
			})
		})
	})
	if err != nil {
		return err
	}

	s.publishEntry(ctx, appended)
	logger.Info(ctx, "invoice deleted", "invoice_id", invoiceID, "reference", existing.Reference)
	return nil
}

func (s *Service) withCustomerLock(customerID *id.ID, fn func() error) error {
	if customerID == nil || s.locks == nil {
		return fn()
	}
	return s.locks.WithLock("customer:"+customerID.String(), fn)
}

// publishEntry emits the appended-entry event after commit. Delivery is
// best-effort; failures are logged and never fail the request.
func (s *Service) publishEntry(ctx context.Context, entry *ledger.Entry) {
	if entry == nil {
		return
	}
	if err := s.publisher.Publish(ledger.TopicEntryAppended, ledger.NewEntryAppended(entry)); err != nil {
		logger.Warn(ctx, "publish ledger event failed", "entry_id", entry.ID, "error", err)
	}
}

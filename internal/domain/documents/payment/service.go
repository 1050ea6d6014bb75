package payment

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
	"shopledger/internal/domain/catalogs/bank"
	"shopledger/internal/domain/catalogs/customer"
	"shopledger/internal/domain/ledger"
	"shopledger/pkg/logger"
)

// Service is the payment transaction coordinator. It owns the cheque clearing
// state machine and applies ledger and bank effects transactionally.
//
// Effect rules:
//   - only cleared payments have effects
//   - ledger debit requires a customer; bank cash_in requires a bank account
//   - pending -> cleared applies both effects at clearing time
//   - cleared -> pending / cancelled reverses the bank effect only; the
//     ledger keeps its entry until the payment is deleted
//   - cancelled -> cleared reapplies the bank effect
type Service struct {
	repo      Repository
	customers customer.Repository
	banks     *bank.Service
	ledger    *ledger.Service
	txManager tx.Manager
	audit     audit.Logger
	locks     *lock.Keyed
	publisher ledger.EventPublisher
}

// NewService creates a new payment coordinator.
func NewService(
	repo Repository,
	customers customer.Repository,
	banks *bank.Service,
	ledgerSvc *ledger.Service,
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
		banks:     banks,
		ledger:    ledgerSvc,
		txManager: txManager,
		audit:     auditLog,
		locks:     locks,
		publisher: publisher,
	}
}

// Create stores the payment and, unless it is a pending cheque, applies its
// ledger and bank effects in the same transaction.
func (s *Service) Create(ctx context.Context, p *Payment) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if user := appctx.GetUser(ctx); user != nil {
		if id.IsNil(p.ShopID) {
			p.ShopID = user.ShopID
		}
		if id.IsNil(p.BranchID) {
			p.BranchID = user.BranchID
		}
	}

	p.ID = id.New()
	p.Status = DeriveStatus(p.Method)
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	var appended *ledger.Entry
	err := s.withEffectLocks(p, func() error {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if p.CustomerID != nil {
				cust, err := s.customers.GetForUpdate(ctx, *p.CustomerID)
				if err != nil {
					return err
				}
				if cust.DeletionMark {
					return apperror.NewBusinessRule("customer is marked for deletion").
						WithDetail("customerId", cust.ID)
				}
			}

			if err := s.repo.Create(ctx, p); err != nil {
				return fmt.Errorf("create payment: %w", err)
			}

			if p.Status == StatusCleared {
				entry, err := s.applyEffects(ctx, p)
				if err != nil {
					return err
				}
				appended = entry
			}

			return s.audit.LogChange(ctx, "payment", p.ID, audit.ActionCreate, map[string]any{
				"amount":     p.Amount,
				"method":     p.Method,
				"status":     p.Status,
				"customerId": p.CustomerID,
			})
		})
	})
	if err != nil {
		return err
	}

	s.publishEntry(ctx, appended)
	logger.Info(ctx, "payment created",
		"payment_id", p.ID, "method", p.Method, "status", p.Status)
	return nil
}

// UpdateStatus moves the payment through the clearing state machine.
func (s *Service) UpdateStatus(ctx context.Context, paymentID id.ID, target Status) error {
	switch target {
	case StatusPending, StatusCleared, StatusCancelled:
	default:
		return apperror.NewValidation("unknown payment status").
			WithDetail("field", "status").
			WithDetail("value", string(target))
	}

	existing, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		return err
	}
	if existing.Status == target {
		return nil
	}

	var appended *ledger.Entry
	err = s.withEffectLocks(existing, func() error {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			p, err := s.repo.GetForUpdate(ctx, paymentID)
			if err != nil {
				return err
			}
			if p.Status == target {
				return nil
			}
			if p.CustomerID != nil {
				if _, err := s.customers.GetForUpdate(ctx, *p.CustomerID); err != nil {
					return err
				}
			}

			switch {
			case p.Status == StatusPending && target == StatusCleared:
				// Clearing applies both effects now: the ledger entry is
				// dated and balanced at clearing time, not receipt time.
				entry, err := s.applyEffects(ctx, p)
				if err != nil {
					return err
				}
				appended = entry

			case p.Status == StatusPending && target == StatusCancelled:
				// A bounced cheque had no effects to reverse.

			case p.Status == StatusCleared && (target == StatusPending || target == StatusCancelled):
				// Un-clearing reverses the cash, not the ledger entry. The
				// ledger reversal happens only on delete, keeping the debit
				// visible while the dispute is open.
				if err := s.reverseBankEffect(ctx, p); err != nil {
					return err
				}

			case p.Status == StatusCancelled && target == StatusCleared:
				if err := s.applyBankEffect(ctx, p); err != nil {
					return err
				}

			case p.Status == StatusCancelled && target == StatusPending:
				// Reopening a cancelled cheque has no effects.

			default:
				return apperror.NewInvalidStatusChange(string(p.Status), string(target))
			}

			if err := s.repo.UpdateStatus(ctx, paymentID, target); err != nil {
				return fmt.Errorf("update status: %w", err)
			}

			return s.audit.LogChange(ctx, "payment", paymentID, audit.ActionStatusChange, map[string]any{
				"from": p.Status,
				"to":   target,
			})
		})
	})
	if err != nil {
		return err
	}

	s.publishEntry(ctx, appended)
	logger.Info(ctx, "payment status changed",
		"payment_id", paymentID, "from", existing.Status, "to", target)
	return nil
}

// Get retrieves a payment by ID.
func (s *Service) Get(ctx context.Context, paymentID id.ID) (*Payment, error) {
	return s.repo.Get(ctx, paymentID)
}

// List retrieves payments matching the filter with a total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Payment, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// PendingCheques returns cheques awaiting clearance, oldest first.
func (s *Service) PendingCheques(ctx context.Context) ([]Payment, error) {
	return s.repo.ListPendingCheques(ctx)
}

// Delete removes the payment and reverses whatever effects it left behind:
// a compensating ledger credit whenever the log carries the payment's debit
// (it survives un-clearing, so the status alone cannot decide), and a bank
// cash_out when the payment is still cleared. All in one transaction.
func (s *Service) Delete(ctx context.Context, paymentID id.ID) error {
	existing, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		return err
	}

	var appended *ledger.Entry
	err = s.withEffectLocks(existing, func() error {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			p, err := s.repo.GetForUpdate(ctx, paymentID)
			if err != nil {
				return err
			}

			if p.CustomerID != nil {
				if _, err := s.customers.GetForUpdate(ctx, *p.CustomerID); err != nil {
					return err
				}
				traced, err := s.ledger.HasPaymentTrace(ctx, p.Reference())
				if err != nil {
					return err
				}
				if traced {
					entry, err := s.ledger.ReverseForPayment(ctx,
						*p.CustomerID, p.Reference(), p.Amount, string(p.Method))
					if err != nil {
						return err
					}
					appended = entry
				}
			}
			if p.Status == StatusCleared {
				if err := s.reverseBankEffect(ctx, p); err != nil {
					return err
				}
			}

			if err := s.repo.Delete(ctx, paymentID); err != nil {
				return fmt.Errorf("delete payment: %w", err)
			}

			return s.audit.LogChange(ctx, "payment", paymentID, audit.ActionDelete, map[string]any{
				"amount": p.Amount,
				"status": p.Status,
			})
		})
	})
	if err != nil {
		return err
	}

	s.publishEntry(ctx, appended)
	logger.Info(ctx, "payment deleted", "payment_id", paymentID)
	return nil
}

// applyEffects applies the ledger debit and the bank cash_in for a payment
// becoming cleared. Returns the appended ledger entry, if any.
func (s *Service) applyEffects(ctx context.Context, p *Payment) (*ledger.Entry, error) {
	var entry *ledger.Entry
	if p.CustomerID != nil {
		e, err := s.ledger.AppendPayment(ctx,
			*p.CustomerID, p.Amount, string(p.Method), p.Reference(), "")
		if err != nil {
			return nil, err
		}
		entry = e
	}
	if err := s.applyBankEffect(ctx, p); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) applyBankEffect(ctx context.Context, p *Payment) error {
	if p.BankAccountID == nil {
		return nil
	}
	return s.banks.ApplyEffect(ctx, bank.Effect{
		AccountID:   *p.BankAccountID,
		Direction:   bank.CashIn,
		Amount:      p.Amount,
		Description: fmt.Sprintf("Payment received via %s", p.Method),
		Reference:   p.Reference(),
	})
}

func (s *Service) reverseBankEffect(ctx context.Context, p *Payment) error {
	if p.BankAccountID == nil {
		return nil
	}
	return s.banks.ApplyEffect(ctx, bank.Effect{
		AccountID:   *p.BankAccountID,
		Direction:   bank.CashOut,
		Amount:      p.Amount,
		Description: fmt.Sprintf("Payment reversal - %s", p.Reference()),
		Reference:   p.Reference(),
	})
}

// withEffectLocks serializes on the customer and bank account the payment
// touches. Locks are taken in sorted order so coordinators that overlap on
// either key never deadlock.
func (s *Service) withEffectLocks(p *Payment, fn func() error) error {
	if s.locks == nil {
		return fn()
	}
	var keys []string
	if p.CustomerID != nil {
		keys = append(keys, "customer:"+p.CustomerID.String())
	}
	if p.BankAccountID != nil {
		keys = append(keys, "bank:"+p.BankAccountID.String())
	}
	if len(keys) == 0 {
		return fn()
	}
	return s.locks.WithLockAll(keys, fn)
}

func (s *Service) publishEntry(ctx context.Context, entry *ledger.Entry) {
	if entry == nil {
		return
	}
	if err := s.publisher.Publish(ledger.TopicEntryAppended, ledger.NewEntryAppended(entry)); err != nil {
		logger.Warn(ctx, "publish ledger event failed", "entry_id", entry.ID, "error", err)
	}
}

package vendorpayment

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/appctx"
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/catalogs/vendor"
	"shopledger/pkg/logger"
)

// Service provides business logic for vendor payments. Like purchase orders
// these are projector inputs: creating or deleting one changes the projected
// vendor ledger on the next read, with nothing else to keep in sync.
type Service struct {
	repo      Repository
	vendors   vendor.Repository
	txManager tx.Manager
	audit     audit.Logger
}

// NewService creates a new vendor payment service.
func NewService(repo Repository, vendors vendor.Repository, txManager tx.Manager, auditLog audit.Logger) *Service {
	return &Service{repo: repo, vendors: vendors, txManager: txManager, audit: auditLog}
}

// Create records a payment to a vendor.
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
	now := time.Now().UTC()
	if p.PaidAt.IsZero() {
		p.PaidAt = now
	}
	p.CreatedAt = now
	if p.Method == "" {
		p.Method = "cash"
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		vend, err := s.vendors.Get(ctx, p.VendorID)
		if err != nil {
			return err
		}
		if vend.DeletionMark {
			return apperror.NewBusinessRule("vendor is marked for deletion").
				WithDetail("vendorId", vend.ID)
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create vendor payment: %w", err)
		}

		return s.audit.LogChange(ctx, "vendor_payment", p.ID, audit.ActionCreate, map[string]any{
			"vendorId": p.VendorID,
			"amount":   p.Amount,
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "vendor payment created", "payment_id", p.ID, "vendor_id", p.VendorID)
	return nil
}

// Get retrieves a vendor payment by ID.
func (s *Service) Get(ctx context.Context, paymentID id.ID) (*Payment, error) {
	return s.repo.Get(ctx, paymentID)
}

// List retrieves vendor payments matching the filter with a total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Payment, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// Delete removes a vendor payment; the projection simply stops seeing it.
func (s *Service) Delete(ctx context.Context, paymentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Get(ctx, paymentID); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, paymentID); err != nil {
			return fmt.Errorf("delete vendor payment: %w", err)
		}
		return s.audit.LogChange(ctx, "vendor_payment", paymentID, audit.ActionDelete, nil)
	})
}

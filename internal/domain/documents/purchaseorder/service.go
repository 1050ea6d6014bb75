package purchaseorder

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
	"shopledger/pkg/refnum"
)

// Service provides business logic for purchase orders.
//
// Orders are projector inputs, not ledger writers: marking an order received
// makes it visible to the vendor ledger projection without any stored entry.
type Service struct {
	repo      Repository
	vendors   vendor.Repository
	refnum    *refnum.Service
	txManager tx.Manager
	audit     audit.Logger
}

// NewService creates a new purchase order service.
func NewService(
	repo Repository,
	vendors vendor.Repository,
	refnumSvc *refnum.Service,
	txManager tx.Manager,
	auditLog audit.Logger,
) *Service {
	return &Service{
		repo:      repo,
		vendors:   vendors,
		refnum:    refnumSvc,
		txManager: txManager,
		audit:     auditLog,
	}
}

// Create stores the order with its lines.
func (s *Service) Create(ctx context.Context, o *Order) error {
	o.CalculateTotal()
	if err := o.Validate(ctx); err != nil {
		return err
	}

	if user := appctx.GetUser(ctx); user != nil {
		if id.IsNil(o.ShopID) {
			o.ShopID = user.ShopID
		}
		if id.IsNil(o.BranchID) {
			o.BranchID = user.BranchID
		}
	}

	o.ID = id.New()
	o.Status = StatusOrdered
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		vend, err := s.vendors.Get(ctx, o.VendorID)
		if err != nil {
			return err
		}
		if vend.DeletionMark {
			return apperror.NewBusinessRule("vendor is marked for deletion").
				WithDetail("vendorId", vend.ID)
		}

		if o.Reference == "" {
			ref, err := s.refnum.Next(ctx, refnum.DefaultConfig("PO"))
			if err != nil {
				return fmt.Errorf("generate reference: %w", err)
			}
			o.Reference = ref
		}

		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.repo.SaveItems(ctx, o.ID, o.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		return s.audit.LogChange(ctx, "purchase_order", o.ID, audit.ActionCreate, map[string]any{
			"reference":   o.Reference,
			"vendorId":    o.VendorID,
			"totalAmount": o.TotalAmount,
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase order created", "order_id", o.ID, "reference", o.Reference)
	return nil
}

// Update replaces the order's attributes and lines. Received orders are
// frozen: they already feed the vendor ledger projection.
func (s *Service) Update(ctx context.Context, o *Order) error {
	o.CalculateTotal()
	if err := o.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.Get(ctx, o.ID)
		if err != nil {
			return err
		}
		if existing.Status == StatusReceived {
			return apperror.NewBusinessRule("received orders cannot be modified").
				WithDetail("orderId", o.ID)
		}

		o.ShopID = existing.ShopID
		o.BranchID = existing.BranchID
		o.Reference = existing.Reference
		o.VendorID = existing.VendorID
		o.Status = existing.Status
		o.CreatedAt = existing.CreatedAt
		o.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := s.repo.SaveItems(ctx, o.ID, o.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		return s.audit.LogChange(ctx, "purchase_order", o.ID, audit.ActionUpdate, map[string]any{
			"reference":   o.Reference,
			"totalAmount": o.TotalAmount,
		})
	})
}

// Get retrieves an order with its lines.
func (s *Service) Get(ctx context.Context, orderID id.ID) (*Order, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	o.Items = items
	return o, nil
}

// List retrieves orders matching the filter with a total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Order, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// MarkReceived records goods arrival. From this moment the order's total is
// a credit in the vendor's projected ledger, dated receivedAt.
func (s *Service) MarkReceived(ctx context.Context, orderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return err
		}
		switch existing.Status {
		case StatusOrdered:
		case StatusReceived:
			return nil
		default:
			return apperror.NewInvalidStatusChange(string(existing.Status), string(StatusReceived))
		}

		receivedAt := time.Now().UTC()
		if err := s.repo.SetStatus(ctx, orderID, StatusReceived, &receivedAt); err != nil {
			return fmt.Errorf("mark received: %w", err)
		}

		return s.audit.LogChange(ctx, "purchase_order", orderID, audit.ActionStatusChange, map[string]any{
			"from": existing.Status,
			"to":   StatusReceived,
		})
	})
}

// Cancel voids an order that has not been received.
func (s *Service) Cancel(ctx context.Context, orderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if existing.Status == StatusReceived {
			return apperror.NewInvalidStatusChange(string(existing.Status), string(StatusCancelled))
		}

		if err := s.repo.SetStatus(ctx, orderID, StatusCancelled, nil); err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}

		return s.audit.LogChange(ctx, "purchase_order", orderID, audit.ActionStatusChange, map[string]any{
			"from": existing.Status,
			"to":   StatusCancelled,
		})
	})
}

// Delete removes an order that never fed the projection.
func (s *Service) Delete(ctx context.Context, orderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if existing.Status == StatusReceived {
			return apperror.NewBusinessRule("received orders cannot be deleted").
				WithDetail("orderId", orderID)
		}

		if err := s.repo.DeleteItems(ctx, orderID); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := s.repo.Delete(ctx, orderID); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}

		return s.audit.LogChange(ctx, "purchase_order", orderID, audit.ActionDelete, map[string]any{
			"reference": existing.Reference,
		})
	})
}

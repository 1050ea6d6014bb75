package customer

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/appctx"
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/internal/domain/audit"
	"shopledger/pkg/logger"
)

// Service provides business logic for the customer catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
	audit     audit.Logger
}

// NewService creates a new customer service.
func NewService(repo Repository, txManager tx.Manager, auditLog audit.Logger) *Service {
	return &Service{repo: repo, txManager: txManager, audit: auditLog}
}

// Create registers a new customer scoped to the caller's shop and branch.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if user := appctx.GetUser(ctx); user != nil {
		if id.IsNil(c.ShopID) {
			c.ShopID = user.ShopID
		}
		if id.IsNil(c.BranchID) {
			c.BranchID = user.BranchID
		}
	}

	if err := c.Validate(ctx); err != nil {
		return err
	}

	c.ID = id.New()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, c); err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
		return s.audit.LogChange(ctx, "customer", c.ID, audit.ActionCreate, map[string]any{
			"name":  c.Name,
			"phone": c.Phone,
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "customer created", "customer_id", c.ID, "name", c.Name)
	return nil
}

// Update modifies customer attributes. Ledger history is unaffected.
func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.Get(ctx, c.ID)
		if err != nil {
			return err
		}
		if existing.DeletionMark {
			return apperror.NewBusinessRule("customer is marked for deletion").
				WithDetail("customerId", c.ID)
		}

		c.ShopID = existing.ShopID
		c.BranchID = existing.BranchID
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, c); err != nil {
			return fmt.Errorf("update customer: %w", err)
		}
		return s.audit.LogChange(ctx, "customer", c.ID, audit.ActionUpdate, map[string]any{
			"name":  c.Name,
			"phone": c.Phone,
		})
	})
}

// Get retrieves a customer by ID.
func (s *Service) Get(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.Get(ctx, customerID)
}

// List retrieves customers matching the filter with a total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Customer, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// Delete marks the customer deleted. The ledger trail is preserved as an
// audit history, so this never removes entries.
func (s *Service) Delete(ctx context.Context, customerID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Get(ctx, customerID); err != nil {
			return err
		}
		if err := s.repo.SetDeletionMark(ctx, customerID, true); err != nil {
			return fmt.Errorf("mark customer deleted: %w", err)
		}
		return s.audit.LogChange(ctx, "customer", customerID, audit.ActionDelete, nil)
	})
}

package vendorledger

import (
	"context"
	"fmt"
	"sort"

	"shopledger/internal/core/appctx"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/vendor"
)

// Service computes the vendor ledger projection.
type Service struct {
	repo      Repository
	vendors   vendor.Repository
	txManager tx.ReadOnlyManager
}

// NewService creates a new vendor ledger service.
func NewService(repo Repository, vendors vendor.Repository, txManager tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, vendors: vendors, txManager: txManager}
}

// Ledger projects the vendor's ledger: credits and debits merged in date
// order, running balance computed forward, lines returned most recent first.
//
// The merge is deterministic: lines sort by date ascending, and at equal
// dates credits come before debits so a same-instant purchase and payment
// never show a transiently negative balance.
func (s *Service) Ledger(ctx context.Context, vendorID id.ID, dateRange types.DateRange) (*View, error) {
	// Both sources are read in one read-only transaction so a purchase
	// received mid-projection cannot appear without its payments.
	var credits, debits []Line
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		if _, err := s.vendors.Get(ctx, vendorID); err != nil {
			return err
		}
		var err error
		credits, err = s.repo.PurchaseLines(ctx, vendorID, dateRange)
		if err != nil {
			return fmt.Errorf("purchase lines: %w", err)
		}
		debits, err = s.repo.PaymentLines(ctx, vendorID, dateRange)
		if err != nil {
			return fmt.Errorf("payment lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(credits)+len(debits))
	lines = append(lines, credits...)
	lines = append(lines, debits...)

	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].Date.Equal(lines[j].Date) {
			return lines[i].Date.Before(lines[j].Date)
		}
		if lines[i].Kind != lines[j].Kind {
			return lines[i].Kind == KindPurchase
		}
		// Same date and kind: source ID keeps the order reproducible.
		return lines[i].SourceID.String() < lines[j].SourceID.String()
	})

	summary := Summary{
		TotalPurchases: types.Zero(),
		TotalPaid:      types.Zero(),
		CurrentBalance: types.Zero(),
	}

	balance := types.Zero()
	for i := range lines {
		balance = balance.Add(lines[i].CreditAmount).Sub(lines[i].DebitAmount)
		lines[i].RunningBalance = balance

		summary.TotalPurchases = summary.TotalPurchases.Add(lines[i].CreditAmount)
		summary.TotalPaid = summary.TotalPaid.Add(lines[i].DebitAmount)
	}
	summary.CurrentBalance = balance

	// Display order is most recent first.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	return &View{
		VendorID: vendorID,
		Lines:    lines,
		Summary:  summary,
	}, nil
}

// Summaries returns every vendor with their projected balance.
func (s *Service) Summaries(ctx context.Context) ([]VendorBalance, error) {
	return s.repo.VendorBalances(ctx, appctx.GetShopID(ctx))
}

package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/catalogs/vendor"
	"shopledger/internal/infrastructure/storage/postgres"
)

const vendorsTable = "vendors"

var vendorColumns = []string{
	"id", "shop_id", "branch_id",
	"name", "phone", "address", "city", "contact_person",
	"deletion_mark", "created_at", "updated_at",
}

// VendorRepo implements vendor.Repository.
type VendorRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewVendorRepo creates a new vendor repository.
func NewVendorRepo(txm *postgres.TxManager) *VendorRepo {
	return &VendorRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ vendor.Repository = (*VendorRepo)(nil)

// Create inserts a new vendor.
func (r *VendorRepo) Create(ctx context.Context, v *vendor.Vendor) error {
	q := r.builder.Insert(vendorsTable).
		Columns(vendorColumns...).
		Values(
			v.ID, v.ShopID, v.BranchID,
			v.Name, v.Phone, v.Address, v.City, v.ContactPerson,
			v.DeletionMark, v.CreatedAt, v.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

// Update rewrites vendor attributes.
func (r *VendorRepo) Update(ctx context.Context, v *vendor.Vendor) error {
	q := r.builder.Update(vendorsTable).
		Set("name", v.Name).
		Set("phone", v.Phone).
		Set("address", v.Address).
		Set("city", v.City).
		Set("contact_person", v.ContactPerson).
		Set("updated_at", v.UpdatedAt).
		Where(squirrel.Eq{"id": v.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("vendor", v.ID.String())
	}
	return nil
}

// Get retrieves a vendor by ID.
func (r *VendorRepo) Get(ctx context.Context, vendorID id.ID) (*vendor.Vendor, error) {
	q := r.builder.Select(vendorColumns...).
		From(vendorsTable).
		Where(squirrel.Eq{"id": vendorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var v vendor.Vendor
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &v, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("vendor", vendorID.String())
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return &v, nil
}

// List retrieves vendors matching the filter with a total count.
func (r *VendorRepo) List(ctx context.Context, filter vendor.ListFilter) ([]vendor.Vendor, int64, error) {
	base := r.builder.Select().From(vendorsTable)

	if !filter.WithDeleted {
		base = base.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"phone": pattern},
		})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vendors: %w", err)
	}

	listSQL, listArgs, err := base.Columns(vendorColumns...).
		OrderBy("name").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var vendors []vendor.Vendor
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &vendors, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("select vendors: %w", err)
	}
	return vendors, total, nil
}

// SetDeletionMark soft-deletes or restores the vendor.
func (r *VendorRepo) SetDeletionMark(ctx context.Context, vendorID id.ID, mark bool) error {
	q := r.builder.Update(vendorsTable).
		Set("deletion_mark", mark).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": vendorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("vendor", vendorID.String())
	}
	return nil
}

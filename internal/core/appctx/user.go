// Package appctx provides request-scoped values extraction.
package appctx

import (
	"context"

	"shopledger/internal/core/id"
)

// UserContext contains authenticated user information.
// The ledger core only needs it for tenant scoping (shop/branch) and audit.
type UserContext struct {
	UserID   string
	Role     string
	ShopID   id.ID
	BranchID id.ID
	Email    string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetShopID returns shop ID from context or the nil ID.
func GetShopID(ctx context.Context) id.ID {
	if u := GetUser(ctx); u != nil {
		return u.ShopID
	}
	return id.Nil()
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	return u != nil && u.Role == role
}

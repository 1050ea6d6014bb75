// Package audit defines the audit-trail contract used by transaction
// coordinators. Every domain mutation that touches the ledger records an
// audit entry inside the same transaction, so the trail never drifts from
// the ledger itself.
package audit

import (
	"context"

	"shopledger/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionStatusChange Action = "status_change"
)

// Logger records audit entries. Implemented by the postgres audit service.
type Logger interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// Nop is a no-op Logger for tests and tooling.
type Nop struct{}

// LogChange implements Logger.
func (Nop) LogChange(context.Context, string, id.ID, Action, map[string]any) error {
	return nil
}

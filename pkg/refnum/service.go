// Package refnum provides document reference number generation.
// Numbers are sequential per prefix ("A-0001", "PO-0001") and allocated
// with a single UPSERT ... RETURNING so concurrent writers never collide
// and the sequence has no gaps.
package refnum

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g. "A" for invoices, "PO" for orders).
	Prefix string

	// PadWidth is the minimum number width (default 4).
	PadWidth int

	// ResetPeriod: "year" or "never" (default).
	ResetPeriod string
}

// DefaultConfig returns the invoice-style default: PREFIX-0001, no reset.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		PadWidth:    4,
		ResetPeriod: "never",
	}
}

// Service allocates reference numbers from the sys_sequences table.
type Service struct {
	querier Querier
}

// New creates a new refnum service.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

// Next allocates the next number for the prefix and formats it.
//
// Callers invoke this inside the same transaction as the document insert,
// so an aborted create releases no number only at the cost of the row lock
// held until commit. That keeps sequences gapless.
func (s *Service) Next(ctx context.Context, cfg Config) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("refnum service is not initialized")
	}

	key := s.buildKey(cfg, time.Now())

	var num int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number: %w", err)
	}

	return s.format(cfg, num), nil
}

// Peek returns the number the next Next call would allocate, without
// consuming it. Purely advisory: a concurrent writer may take it first.
func (s *Service) Peek(ctx context.Context, cfg Config) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("refnum service is not initialized")
	}

	key := s.buildKey(cfg, time.Now())

	var current int64
	err := s.querier.QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT current_val FROM sys_sequences WHERE key = $1), 0)
	`, key).Scan(&current)
	if err != nil {
		return "", fmt.Errorf("peek number: %w", err)
	}

	return s.format(cfg, current+1), nil
}

func (s *Service) buildKey(cfg Config, period time.Time) string {
	if cfg.ResetPeriod == "year" {
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	}
	return cfg.Prefix
}

func (s *Service) format(cfg Config, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 4
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts the numeric part from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	var num int64
	if _, err := fmt.Sscanf(formatted, "%*[^-]-%d", &num); err == nil {
		return num
	}
	return -1
}

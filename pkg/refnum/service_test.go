package refnum

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seqs == nil {
		m.seqs = make(map[string]int64)
	}

	// The UPSERT keys on args[0]; every call increments by one.
	key, _ := args[0].(string)
	m.seqs[key]++

	return &mockRow{val: m.seqs[key]}
}

func TestNext_SequentialPerPrefix(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()

	num, err := svc.Next(ctx, DefaultConfig("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "A-0001" {
		t.Errorf("expected A-0001, got %s", num)
	}

	num, err = svc.Next(ctx, DefaultConfig("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "A-0002" {
		t.Errorf("expected A-0002, got %s", num)
	}

	// A different prefix runs its own sequence.
	num, err = svc.Next(ctx, DefaultConfig("PO"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PO-0001" {
		t.Errorf("expected PO-0001, got %s", num)
	}
}

func TestNext_ConcurrentCallersNeverCollide(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("A")

	const workers = 50
	results := make(chan string, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			num, err := svc.Next(ctx, cfg)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for num := range results {
		if seen[num] {
			t.Errorf("duplicate number allocated: %s", num)
		}
		seen[num] = true
	}
	if len(seen) != workers {
		t.Errorf("expected %d unique numbers, got %d", workers, len(seen))
	}
}

func TestNext_YearlyResetUsesYearKey(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()

	cfg := Config{Prefix: "A", PadWidth: 4, ResetPeriod: "year"}
	num, err := svc.Next(ctx, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "A-0001" {
		t.Errorf("expected A-0001, got %s", num)
	}

	// The plain prefix sequence is untouched.
	num, err = svc.Next(ctx, DefaultConfig("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "A-0001" {
		t.Errorf("expected A-0001, got %s", num)
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"A-0001", 1},
		{"PO-0042", 42},
		{"A-12345", 12345},
		{"garbage", -1},
	}
	for _, tc := range cases {
		if got := ParseNumber(tc.in); got != tc.want {
			t.Errorf("ParseNumber(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNext_UninitializedService(t *testing.T) {
	var svc *Service
	if _, err := svc.Next(context.Background(), DefaultConfig("A")); err == nil {
		t.Error("expected error from nil service")
	}
}

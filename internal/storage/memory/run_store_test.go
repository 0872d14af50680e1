package memory

import (
	"context"
	"errors"
	"testing"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/storage"
)

func testRun(id, instrument string, createdAt int64) *domain.ValidationRun {
	return &domain.ValidationRun{
		RunID:      id,
		Instrument: instrument,
		StrategyID: "MOMENTUM_20_50",
		Mode:       "bootstrap",
		CreatedAt:  createdAt,
		FoldCount:  11,
		TradeCount: 87,
	}
}

func TestRunStore_InsertAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testRun("run1", "BTC-USD", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FoldCount != 11 {
		t.Errorf("FoldCount mismatch: got %d, want 11", got.FoldCount)
	}
}

func TestRunStore_DuplicateKey(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testRun("run1", "BTC-USD", 1000)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, testRun("run1", "BTC-USD", 2000)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestRunStore_GetByInstrumentOrdered(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	for _, r := range []*domain.ValidationRun{
		testRun("run3", "BTC-USD", 3000),
		testRun("run1", "BTC-USD", 1000),
		testRun("run2", "ETH-USD", 2000),
	} {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByInstrument(ctx, "BTC-USD")
	if err != nil {
		t.Fatalf("GetByInstrument failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	if got[0].RunID != "run1" || got[1].RunID != "run3" {
		t.Errorf("runs not ordered by created_at: %s, %s", got[0].RunID, got[1].RunID)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 runs total, got %d", len(all))
	}
}

func TestRunStore_NotFound(t *testing.T) {
	store := NewRunStore()
	if _, err := store.GetByID(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

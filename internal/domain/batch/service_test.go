package batch_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/batch"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/product"
	"github.com/your-org/feedmill-backend/internal/testutil"
	"gorm.io/gorm"
)

func newBatchService(t *testing.T) (*batch.Service, *gorm.DB) {
	db := testutil.OpenDB(t)
	return batch.NewService(db, ledger.NewService(db)), db
}

func seedProduct(t *testing.T, db *gorm.DB) *product.Product {
	t.Helper()
	p := &product.Product{
		Category:  product.CategoryFeed,
		Name:      "Broiler Starter Feed",
		Unit:      "kg",
		SellPrice: decimal.NewFromFloat(1.20),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p
}

func seedBatches(t *testing.T, svc *batch.Service, db *gorm.DB, productID uint, qtys ...int64) []uint {
	t.Helper()
	ids := make([]uint, 0, len(qtys))
	for i, qty := range qtys {
		var created *batch.ProductBatch
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			created, err = svc.CreateFromProductionTx(tx, productID, uint(i+1), decimal.NewFromInt(qty), nil)
			return err
		})
		if err != nil {
			t.Fatalf("failed to seed batch: %v", err)
		}
		ids = append(ids, created.ID)
	}
	return ids
}

func TestConsumeFIFOWalksOldestFirst(t *testing.T) {
	svc, db := newBatchService(t)
	p := seedProduct(t, db)
	ids := seedBatches(t, svc, db, p.ID, 5, 5, 5)

	if err := svc.ConsumeFIFO(p.ID, decimal.NewFromInt(7), ledger.SourceSale, nil); err != nil {
		t.Fatalf("consume failed: %v", err)
	}

	want := []int64{0, 3, 5}
	for i, id := range ids {
		b, err := svc.Get(id)
		if err != nil {
			t.Fatalf("get batch failed: %v", err)
		}
		if !b.Remaining.Equal(decimal.NewFromInt(want[i])) {
			t.Errorf("batch %d remaining = %s, want %d", i, b.Remaining, want[i])
		}
	}

	total, err := svc.TotalAvailable(p.ID)
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(8)) {
		t.Errorf("total available = %s, want 8", total)
	}
}

func TestConsumeFIFOInsufficientTouchesNothing(t *testing.T) {
	svc, db := newBatchService(t)
	p := seedProduct(t, db)
	ids := seedBatches(t, svc, db, p.ID, 5, 5)

	err := svc.ConsumeFIFO(p.ID, decimal.NewFromInt(11), ledger.SourceSale, nil)
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("consume = %v, want ErrInsufficientStock", err)
	}

	// The shortfall check runs against the whole locked set before any
	// deduction, so both batches stay full.
	for _, id := range ids {
		b, err := svc.Get(id)
		if err != nil {
			t.Fatalf("get batch failed: %v", err)
		}
		if !b.Remaining.Equal(decimal.NewFromInt(5)) {
			t.Errorf("batch %d remaining = %s, want untouched 5", id, b.Remaining)
		}
	}
}

func TestConsumeFIFOSkipsDepletedBatches(t *testing.T) {
	svc, db := newBatchService(t)
	p := seedProduct(t, db)
	ids := seedBatches(t, svc, db, p.ID, 4, 6)

	if err := svc.ConsumeFIFO(p.ID, decimal.NewFromInt(4), ledger.SourceSale, nil); err != nil {
		t.Fatalf("first consume failed: %v", err)
	}
	if err := svc.ConsumeFIFO(p.ID, decimal.NewFromInt(2), ledger.SourceSale, nil); err != nil {
		t.Fatalf("second consume failed: %v", err)
	}

	first, _ := svc.Get(ids[0])
	second, _ := svc.Get(ids[1])
	if !first.Remaining.IsZero() || !second.Remaining.Equal(decimal.NewFromInt(4)) {
		t.Errorf("remaining = [%s %s], want [0 4]", first.Remaining, second.Remaining)
	}

	open, err := svc.GetByProduct(p.ID, false)
	if err != nil {
		t.Fatalf("get by product failed: %v", err)
	}
	if len(open) != 1 {
		t.Errorf("open batches = %d, want 1 (depleted batch excluded)", len(open))
	}
}

func TestDeductTxRejectsOverdraw(t *testing.T) {
	svc, db := newBatchService(t)
	p := seedProduct(t, db)
	ids := seedBatches(t, svc, db, p.ID, 3)

	err := db.Transaction(func(tx *gorm.DB) error {
		b, err := svc.LockTx(tx, ids[0])
		if err != nil {
			return err
		}
		return svc.DeductTx(tx, b, decimal.NewFromInt(5), ledger.SourceDisposal, nil)
	})
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("deduct = %v, want ErrInsufficientStock", err)
	}

	b, _ := svc.Get(ids[0])
	if !b.Remaining.Equal(decimal.NewFromInt(3)) {
		t.Errorf("remaining = %s, want untouched 3", b.Remaining)
	}
}

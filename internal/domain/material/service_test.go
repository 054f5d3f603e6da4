package material_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/material"
	"github.com/your-org/feedmill-backend/internal/testutil"
)

func newMaterialService(t *testing.T) (*material.Service, *ledger.Service) {
	db := testutil.OpenDB(t)
	ledgerSvc := ledger.NewService(db)
	return material.NewService(db, ledgerSvc), ledgerSvc
}

func seedMaterial(t *testing.T, svc *material.Service, stock int64) *material.Material {
	t.Helper()
	m, err := svc.Create(&material.CreateMaterialRequest{
		Category:  material.CategoryFeed,
		Name:      "Yellow Corn",
		Stock:     decimal.NewFromInt(stock),
		MinStock:  decimal.NewFromInt(100),
		UnitPrice: decimal.NewFromFloat(0.45),
	})
	if err != nil {
		t.Fatalf("failed to seed material: %v", err)
	}
	return m
}

func TestIncreaseDecreaseConservation(t *testing.T) {
	svc, ledgerSvc := newMaterialService(t)
	m := seedMaterial(t, svc, 1000)

	if err := svc.Increase(m.ID, decimal.NewFromInt(250), ledger.SourcePurchase, nil, ""); err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if err := svc.Decrease(m.ID, decimal.NewFromInt(400), ledger.SourceInternalUse, nil, ""); err != nil {
		t.Fatalf("decrease failed: %v", err)
	}

	got, err := svc.Get(m.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if want := decimal.NewFromInt(850); !got.Stock.Equal(want) {
		t.Errorf("stock = %s, want %s", got.Stock, want)
	}

	// The balance must equal opening stock plus the signed sum of the ledger.
	movements, err := ledgerSvc.GetByMaterial(m.ID, nil)
	if err != nil {
		t.Fatalf("get movements failed: %v", err)
	}
	net := decimal.Zero
	for _, mv := range movements {
		if mv.IsInbound() {
			net = net.Add(mv.Qty)
		} else {
			net = net.Sub(mv.Qty)
		}
	}
	if !m.Stock.Add(net).Equal(got.Stock) {
		t.Errorf("ledger net %s does not reconcile opening %s to balance %s", net, m.Stock, got.Stock)
	}
}

func TestDecreaseInsufficientLeavesNoTrace(t *testing.T) {
	svc, ledgerSvc := newMaterialService(t)
	m := seedMaterial(t, svc, 100)

	err := svc.Decrease(m.ID, decimal.NewFromInt(150), ledger.SourceInternalUse, nil, "")
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("decrease = %v, want ErrInsufficientStock", err)
	}

	got, err := svc.Get(m.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.Stock.Equal(decimal.NewFromInt(100)) {
		t.Errorf("stock = %s, want unchanged 100", got.Stock)
	}

	movements, err := ledgerSvc.GetByMaterial(m.ID, nil)
	if err != nil {
		t.Fatalf("get movements failed: %v", err)
	}
	if len(movements) != 0 {
		t.Errorf("rejected decrease left %d movement(s) on the ledger", len(movements))
	}
}

// Concurrent decrements against a small balance: some must fail, the
// balance must never go negative, and the ledger must reconcile exactly.
func TestConcurrentDecreaseNeverOverdraws(t *testing.T) {
	svc, ledgerSvc := newMaterialService(t)
	m := seedMaterial(t, svc, 100)

	const workers = 20
	qty := decimal.NewFromInt(10)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Decrease(m.ID, qty, ledger.SourceInternalUse, nil, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ledger.ErrInsufficientStock), errors.Is(err, ledger.ErrBusy):
		default:
			t.Errorf("unexpected error class: %v", err)
		}
	}
	if succeeded > 10 {
		t.Errorf("%d decrements of 10 succeeded against a balance of 100", succeeded)
	}

	got, err := svc.Get(m.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Stock.Sign() < 0 {
		t.Errorf("balance went negative: %s", got.Stock)
	}

	want := decimal.NewFromInt(100 - int64(succeeded)*10)
	if !got.Stock.Equal(want) {
		t.Errorf("stock = %s, want %s after %d successful decrements", got.Stock, want, succeeded)
	}

	outbound := ledger.DirectionOut
	movements, err := ledgerSvc.GetByMaterial(m.ID, &outbound)
	if err != nil {
		t.Fatalf("get movements failed: %v", err)
	}
	if len(movements) != succeeded {
		t.Errorf("ledger has %d outbound rows, want %d", len(movements), succeeded)
	}
}

func TestDeleteRequiresZeroBalance(t *testing.T) {
	svc, _ := newMaterialService(t)
	m := seedMaterial(t, svc, 50)

	if err := svc.Delete(m.ID); !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("delete with stock = %v, want ErrInsufficientStock", err)
	}

	if err := svc.Decrease(m.ID, decimal.NewFromInt(50), ledger.SourceAdjustment, nil, "drain"); err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	if err := svc.Delete(m.ID); err != nil {
		t.Fatalf("delete at zero balance failed: %v", err)
	}
	if _, err := svc.Get(m.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

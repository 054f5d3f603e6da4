package planning_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/material"
	"github.com/your-org/feedmill-backend/internal/domain/planning"
	"github.com/your-org/feedmill-backend/internal/testutil"
)

func newPlanner(t *testing.T) (*planning.Service, *material.Service) {
	db := testutil.OpenDB(t)
	ledgerSvc := ledger.NewService(db)
	materialSvc := material.NewService(db, ledgerSvc)
	return planning.NewService(materialSvc, ledgerSvc, testutil.QuietLogger()), materialSvc
}

func seedMaterial(t *testing.T, svc *material.Service, stock int64) *material.Material {
	t.Helper()
	m, err := svc.Create(&material.CreateMaterialRequest{
		Category:     material.CategoryFeed,
		Name:         "Yellow Corn",
		Stock:        decimal.NewFromInt(stock),
		MinStock:     decimal.NewFromInt(100),
		LeadTimeDays: 7,
		SafetyStock:  decimal.NewFromInt(20),
		UnitPrice:    decimal.NewFromFloat(0.45),
		Supplier:     "AgriFeed Co",
	})
	if err != nil {
		t.Fatalf("failed to seed material: %v", err)
	}
	return m
}

// drain records outbound movements totalling the given quantity so the
// trailing-30-day usage rate becomes qty/30.
func drain(t *testing.T, svc *material.Service, id uint, qty int64) {
	t.Helper()
	if err := svc.Decrease(id, decimal.NewFromInt(qty), ledger.SourceInternalUse, nil, ""); err != nil {
		t.Fatalf("failed to record usage: %v", err)
	}
}

func TestROPFromTrailingUsage(t *testing.T) {
	planner, materials := newPlanner(t)
	m := seedMaterial(t, materials, 500)

	// 300 out over the window: 10/day. ROP = 7×10 + 20.
	drain(t, materials, m.ID, 300)

	rop, err := planner.ROP(m.ID)
	if err != nil {
		t.Fatalf("rop failed: %v", err)
	}
	if want := decimal.NewFromInt(90); !rop.Equal(want) {
		t.Errorf("rop = %s, want %s", rop, want)
	}

	// 200 on hand against a reorder point of 90.
	needs, err := planner.NeedsRestock(m.ID)
	if err != nil {
		t.Fatalf("needs restock failed: %v", err)
	}
	if needs {
		t.Error("needs restock above the reorder point")
	}

	drain(t, materials, m.ID, 150)
	needs, err = planner.NeedsRestock(m.ID)
	if err != nil {
		t.Fatalf("needs restock failed: %v", err)
	}
	if !needs {
		t.Error("no restock signal at a balance below the reorder point")
	}
}

func TestROPWithNoUsageIsSafetyStock(t *testing.T) {
	planner, materials := newPlanner(t)
	m := seedMaterial(t, materials, 500)

	rop, err := planner.ROP(m.ID)
	if err != nil {
		t.Fatalf("rop failed: %v", err)
	}
	if !rop.Equal(decimal.NewFromInt(20)) {
		t.Errorf("rop = %s, want safety stock 20 when usage is zero", rop)
	}

	days, err := planner.DaysUntilStockout(m.ID)
	if err != nil {
		t.Fatalf("days until stockout failed: %v", err)
	}
	if days != nil {
		t.Errorf("days until stockout = %s, want nil at zero usage", days)
	}
}

func TestGetROPDetailsBucketsStatus(t *testing.T) {
	planner, materials := newPlanner(t)
	m := seedMaterial(t, materials, 500)
	drain(t, materials, m.ID, 300)

	details, err := planner.GetROPDetails(m.ID)
	if err != nil {
		t.Fatalf("rop details failed: %v", err)
	}
	if details.Status != "safe" {
		t.Errorf("status = %s, want safe at 200 vs rop 90", details.Status)
	}
	if !details.DailyUsage.Equal(decimal.NewFromInt(10)) {
		t.Errorf("daily usage = %s, want 10", details.DailyUsage)
	}
	if details.DaysUntilStockout == nil {
		t.Fatal("want a stockout projection at non-zero usage")
	}

	// Down to 15, below safety stock of 20.
	drain(t, materials, m.ID, 185)
	details, err = planner.GetROPDetails(m.ID)
	if err != nil {
		t.Fatalf("rop details failed: %v", err)
	}
	if details.Status != "critical" {
		t.Errorf("status = %s, want critical below safety stock", details.Status)
	}
	if !details.NeedsRestock {
		t.Error("want restock flag below safety stock")
	}
}

func TestAdaptiveSafetyStockFallsBackOnThinHistory(t *testing.T) {
	planner, materials := newPlanner(t)
	m := seedMaterial(t, materials, 500)

	// A handful of movements, nowhere near the qualification thresholds.
	for i := 0; i < 5; i++ {
		drain(t, materials, m.ID, 10)
	}

	rec, err := planner.AdaptiveSafetyStock(m.ID, 0.95)
	if err != nil {
		t.Fatalf("adaptive safety stock failed: %v", err)
	}
	if rec.Status != planning.StatusInsufficientData {
		t.Errorf("status = %s, want insufficient_data", rec.Status)
	}
	// Fallback is half the configured minimum, never a fabricated statistic.
	if want := decimal.NewFromInt(50); !rec.Recommended.Equal(want) {
		t.Errorf("recommended = %s, want fallback %s", rec.Recommended, want)
	}
}

func TestReorderAlertsListOnlyTriggeredMaterials(t *testing.T) {
	planner, materials := newPlanner(t)

	low := seedMaterial(t, materials, 500)
	drain(t, materials, low.ID, 450) // 50 left, rop = 7×15 + 20 = 125

	healthy, err := materials.Create(&material.CreateMaterialRequest{
		Category:    material.CategoryFeed,
		Name:        "Soybean Meal",
		Stock:       decimal.NewFromInt(2000),
		SafetyStock: decimal.NewFromInt(20),
		UnitPrice:   decimal.NewFromFloat(1.00),
	})
	if err != nil {
		t.Fatalf("failed to seed material: %v", err)
	}

	alerts, err := planner.GetReorderAlerts(context.Background())
	if err != nil {
		t.Fatalf("reorder alerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want only the drained material", len(alerts))
	}
	a := alerts[0]
	if a.MaterialID != low.ID || a.MaterialID == healthy.ID {
		t.Errorf("alert names material %d, want %d", a.MaterialID, low.ID)
	}
	if a.Priority <= 0 {
		t.Errorf("priority = %d, want positive for a triggered alert", a.Priority)
	}
	if a.SuggestedOrderQty.Sign() <= 0 {
		t.Errorf("suggested order qty = %s, want positive", a.SuggestedOrderQty)
	}
	if a.Supplier != "AgriFeed Co" {
		t.Errorf("supplier = %q, want carried through for order bundling", a.Supplier)
	}
}

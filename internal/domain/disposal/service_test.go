package disposal_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/batch"
	"github.com/your-org/feedmill-backend/internal/domain/disposal"
	"github.com/your-org/feedmill-backend/internal/domain/formula"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/material"
	"github.com/your-org/feedmill-backend/internal/domain/product"
	"github.com/your-org/feedmill-backend/internal/domain/production"
	"github.com/your-org/feedmill-backend/internal/testutil"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	batches   *batch.Service
	disposals *disposal.Service
	batch     *batch.ProductBatch
	product   *product.Product
}

// newFixture produces 100 kg through a real run so disposals can trace
// their loss back to the formula. Unit cost is 0.6×0.50 + 0.4×1.00 = 0.70/kg.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)

	ledgerSvc := ledger.NewService(db)
	materialSvc := material.NewService(db, ledgerSvc)
	formulaSvc := formula.NewService(db)
	batchSvc := batch.NewService(db, ledgerSvc)
	productionSvc := production.NewService(db, materialSvc, formulaSvc, batchSvc, testutil.QuietLogger())
	disposalSvc := disposal.NewService(db, batchSvc, formulaSvc, testutil.QuietLogger())

	corn, err := materialSvc.Create(&material.CreateMaterialRequest{
		Category: material.CategoryFeed, Name: "Yellow Corn",
		Stock: decimal.NewFromInt(1000), UnitPrice: decimal.NewFromFloat(0.50),
	})
	if err != nil {
		t.Fatalf("failed to seed corn: %v", err)
	}
	soy, err := materialSvc.Create(&material.CreateMaterialRequest{
		Category: material.CategoryFeed, Name: "Soybean Meal",
		Stock: decimal.NewFromInt(1000), UnitPrice: decimal.NewFromFloat(1.00),
	})
	if err != nil {
		t.Fatalf("failed to seed soy: %v", err)
	}

	p := &product.Product{Category: product.CategoryFeed, Name: "Broiler Starter Feed", Unit: "kg"}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	f := &formula.Formula{ProductID: p.ID, Name: "Broiler Starter v1", IsActive: true}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("failed to seed formula: %v", err)
	}
	lines := []formula.FormulaDetail{
		{FormulaID: f.ID, MaterialID: corn.ID, Qty: decimal.NewFromFloat(0.6)},
		{FormulaID: f.ID, MaterialID: soy.ID, Qty: decimal.NewFromFloat(0.4)},
	}
	for i := range lines {
		if err := db.Create(&lines[i]).Error; err != nil {
			t.Fatalf("failed to seed formula line: %v", err)
		}
	}

	run, err := productionSvc.Execute(&production.ExecuteRequest{
		FormulaID: f.ID, Qty: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("failed to produce fixture batch: %v", err)
	}

	batches, err := batchSvc.GetByProduct(p.ID, true)
	if err != nil || len(batches) != 1 {
		t.Fatalf("want one batch from run %s, got %d (err %v)", run.Code, len(batches), err)
	}

	return &fixture{db: db, batches: batchSvc, disposals: disposalSvc, batch: &batches[0], product: p}
}

func TestExecuteValuesLossAtFormulaCost(t *testing.T) {
	fx := newFixture(t)

	d, err := fx.disposals.Execute(&disposal.ExecuteRequest{
		ProductBatchID: fx.batch.ID,
		Qty:            decimal.NewFromInt(10),
		Reason:         disposal.ReasonDamaged,
		Notes:          "pallet dropped during loading",
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if want := decimal.NewFromFloat(7.00); !d.EstimatedLoss.Equal(want) {
		t.Errorf("estimated loss = %s, want %s", d.EstimatedLoss, want)
	}

	b, err := fx.batches.Get(fx.batch.ID)
	if err != nil {
		t.Fatalf("get batch failed: %v", err)
	}
	if !b.Remaining.Equal(decimal.NewFromInt(90)) {
		t.Errorf("batch remaining = %s, want 90", b.Remaining)
	}

	got, err := fx.disposals.Get(d.ID)
	if err != nil {
		t.Fatalf("get disposal failed: %v", err)
	}
	if got.Reason != disposal.ReasonDamaged || !got.Qty.Equal(decimal.NewFromInt(10)) {
		t.Errorf("persisted disposal = %+v, want damaged/10", got)
	}
}

func TestExecuteUntraceableBatchLossIsZero(t *testing.T) {
	fx := newFixture(t)

	// A batch whose production run is gone: the write-off still goes
	// through, valued at zero.
	var orphan *batch.ProductBatch
	err := fx.db.Transaction(func(tx *gorm.DB) error {
		var err error
		orphan, err = fx.batches.CreateFromProductionTx(tx, fx.product.ID, 99999, decimal.NewFromInt(20), nil)
		return err
	})
	if err != nil {
		t.Fatalf("failed to seed orphan batch: %v", err)
	}

	d, err := fx.disposals.Execute(&disposal.ExecuteRequest{
		ProductBatchID: orphan.ID,
		Qty:            decimal.NewFromInt(5),
		Reason:         disposal.ReasonLost,
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !d.EstimatedLoss.IsZero() {
		t.Errorf("estimated loss = %s, want 0 for untraceable batch", d.EstimatedLoss)
	}
}

func TestExecuteRejectsUnknownReason(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.disposals.Execute(&disposal.ExecuteRequest{
		ProductBatchID: fx.batch.ID,
		Qty:            decimal.NewFromInt(1),
		Reason:         "stolen",
	})
	if !errors.Is(err, ledger.ErrInvalidReason) {
		t.Fatalf("execute = %v, want ErrInvalidReason", err)
	}

	b, _ := fx.batches.Get(fx.batch.ID)
	if !b.Remaining.Equal(decimal.NewFromInt(100)) {
		t.Errorf("batch remaining = %s, want untouched 100", b.Remaining)
	}
}

func TestExecuteRejectsOverdraw(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.disposals.Execute(&disposal.ExecuteRequest{
		ProductBatchID: fx.batch.ID,
		Qty:            decimal.NewFromInt(150),
		Reason:         disposal.ReasonExpired,
	})
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("execute = %v, want ErrInsufficientStock", err)
	}

	disposals, err := fx.disposals.GetAll("")
	if err != nil {
		t.Fatalf("get disposals failed: %v", err)
	}
	if len(disposals) != 0 {
		t.Errorf("rejected write-off left %d disposal row(s)", len(disposals))
	}
}

func TestSummarizeGroupsByReason(t *testing.T) {
	fx := newFixture(t)

	orders := []struct {
		qty    int64
		reason disposal.Reason
	}{
		{10, disposal.ReasonExpired},
		{5, disposal.ReasonExpired},
		{2, disposal.ReasonDamaged},
	}
	for _, o := range orders {
		_, err := fx.disposals.Execute(&disposal.ExecuteRequest{
			ProductBatchID: fx.batch.ID,
			Qty:            decimal.NewFromInt(o.qty),
			Reason:         o.reason,
		})
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}
	}

	summary, err := fx.disposals.Summarize(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if !summary.TotalQty.Equal(decimal.NewFromInt(17)) {
		t.Errorf("total qty = %s, want 17", summary.TotalQty)
	}
	// 17 kg × 0.70/kg
	if want := decimal.NewFromFloat(11.90); !summary.TotalLoss.Equal(want) {
		t.Errorf("total loss = %s, want %s", summary.TotalLoss, want)
	}
	if len(summary.ByReason) != 2 {
		t.Errorf("reason groups = %d, want 2", len(summary.ByReason))
	}
}

func TestGetExpiredBatchesListsOnlyStockedPastExpiry(t *testing.T) {
	fx := newFixture(t)

	past := time.Now().AddDate(0, -1, 0)
	var expired *batch.ProductBatch
	err := fx.db.Transaction(func(tx *gorm.DB) error {
		var err error
		expired, err = fx.batches.CreateFromProductionTx(tx, fx.product.ID, 99998, decimal.NewFromInt(8), &past)
		return err
	})
	if err != nil {
		t.Fatalf("failed to seed expired batch: %v", err)
	}

	worklist, err := fx.disposals.GetExpiredBatches()
	if err != nil {
		t.Fatalf("get expired batches failed: %v", err)
	}
	if len(worklist) != 1 || worklist[0].ID != expired.ID {
		t.Fatalf("worklist = %d batch(es), want just the expired one", len(worklist))
	}

	// Writing the stock off empties the worklist.
	_, err = fx.disposals.Execute(&disposal.ExecuteRequest{
		ProductBatchID: expired.ID,
		Qty:            decimal.NewFromInt(8),
		Reason:         disposal.ReasonExpired,
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	worklist, err = fx.disposals.GetExpiredBatches()
	if err != nil {
		t.Fatalf("get expired batches failed: %v", err)
	}
	if len(worklist) != 0 {
		t.Errorf("worklist still holds %d batch(es) after write-off", len(worklist))
	}
}

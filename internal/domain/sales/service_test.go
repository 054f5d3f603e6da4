package sales_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/batch"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/product"
	"github.com/your-org/feedmill-backend/internal/domain/sales"
	"github.com/your-org/feedmill-backend/internal/testutil"
	"gorm.io/gorm"
)

func newSalesService(t *testing.T) (*sales.Service, *batch.Service, *gorm.DB) {
	db := testutil.OpenDB(t)
	batchSvc := batch.NewService(db, ledger.NewService(db))
	return sales.NewService(db, batchSvc, testutil.QuietLogger()), batchSvc, db
}

func seedProductWithBatches(t *testing.T, db *gorm.DB, batchSvc *batch.Service, qtys ...int64) *product.Product {
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
	for i, qty := range qtys {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := batchSvc.CreateFromProductionTx(tx, p.ID, uint(i+1), decimal.NewFromInt(qty), nil)
			return err
		})
		if err != nil {
			t.Fatalf("failed to seed batch: %v", err)
		}
	}
	return p
}

func TestExecuteConsumesBatchesFIFO(t *testing.T) {
	svc, batchSvc, db := newSalesService(t)
	p := seedProductWithBatches(t, db, batchSvc, 50, 50)

	sale, err := svc.Execute(&sales.ExecuteRequest{
		ProductID: p.ID,
		Qty:       decimal.NewFromInt(70),
		Customer:  "Harvest Poultry Farm",
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if !strings.HasPrefix(sale.Code, "SLS-") {
		t.Errorf("sale code = %q, want SLS- prefix", sale.Code)
	}
	// 70 × 1.20 list price
	if want := decimal.NewFromInt(84); !sale.Total.Equal(want) {
		t.Errorf("total = %s, want %s", sale.Total, want)
	}

	total, err := batchSvc.TotalAvailable(p.ID)
	if err != nil {
		t.Fatalf("total available failed: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(30)) {
		t.Errorf("remaining product stock = %s, want 30", total)
	}

	batches, err := batchSvc.GetByProduct(p.ID, true)
	if err != nil {
		t.Fatalf("get batches failed: %v", err)
	}
	if !batches[0].Remaining.IsZero() || !batches[1].Remaining.Equal(decimal.NewFromInt(30)) {
		t.Errorf("remaining = [%s %s], want oldest drained first [0 30]",
			batches[0].Remaining, batches[1].Remaining)
	}
}

func TestExecuteHonorsPriceOverride(t *testing.T) {
	svc, batchSvc, db := newSalesService(t)
	p := seedProductWithBatches(t, db, batchSvc, 100)

	override := decimal.NewFromFloat(0.95)
	sale, err := svc.Execute(&sales.ExecuteRequest{
		ProductID: p.ID,
		Qty:       decimal.NewFromInt(10),
		UnitPrice: &override,
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if want := decimal.NewFromFloat(9.50); !sale.Total.Equal(want) {
		t.Errorf("total = %s, want %s at the overridden price", sale.Total, want)
	}
}

func TestExecuteInsufficientStockLeavesNoSale(t *testing.T) {
	svc, batchSvc, db := newSalesService(t)
	p := seedProductWithBatches(t, db, batchSvc, 20)

	_, err := svc.Execute(&sales.ExecuteRequest{
		ProductID: p.ID,
		Qty:       decimal.NewFromInt(25),
	})
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("execute = %v, want ErrInsufficientStock", err)
	}

	all, err := svc.GetAll()
	if err != nil {
		t.Fatalf("get sales failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rejected sale left %d row(s)", len(all))
	}

	total, err := batchSvc.TotalAvailable(p.ID)
	if err != nil {
		t.Fatalf("total available failed: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(20)) {
		t.Errorf("stock = %s, want untouched 20", total)
	}
}

func TestSummarizeGroupsByProduct(t *testing.T) {
	svc, batchSvc, db := newSalesService(t)
	p := seedProductWithBatches(t, db, batchSvc, 200)

	for _, qty := range []int64{30, 20} {
		if _, err := svc.Execute(&sales.ExecuteRequest{
			ProductID: p.ID,
			Qty:       decimal.NewFromInt(qty),
		}); err != nil {
			t.Fatalf("execute failed: %v", err)
		}
	}

	summary, err := svc.Summarize(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if !summary.TotalQty.Equal(decimal.NewFromInt(50)) {
		t.Errorf("total qty = %s, want 50", summary.TotalQty)
	}
	// 50 × 1.20
	if want := decimal.NewFromInt(60); !summary.TotalRevenue.Equal(want) {
		t.Errorf("total revenue = %s, want %s", summary.TotalRevenue, want)
	}
	if len(summary.ByProduct) != 1 {
		t.Errorf("product groups = %d, want 1", len(summary.ByProduct))
	}
}

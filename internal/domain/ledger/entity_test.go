package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func uintPtr(v uint) *uint { return &v }

func TestStockMovementValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       StockMovement
		wantErr bool
	}{
		{
			name: "valid material movement",
			m:    StockMovement{Direction: DirectionIn, Source: SourcePurchase, Qty: decimal.NewFromInt(10), MaterialID: uintPtr(1)},
		},
		{
			name: "valid batch movement",
			m:    StockMovement{Direction: DirectionOut, Source: SourceSale, Qty: decimal.NewFromInt(5), ProductBatchID: uintPtr(3)},
		},
		{
			name:    "unknown direction",
			m:       StockMovement{Direction: "sideways", Source: SourcePurchase, Qty: decimal.NewFromInt(1), MaterialID: uintPtr(1)},
			wantErr: true,
		},
		{
			name:    "zero quantity",
			m:       StockMovement{Direction: DirectionIn, Source: SourcePurchase, Qty: decimal.Zero, MaterialID: uintPtr(1)},
			wantErr: true,
		},
		{
			name:    "negative quantity",
			m:       StockMovement{Direction: DirectionIn, Source: SourcePurchase, Qty: decimal.NewFromInt(-4), MaterialID: uintPtr(1)},
			wantErr: true,
		},
		{
			name:    "no subject",
			m:       StockMovement{Direction: DirectionIn, Source: SourcePurchase, Qty: decimal.NewFromInt(1)},
			wantErr: true,
		},
		{
			name:    "both subjects",
			m:       StockMovement{Direction: DirectionIn, Source: SourcePurchase, Qty: decimal.NewFromInt(1), MaterialID: uintPtr(1), ProductBatchID: uintPtr(2)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidMovement) {
				t.Errorf("Validate() = %v, want ErrInvalidMovement", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestInsufficientMaterialsErrorUnwrap(t *testing.T) {
	err := &InsufficientMaterialsError{Shortages: []MaterialShortage{
		{MaterialName: "Yellow Corn", Needed: "100", Available: "40", Shortage: "60"},
	}}

	if !errors.Is(err, ErrInsufficientStock) {
		t.Error("InsufficientMaterialsError should match ErrInsufficientStock")
	}
	if msg := err.Error(); msg == "" {
		t.Error("error message should name the short materials")
	}
}

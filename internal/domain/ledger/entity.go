// internal/domain/ledger/entity.go
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction represents the direction of a stock movement
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Source represents the originating operation of a stock movement
type Source string

const (
	SourcePurchase            Source = "purchase"
	SourceProduction          Source = "production"
	SourceProductionCancelled Source = "production_cancelled"
	SourceSale                Source = "sale"
	SourceDisposal            Source = "disposal"
	SourceInternalUse         Source = "internal_use"
	SourceAdjustment          Source = "adjustment"
)

// StockMovement is one immutable row of the movement ledger. Exactly one
// of MaterialID / ProductBatchID is set. Corrections are new offsetting
// rows, never edits.
type StockMovement struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Direction      Direction       `gorm:"not null;size:10;index" json:"direction"`
	Source         Source          `gorm:"not null;size:50;index" json:"source"`
	Qty            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"qty"`
	MaterialID     *uint           `gorm:"index" json:"material_id,omitempty"`
	ProductBatchID *uint           `gorm:"index" json:"product_batch_id,omitempty"`
	RefID          *uint           `json:"ref_id,omitempty"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
}

// TableName overrides
func (StockMovement) TableName() string { return "stock_movements" }

// Validate checks the ledger entry invariants: positive quantity, a known
// direction, and exactly one subject reference.
func (m *StockMovement) Validate() error {
	if m.Direction != DirectionIn && m.Direction != DirectionOut {
		return ErrInvalidMovement
	}
	if !m.Qty.IsPositive() {
		return ErrInvalidMovement
	}
	if (m.MaterialID == nil) == (m.ProductBatchID == nil) {
		return ErrInvalidMovement
	}
	return nil
}

// IsInbound reports whether the movement adds stock
func (m *StockMovement) IsInbound() bool {
	return m.Direction == DirectionIn
}

// MovementSummary aggregates movements over a period
type MovementSummary struct {
	TotalMovements int64                      `json:"total_movements"`
	TotalIn        decimal.Decimal            `json:"total_in"`
	TotalOut       decimal.Decimal            `json:"total_out"`
	BySource       map[Source]SourceBreakdown `json:"by_source"`
}

// SourceBreakdown is the per-source slice of a MovementSummary
type SourceBreakdown struct {
	Count    int64           `json:"count"`
	TotalQty decimal.Decimal `json:"total_qty"`
}

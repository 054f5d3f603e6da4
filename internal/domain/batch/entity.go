// internal/domain/batch/entity.go
package batch

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductBatch is one production run's yield, depleted oldest-first.
// Remaining never grows after creation and never goes below zero.
type ProductBatch struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ProductID       uint            `gorm:"not null;index:idx_batches_fifo,priority:1" json:"product_id"`
	ProductionRunID uint            `gorm:"not null;index" json:"production_run_id"`
	InitialQty      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"initial_qty"`
	Remaining       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"remaining"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	CreatedAt       time.Time       `gorm:"index:idx_batches_fifo,priority:2" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName overrides
func (ProductBatch) TableName() string { return "product_batches" }

// IsDepleted reports whether the batch has been fully consumed
func (b *ProductBatch) IsDepleted() bool {
	return b.Remaining.Sign() <= 0
}

// internal/domain/disposal/entity.go
package disposal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reason is the closed set of disposal reasons
type Reason string

const (
	ReasonExpired Reason = "expired"
	ReasonDamaged Reason = "damaged"
	ReasonLost    Reason = "lost"
	ReasonOther   Reason = "other"
)

var validReasons = map[Reason]bool{
	ReasonExpired: true,
	ReasonDamaged: true,
	ReasonLost:    true,
	ReasonOther:   true,
}

// IsValid reports whether the reason is in the closed set
func (r Reason) IsValid() bool {
	return validReasons[r]
}

// Disposal is one write-off against a specific product batch. EstimatedLoss
// is the material cost of the written-off quantity, valued through the
// formula of the batch's production run; zero when that cost cannot be
// traced.
type Disposal struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ProductBatchID uint            `gorm:"not null;index" json:"product_batch_id"`
	ProductID      uint            `gorm:"not null;index" json:"product_id"`
	Qty            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"qty"`
	Reason         Reason          `gorm:"not null;size:20;index" json:"reason"`
	Action         string          `gorm:"size:50" json:"action"`
	EstimatedLoss  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"estimated_loss"`
	Notes          string          `gorm:"size:255" json:"notes"`
	DisposedAt     time.Time       `gorm:"not null;index" json:"disposed_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TableName overrides
func (Disposal) TableName() string { return "disposals" }

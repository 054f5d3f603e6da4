// internal/domain/sales/entity.go
package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one outbound sale of a finished product. The quantity is drawn
// from the product's batches in FIFO order; the batch split lives on the
// movement ledger, not here.
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"uniqueIndex;not null;size:50" json:"code"`
	ProductID     uint            `gorm:"not null;index" json:"product_id"`
	Qty           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"qty"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	SaleDate      time.Time       `gorm:"not null;index" json:"sale_date"`
	Customer      string          `gorm:"size:100" json:"customer"`
	PaymentMethod string          `gorm:"not null;size:20;default:'cash'" json:"payment_method"`
	Notes         string          `gorm:"size:255" json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName overrides
func (Sale) TableName() string { return "sales" }

// GenerateSaleCode builds a unique sale code: SLS-YYYYMMDD-XXXXXXXX
func GenerateSaleCode(saleDate time.Time) string {
	return fmt.Sprintf("SLS-%s-%s", saleDate.Format("20060102"), uuid.New().String()[:8])
}

// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies a finished product and drives its shelf life
type Category string

const (
	CategoryFeed       Category = "feed"
	CategoryMedicine   Category = "medicine"
	CategorySupplement Category = "supplement"
)

// shelfLifeMonths maps each product category to how long a batch stays
// usable. Closed table; unknown categories fall back to the default.
var shelfLifeMonths = map[Category]int{
	CategoryFeed:       6,
	CategoryMedicine:   24,
	CategorySupplement: 18,
}

const defaultShelfLifeMonths = 12

// ShelfLifeMonths returns the batch shelf life for a category
func ShelfLifeMonths(c Category) int {
	if months, ok := shelfLifeMonths[c]; ok {
		return months
	}
	return defaultShelfLifeMonths
}

// Product is a finished good produced from a formula and tracked in
// per-production batches.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Category  Category        `gorm:"not null;size:20;index" json:"category"`
	Name      string          `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Unit      string          `gorm:"not null;size:20;default:'kg'" json:"unit"`
	SellPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"sell_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string { return "products" }

// BatchExpiry computes the expiry date for a batch produced now
func (p *Product) BatchExpiry(producedAt time.Time) time.Time {
	return producedAt.AddDate(0, ShelfLifeMonths(p.Category), 0)
}

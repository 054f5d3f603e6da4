// internal/domain/material/entity.go
package material

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies a raw material
type Category string

const (
	CategoryFeed     Category = "feed"
	CategoryMedicine Category = "medicine"
	CategoryVitamin  Category = "vitamin"
	CategoryMineral  Category = "mineral"
)

// StockStatus summarizes the balance against configured thresholds
type StockStatus string

const (
	StockStatusOut StockStatus = "out_of_stock"
	StockStatusLow StockStatus = "low"
	StockStatusOK  StockStatus = "ok"
)

// Material is a raw-input resource. The balance is mutated only through
// the inventory service so every change lands in the movement ledger.
type Material struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Category     Category        `gorm:"not null;size:20;index" json:"category"`
	Name         string          `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Unit         string          `gorm:"not null;size:20;default:'kg'" json:"unit"`
	Stock        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"stock"`
	MinStock     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"min_stock"`
	LeadTimeDays int             `gorm:"not null;default:7" json:"lead_time_days"`
	SafetyStock  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"safety_stock"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Supplier     string          `gorm:"size:100" json:"supplier"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName overrides
func (Material) TableName() string { return "materials" }

// IsLowStock checks the balance against the configured minimum
func (m *Material) IsLowStock() bool {
	return m.Stock.Cmp(m.MinStock) <= 0
}

// IsNearExpiry checks whether the material expires within the given days
func (m *Material) IsNearExpiry(days int) bool {
	if m.ExpiryDate == nil {
		return false
	}
	return !m.ExpiryDate.After(time.Now().AddDate(0, 0, days))
}

// Status returns the coarse stock status used by catalog listings
func (m *Material) Status() StockStatus {
	switch {
	case m.Stock.Sign() <= 0:
		return StockStatusOut
	case m.IsLowStock():
		return StockStatusLow
	default:
		return StockStatusOK
	}
}

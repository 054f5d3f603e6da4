// internal/domain/formula/entity.go
package formula

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/material"
)

// Formula is a bill of materials: the per-kg recipe for one product. The
// stock engine treats formulas as read-only input; only the active formula
// of a product can drive production.
type Formula struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Details []FormulaDetail `gorm:"foreignKey:FormulaID" json:"details,omitempty"`
}

// FormulaDetail is one recipe line: material quantity per kg of output
type FormulaDetail struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	FormulaID  uint            `gorm:"not null;index" json:"formula_id"`
	MaterialID uint            `gorm:"not null;index" json:"material_id"`
	Qty        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"qty"`

	Material material.Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
}

// TableName overrides
func (Formula) TableName() string       { return "formulas" }
func (FormulaDetail) TableName() string { return "formula_details" }

// MaterialNeed is one formula line scaled to a production quantity
type MaterialNeed struct {
	MaterialID   uint            `json:"material_id"`
	MaterialName string          `json:"material_name"`
	QtyPerKg     decimal.Decimal `json:"qty_per_kg"`
	NeededQty    decimal.Decimal `json:"needed_qty"`
	Available    decimal.Decimal `json:"available"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	IsSufficient bool            `json:"is_sufficient"`
	Shortage     decimal.Decimal `json:"shortage"`
}

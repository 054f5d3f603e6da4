// internal/domain/formula/service.go
package formula

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// Service is the read-only FormulaDefinition lookup the workflows consume.
// Formula authoring lives outside the stock engine.
type Service struct {
	db *gorm.DB
}

// NewService creates a new formula lookup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Get loads a formula with its detail lines and their materials
func (s *Service) Get(id uint) (*Formula, error) {
	var f Formula
	err := s.db.Preload("Details.Material").First(&f, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("formula %d: %w", id, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve formula: %w", err)
	}
	return &f, nil
}

// GetActiveForProduct loads the active formula of a product
func (s *Service) GetActiveForProduct(productID uint) (*Formula, error) {
	var f Formula
	err := s.db.Preload("Details.Material").
		Where("product_id = ? AND is_active = ?", productID, true).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no active formula for product %d: %w", productID, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve active formula: %w", err)
	}
	return &f, nil
}

// MaterialNeeds scales every recipe line to a production quantity and
// reports sufficiency against current balances. Pure read; the workflow
// re-checks under row locks before mutating.
func (s *Service) MaterialNeeds(f *Formula, productionQty decimal.Decimal) ([]MaterialNeed, decimal.Decimal) {
	needs := make([]MaterialNeed, 0, len(f.Details))
	totalCost := decimal.Zero

	for _, detail := range f.Details {
		needed := detail.Qty.Mul(productionQty)
		cost := needed.Mul(detail.Material.UnitPrice)
		shortage := needed.Sub(detail.Material.Stock)
		if shortage.Sign() < 0 {
			shortage = decimal.Zero
		}

		needs = append(needs, MaterialNeed{
			MaterialID:   detail.MaterialID,
			MaterialName: detail.Material.Name,
			QtyPerKg:     detail.Qty,
			NeededQty:    needed,
			Available:    detail.Material.Stock,
			UnitPrice:    detail.Material.UnitPrice,
			TotalCost:    cost,
			IsSufficient: detail.Material.Stock.Cmp(needed) >= 0,
			Shortage:     shortage,
		})
		totalCost = totalCost.Add(cost)
	}

	return needs, totalCost
}

// UnitCost sums qty-per-kg times material unit price over the recipe:
// the material cost of one kg of output.
func (s *Service) UnitCost(formulaID uint) (decimal.Decimal, error) {
	var cost decimal.NullDecimal
	err := s.db.Table("formula_details").
		Joins("JOIN materials ON materials.id = formula_details.material_id").
		Where("formula_details.formula_id = ?", formulaID).
		Select("SUM(formula_details.qty * materials.unit_price)").
		Scan(&cost).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute formula unit cost: %w", err)
	}
	if !cost.Valid {
		return decimal.Zero, nil
	}
	return cost.Decimal, nil
}

// internal/domain/material/service.go
package material

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles raw-material inventory: a single running balance per
// material, mutated only together with a ledger entry.
type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
}

// NewService creates a new material inventory service
func NewService(db *gorm.DB, ledgerSvc *ledger.Service) *Service {
	return &Service{db: db, ledger: ledgerSvc}
}

// CreateMaterialRequest represents catalog creation data
type CreateMaterialRequest struct {
	Category     Category        `json:"category" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	Unit         string          `json:"unit"`
	Stock        decimal.Decimal `json:"stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	LeadTimeDays int             `json:"lead_time_days"`
	SafetyStock  decimal.Decimal `json:"safety_stock"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"required"`
	Supplier     string          `json:"supplier"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
}

// CATALOG

// Create adds a material to the catalog
func (s *Service) Create(req *CreateMaterialRequest) (*Material, error) {
	var existing Material
	if err := s.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("material with name '%s' already exists", req.Name)
	}

	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}
	leadTime := req.LeadTimeDays
	if leadTime <= 0 {
		leadTime = 7
	}

	m := &Material{
		Category:     req.Category,
		Name:         req.Name,
		Unit:         unit,
		Stock:        req.Stock,
		MinStock:     req.MinStock,
		LeadTimeDays: leadTime,
		SafetyStock:  req.SafetyStock,
		UnitPrice:    req.UnitPrice,
		Supplier:     req.Supplier,
		ExpiryDate:   req.ExpiryDate,
	}

	if err := s.db.Create(m).Error; err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return m, nil
}

// Get retrieves one material by id
func (s *Service) Get(id uint) (*Material, error) {
	var m Material
	if err := s.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("material %d: %w", id, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve material: %w", err)
	}
	return &m, nil
}

// GetAll retrieves the full catalog
func (s *Service) GetAll() ([]Material, error) {
	var materials []Material
	if err := s.db.Order("name").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve materials: %w", err)
	}
	return materials, nil
}

// Delete removes a material. Allowed only when the balance is exactly zero
// and no active formula still references it.
func (s *Service) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		m, err := s.lockMaterial(tx, id)
		if err != nil {
			return err
		}

		if !m.Stock.IsZero() {
			return fmt.Errorf("material '%s' still has stock %s: %w", m.Name, m.Stock.String(), ledger.ErrInsufficientStock)
		}

		var refs int64
		err = tx.Table("formula_details").
			Joins("JOIN formulas ON formulas.id = formula_details.formula_id").
			Where("formula_details.material_id = ? AND formulas.is_active = ?", id, true).
			Count(&refs).Error
		if err != nil {
			return fmt.Errorf("failed to check formula references: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("material '%s' is referenced by %d active formula line(s)", m.Name, refs)
		}

		if err := tx.Delete(&Material{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete material: %w", err)
		}
		return nil
	})
}

// LEDGER-MEDIATED BALANCE MUTATION

// Increase adds stock and records the inbound movement in one transaction
func (s *Service) Increase(materialID uint, qty decimal.Decimal, source ledger.Source, refID *uint, notes string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.IncreaseTx(tx, materialID, qty, source, refID, notes)
	})
	return ledger.ClassifyLockError(err)
}

// IncreaseTx is the same operation inside a caller-owned transaction,
// used by workflows that mutate several ledgers atomically.
func (s *Service) IncreaseTx(tx *gorm.DB, materialID uint, qty decimal.Decimal, source ledger.Source, refID *uint, notes string) error {
	if !qty.IsPositive() {
		return fmt.Errorf("increase of %s: %w", qty.String(), ledger.ErrInvalidMovement)
	}

	m, err := s.lockMaterial(tx, materialID)
	if err != nil {
		return err
	}

	newStock := m.Stock.Add(qty)
	if err := tx.Model(&Material{}).Where("id = ?", m.ID).Update("stock", newStock).Error; err != nil {
		return fmt.Errorf("failed to update material stock: %w", err)
	}

	_, err = s.ledger.RecordTx(tx, &ledger.RecordRequest{
		Direction:  ledger.DirectionIn,
		Source:     source,
		Qty:        qty,
		MaterialID: &m.ID,
		RefID:      refID,
		Notes:      notes,
	})
	return err
}

// Decrease subtracts stock and records the outbound movement in one
// transaction. Fails without side effects when the balance is short.
func (s *Service) Decrease(materialID uint, qty decimal.Decimal, source ledger.Source, refID *uint, notes string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.DecreaseTx(tx, materialID, qty, source, refID, notes)
	})
	return ledger.ClassifyLockError(err)
}

// DecreaseTx is the caller-owned-transaction variant of Decrease. The row
// lock is taken before the balance read so concurrent decrements serialize
// on the sufficiency check.
func (s *Service) DecreaseTx(tx *gorm.DB, materialID uint, qty decimal.Decimal, source ledger.Source, refID *uint, notes string) error {
	if !qty.IsPositive() {
		return fmt.Errorf("decrease of %s: %w", qty.String(), ledger.ErrInvalidMovement)
	}

	m, err := s.lockMaterial(tx, materialID)
	if err != nil {
		return err
	}

	if m.Stock.Cmp(qty) < 0 {
		return fmt.Errorf("material '%s': requested %s, available %s: %w",
			m.Name, qty.String(), m.Stock.String(), ledger.ErrInsufficientStock)
	}

	newStock := m.Stock.Sub(qty)
	if err := tx.Model(&Material{}).Where("id = ?", m.ID).Update("stock", newStock).Error; err != nil {
		return fmt.Errorf("failed to update material stock: %w", err)
	}

	_, err = s.ledger.RecordTx(tx, &ledger.RecordRequest{
		Direction:  ledger.DirectionOut,
		Source:     source,
		Qty:        qty,
		MaterialID: &m.ID,
		RefID:      refID,
		Notes:      notes,
	})
	return err
}

// DailyUsage returns outbound quantity per day over the trailing window,
// zero when the material has no outbound movements.
func (s *Service) DailyUsage(materialID uint, windowDays int) (decimal.Decimal, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	total, err := s.ledger.OutboundTotalSince(materialID, time.Now().AddDate(0, 0, -windowDays))
	if err != nil {
		return decimal.Zero, err
	}
	return total.Div(decimal.NewFromInt(int64(windowDays))), nil
}

// LockTx loads a material row under FOR UPDATE inside the caller's
// transaction. Workflows that check several materials before mutating any
// of them lock the whole set up front through this.
func (s *Service) LockTx(tx *gorm.DB, id uint) (*Material, error) {
	return s.lockMaterial(tx, id)
}

// lockMaterial loads the material row under FOR UPDATE. Every mutation
// path goes through this before reading the balance it decides on.
func (s *Service) lockMaterial(tx *gorm.DB, id uint) (*Material, error) {
	var m Material
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("material %d: %w", id, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock material row: %w", ledger.ClassifyLockError(err))
	}
	return &m, nil
}

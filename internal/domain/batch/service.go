// internal/domain/batch/service.go
package batch

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles finished-product inventory: one depletable batch per
// production run, consumed in strict FIFO order so the oldest (closest to
// expiry) stock always leaves first.
type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
}

// NewService creates a new product batch inventory service
func NewService(db *gorm.DB, ledgerSvc *ledger.Service) *Service {
	return &Service{db: db, ledger: ledgerSvc}
}

// CreateFromProductionTx creates a batch row sized to the run's yield and
// records the inbound movement, inside the caller's transaction.
func (s *Service) CreateFromProductionTx(tx *gorm.DB, productID, productionRunID uint, qty decimal.Decimal, expiryDate *time.Time) (*ProductBatch, error) {
	if !qty.IsPositive() {
		return nil, fmt.Errorf("batch of %s: %w", qty.String(), ledger.ErrInvalidMovement)
	}

	b := &ProductBatch{
		ProductID:       productID,
		ProductionRunID: productionRunID,
		InitialQty:      qty,
		Remaining:       qty,
		ExpiryDate:      expiryDate,
	}
	if err := tx.Create(b).Error; err != nil {
		return nil, fmt.Errorf("failed to create product batch: %w", err)
	}

	_, err := s.ledger.RecordTx(tx, &ledger.RecordRequest{
		Direction:      ledger.DirectionIn,
		Source:         ledger.SourceProduction,
		Qty:            qty,
		ProductBatchID: &b.ID,
		RefID:          &productionRunID,
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ConsumeFIFO deducts qty from a product's batches oldest-first in one
// transaction, one outbound movement per batch touched.
func (s *Service) ConsumeFIFO(productID uint, qty decimal.Decimal, source ledger.Source, refID *uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.ConsumeFIFOTx(tx, productID, qty, source, refID)
	})
	return ledger.ClassifyLockError(err)
}

// ConsumeFIFOTx is the caller-owned-transaction variant of ConsumeFIFO.
// The candidate batch set is locked FOR UPDATE before the total-available
// check, so the check and the deduction see the same rows. When the total
// is short, nothing is deducted.
func (s *Service) ConsumeFIFOTx(tx *gorm.DB, productID uint, qty decimal.Decimal, source ledger.Source, refID *uint) error {
	if !qty.IsPositive() {
		return fmt.Errorf("consume of %s: %w", qty.String(), ledger.ErrInvalidMovement)
	}

	batches, err := s.lockAvailableBatches(tx, productID)
	if err != nil {
		return err
	}

	available := decimal.Zero
	for _, b := range batches {
		available = available.Add(b.Remaining)
	}
	if available.Cmp(qty) < 0 {
		return fmt.Errorf("product %d: requested %s, available %s: %w",
			productID, qty.String(), available.String(), ledger.ErrInsufficientStock)
	}

	remaining := qty
	for _, b := range batches {
		if remaining.Sign() <= 0 {
			break
		}

		deduct := decimal.Min(b.Remaining, remaining)
		newRemaining := b.Remaining.Sub(deduct)
		if err := tx.Model(&ProductBatch{}).Where("id = ?", b.ID).Update("remaining", newRemaining).Error; err != nil {
			return fmt.Errorf("failed to deduct batch %d: %w", b.ID, err)
		}

		batchID := b.ID
		_, err := s.ledger.RecordTx(tx, &ledger.RecordRequest{
			Direction:      ledger.DirectionOut,
			Source:         source,
			Qty:            deduct,
			ProductBatchID: &batchID,
			RefID:          refID,
		})
		if err != nil {
			return err
		}

		remaining = remaining.Sub(deduct)
	}

	return nil
}

// TotalAvailable sums remaining quantity across a product's batches
func (s *Service) TotalAvailable(productID uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.Model(&ProductBatch{}).
		Where("product_id = ?", productID).
		Select("SUM(remaining)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum batch stock: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Get retrieves one batch by id
func (s *Service) Get(id uint) (*ProductBatch, error) {
	var b ProductBatch
	if err := s.db.First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product batch %d: %w", id, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve product batch: %w", err)
	}
	return &b, nil
}

// GetByProduct lists a product's batches in FIFO order, including depleted
// ones when includeDepleted is set.
func (s *Service) GetByProduct(productID uint, includeDepleted bool) ([]ProductBatch, error) {
	query := s.db.Where("product_id = ?", productID)
	if !includeDepleted {
		query = query.Where("remaining > 0")
	}

	var batches []ProductBatch
	if err := query.Order("created_at").Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve product batches: %w", err)
	}
	return batches, nil
}

// LockTx loads one batch under FOR UPDATE inside the caller's transaction
func (s *Service) LockTx(tx *gorm.DB, id uint) (*ProductBatch, error) {
	var b ProductBatch
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product batch %d: %w", id, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock product batch: %w", ledger.ClassifyLockError(err))
	}
	return &b, nil
}

// DeductTx subtracts qty from one locked batch and records the outbound
// movement. Used by disposal, which targets a specific batch instead of
// walking FIFO order.
func (s *Service) DeductTx(tx *gorm.DB, b *ProductBatch, qty decimal.Decimal, source ledger.Source, refID *uint) error {
	if !qty.IsPositive() {
		return fmt.Errorf("deduct of %s: %w", qty.String(), ledger.ErrInvalidMovement)
	}
	if b.Remaining.Cmp(qty) < 0 {
		return fmt.Errorf("batch %d: requested %s, remaining %s: %w",
			b.ID, qty.String(), b.Remaining.String(), ledger.ErrInsufficientStock)
	}

	newRemaining := b.Remaining.Sub(qty)
	if err := tx.Model(&ProductBatch{}).Where("id = ?", b.ID).Update("remaining", newRemaining).Error; err != nil {
		return fmt.Errorf("failed to deduct batch %d: %w", b.ID, err)
	}

	batchID := b.ID
	_, err := s.ledger.RecordTx(tx, &ledger.RecordRequest{
		Direction:      ledger.DirectionOut,
		Source:         source,
		Qty:            qty,
		ProductBatchID: &batchID,
		RefID:          refID,
	})
	return err
}

// lockAvailableBatches locks the FIFO candidate set. Oldest first; the
// lock order doubles as the deduction order.
func (s *Service) lockAvailableBatches(tx *gorm.DB, productID uint) ([]ProductBatch, error) {
	var batches []ProductBatch
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND remaining > 0", productID).
		Order("created_at").
		Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock batch set: %w", ledger.ClassifyLockError(err))
	}
	return batches, nil
}

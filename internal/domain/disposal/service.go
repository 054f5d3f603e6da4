// internal/domain/disposal/service.go
package disposal

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/feedmill-backend/internal/domain/batch"
	"github.com/your-org/feedmill-backend/internal/domain/formula"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/production"
	"gorm.io/gorm"
)

// Service handles batch write-offs: expired, damaged or lost product leaves
// stock through the same ledger as every other movement.
type Service struct {
	db       *gorm.DB
	batches  *batch.Service
	formulas *formula.Service
	logger   *logrus.Logger
}

// NewService creates a new disposal workflow service
func NewService(db *gorm.DB, batches *batch.Service, formulas *formula.Service, logger *logrus.Logger) *Service {
	return &Service{db: db, batches: batches, formulas: formulas, logger: logger}
}

// ExecuteRequest carries a write-off order against one batch
type ExecuteRequest struct {
	ProductBatchID uint            `json:"product_batch_id" binding:"required"`
	Qty            decimal.Decimal `json:"qty" binding:"required"`
	Reason         Reason          `json:"reason" binding:"required"`
	Action         string          `json:"action"`
	Notes          string          `json:"notes"`
	DisposedAt     *time.Time      `json:"disposed_at"`
}

// Execute writes off a quantity from one batch: the batch is locked, the
// loss valued, and the disposal record and outbound movement created in one
// transaction.
func (s *Service) Execute(req *ExecuteRequest) (*Disposal, error) {
	if !req.Qty.IsPositive() {
		return nil, fmt.Errorf("disposal of %s: %w", req.Qty.String(), ledger.ErrInvalidMovement)
	}
	if !req.Reason.IsValid() {
		return nil, fmt.Errorf("reason '%s': %w", req.Reason, ledger.ErrInvalidReason)
	}

	disposedAt := time.Now()
	if req.DisposedAt != nil {
		disposedAt = *req.DisposedAt
	}

	var d *Disposal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		b, err := s.batches.LockTx(tx, req.ProductBatchID)
		if err != nil {
			return err
		}

		loss, err := s.estimatedLoss(tx, b, req.Qty)
		if err != nil {
			return err
		}

		d = &Disposal{
			ProductBatchID: b.ID,
			ProductID:      b.ProductID,
			Qty:            req.Qty,
			Reason:         req.Reason,
			Action:         req.Action,
			EstimatedLoss:  loss,
			Notes:          req.Notes,
			DisposedAt:     disposedAt,
		}
		if err := tx.Create(d).Error; err != nil {
			return fmt.Errorf("failed to create disposal: %w", err)
		}

		return s.batches.DeductTx(tx, b, req.Qty, ledger.SourceDisposal, &d.ID)
	})
	if err != nil {
		return nil, ledger.ClassifyLockError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"batch_id": d.ProductBatchID,
		"reason":   string(d.Reason),
		"qty":      d.Qty.String(),
		"loss":     d.EstimatedLoss.String(),
	}).Info("Batch write-off recorded")

	return d, nil
}

// estimatedLoss values the written-off quantity at the material cost of the
// batch's production formula: qty × Σ(line qty × material unit price).
// Zero when the trace back to a formula breaks; an untraceable cost is not
// a reason to block the write-off.
func (s *Service) estimatedLoss(tx *gorm.DB, b *batch.ProductBatch, qty decimal.Decimal) (decimal.Decimal, error) {
	var run production.ProductionRun
	if err := tx.First(&run, b.ProductionRunID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to retrieve production run: %w", err)
	}

	unitCost, err := s.formulas.UnitCost(run.FormulaID)
	if err != nil {
		return decimal.Zero, err
	}
	return qty.Mul(unitCost).Round(2), nil
}

// Get retrieves one disposal by id
func (s *Service) Get(id uint) (*Disposal, error) {
	var d Disposal
	if err := s.db.First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("disposal %d: %w", id, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve disposal: %w", err)
	}
	return &d, nil
}

// GetAll lists disposals newest first, optionally filtered by reason
func (s *Service) GetAll(reason Reason) ([]Disposal, error) {
	if reason != "" && !reason.IsValid() {
		return nil, fmt.Errorf("reason '%s': %w", reason, ledger.ErrInvalidReason)
	}

	query := s.db.Order("disposed_at DESC")
	if reason != "" {
		query = query.Where("reason = ?", reason)
	}

	var disposals []Disposal
	if err := query.Find(&disposals).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve disposals: %w", err)
	}
	return disposals, nil
}

// ReasonBreakdown is one reason's share of a period summary
type ReasonBreakdown struct {
	Reason Reason          `json:"reason"`
	Qty    decimal.Decimal `json:"qty"`
	Loss   decimal.Decimal `json:"loss"`
	Count  int64           `json:"count"`
}

// Summary totals write-offs for a period
type Summary struct {
	Start     time.Time         `json:"start"`
	End       time.Time         `json:"end"`
	TotalQty  decimal.Decimal   `json:"total_qty"`
	TotalLoss decimal.Decimal   `json:"total_loss"`
	ByReason  []ReasonBreakdown `json:"by_reason"`
}

// Summarize aggregates disposals over a period, grouped by reason
func (s *Service) Summarize(start, end time.Time) (*Summary, error) {
	var rows []ReasonBreakdown
	err := s.db.Model(&Disposal{}).
		Where("disposed_at BETWEEN ? AND ?", start, end).
		Select("reason, SUM(qty) AS qty, SUM(estimated_loss) AS loss, COUNT(*) AS count").
		Group("reason").
		Order("loss DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize disposals: %w", err)
	}

	summary := &Summary{
		Start:     start,
		End:       end,
		TotalQty:  decimal.Zero,
		TotalLoss: decimal.Zero,
		ByReason:  rows,
	}
	for _, r := range rows {
		summary.TotalQty = summary.TotalQty.Add(r.Qty)
		summary.TotalLoss = summary.TotalLoss.Add(r.Loss)
	}
	return summary, nil
}

// GetExpiredBatches lists batches past their expiry date that still hold
// stock: the write-off worklist.
func (s *Service) GetExpiredBatches() ([]batch.ProductBatch, error) {
	var batches []batch.ProductBatch
	err := s.db.Where("expiry_date IS NOT NULL AND expiry_date < ? AND remaining > 0", time.Now()).
		Order("expiry_date").
		Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve expired batches: %w", err)
	}
	return batches, nil
}

// internal/domain/ledger/service.go
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service owns the append-only movement ledger. It never mutates balances
// itself: callers mutate their balance row and record the movement in the
// same transaction.
type Service struct {
	db *gorm.DB
}

// NewService creates a new ledger service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RecordRequest describes one ledger entry to append
type RecordRequest struct {
	Direction      Direction
	Source         Source
	Qty            decimal.Decimal
	MaterialID     *uint
	ProductBatchID *uint
	RefID          *uint
	Notes          string
}

// RecordTx appends one movement row inside the caller's transaction. The
// caller is expected to hold the lock on the balance row it is mutating.
func (s *Service) RecordTx(tx *gorm.DB, req *RecordRequest) (*StockMovement, error) {
	movement := &StockMovement{
		Direction:      req.Direction,
		Source:         req.Source,
		Qty:            req.Qty,
		MaterialID:     req.MaterialID,
		ProductBatchID: req.ProductBatchID,
		RefID:          req.RefID,
		Notes:          req.Notes,
	}

	if err := movement.Validate(); err != nil {
		return nil, err
	}

	if err := tx.Create(movement).Error; err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	return movement, nil
}

// QUERIES — pure reads, no side effects.

// GetByMaterial retrieves movements for a material, optionally filtered by
// direction, newest first.
func (s *Service) GetByMaterial(materialID uint, direction *Direction) ([]StockMovement, error) {
	query := s.db.Where("material_id = ?", materialID)
	if direction != nil {
		query = query.Where("direction = ?", *direction)
	}

	var movements []StockMovement
	if err := query.Order("created_at DESC").Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve material movements: %w", err)
	}
	return movements, nil
}

// GetByProduct retrieves movements for a finished product via the batch
// join, optionally filtered by direction, newest first.
func (s *Service) GetByProduct(productID uint, direction *Direction) ([]StockMovement, error) {
	query := s.db.
		Joins("JOIN product_batches ON product_batches.id = stock_movements.product_batch_id").
		Where("product_batches.product_id = ?", productID)
	if direction != nil {
		query = query.Where("stock_movements.direction = ?", *direction)
	}

	var movements []StockMovement
	if err := query.Order("stock_movements.created_at DESC").Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve product movements: %w", err)
	}
	return movements, nil
}

// GetByDateRange retrieves all movements between two instants, newest first
func (s *Service) GetByDateRange(from, to time.Time) ([]StockMovement, error) {
	var movements []StockMovement
	if err := s.db.
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at DESC").
		Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}
	return movements, nil
}

// GetToday retrieves movements recorded since local midnight
func (s *Service) GetToday() ([]StockMovement, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.GetByDateRange(midnight, now)
}

// GetLastNDays retrieves movements from the trailing window
func (s *Service) GetLastNDays(days int) ([]StockMovement, error) {
	now := time.Now()
	return s.GetByDateRange(now.AddDate(0, 0, -days), now)
}

// Summarize aggregates totals and a per-source breakdown for a date range
func (s *Service) Summarize(from, to time.Time) (*MovementSummary, error) {
	movements, err := s.GetByDateRange(from, to)
	if err != nil {
		return nil, err
	}

	summary := &MovementSummary{
		TotalIn:  decimal.Zero,
		TotalOut: decimal.Zero,
		BySource: make(map[Source]SourceBreakdown),
	}

	for _, m := range movements {
		summary.TotalMovements++
		if m.IsInbound() {
			summary.TotalIn = summary.TotalIn.Add(m.Qty)
		} else {
			summary.TotalOut = summary.TotalOut.Add(m.Qty)
		}

		breakdown := summary.BySource[m.Source]
		breakdown.Count++
		breakdown.TotalQty = breakdown.TotalQty.Add(m.Qty)
		summary.BySource[m.Source] = breakdown
	}

	return summary, nil
}

// OutboundTotalSince sums outbound quantities for a material since a cutoff.
// Used by the planner's daily-usage computation.
func (s *Service) OutboundTotalSince(materialID uint, since time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.Model(&StockMovement{}).
		Where("material_id = ? AND direction = ? AND created_at >= ?", materialID, DirectionOut, since).
		Select("SUM(qty)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum outbound movements: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// OutboundCountSince counts outbound movements for a material since a cutoff
func (s *Service) OutboundCountSince(materialID uint, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&StockMovement{}).
		Where("material_id = ? AND direction = ? AND created_at >= ?", materialID, DirectionOut, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count outbound movements: %w", err)
	}
	return count, nil
}

// DailyOutboundTotals returns per-calendar-day outbound sums for the
// trailing window, keyed by day string (YYYY-MM-DD). Days with no outbound
// movement are absent.
func (s *Service) DailyOutboundTotals(materialID uint, days int) (map[string]decimal.Decimal, error) {
	type row struct {
		Day   time.Time
		Total decimal.Decimal
	}

	since := time.Now().AddDate(0, 0, -days)
	var rows []row
	err := s.db.Model(&StockMovement{}).
		Where("material_id = ? AND direction = ? AND created_at >= ?", materialID, DirectionOut, since).
		Select("DATE_TRUNC('day', created_at) AS day, SUM(qty) AS total").
		Group("DATE_TRUNC('day', created_at)").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily usage: %w", err)
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		totals[r.Day.Format("2006-01-02")] = r.Total
	}
	return totals, nil
}

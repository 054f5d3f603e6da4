// internal/domain/production/service.go
package production

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/feedmill-backend/internal/domain/batch"
	"github.com/your-org/feedmill-backend/internal/domain/formula"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/material"
	"github.com/your-org/feedmill-backend/internal/domain/product"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service orchestrates production runs: material consumption, run status
// and batch creation move together in one transaction or not at all.
type Service struct {
	db        *gorm.DB
	materials *material.Service
	formulas  *formula.Service
	batches   *batch.Service
	logger    *logrus.Logger
}

// NewService creates a new production workflow service
func NewService(db *gorm.DB, materials *material.Service, formulas *formula.Service, batches *batch.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:        db,
		materials: materials,
		formulas:  formulas,
		batches:   batches,
		logger:    logger,
	}
}

// ExecuteRequest carries a production order
type ExecuteRequest struct {
	FormulaID      uint            `json:"formula_id" binding:"required"`
	Qty            decimal.Decimal `json:"qty" binding:"required"`
	ProductionDate *time.Time      `json:"production_date"`
	Notes          string          `json:"notes"`
}

// Preview is the advisory feasibility report for a production order
type Preview struct {
	FormulaID   uint                   `json:"formula_id"`
	FormulaName string                 `json:"formula_name"`
	ProductID   uint                   `json:"product_id"`
	Qty         decimal.Decimal        `json:"qty"`
	Needs       []formula.MaterialNeed `json:"needs"`
	TotalCost   decimal.Decimal        `json:"total_cost"`
	CanProduce  bool                   `json:"can_produce"`
}

// CheckMaterials scales the formula to the requested quantity and reports
// sufficiency against current balances. Advisory only; Execute re-checks
// under row locks.
func (s *Service) CheckMaterials(formulaID uint, qty decimal.Decimal) (*Preview, error) {
	if !qty.IsPositive() {
		return nil, fmt.Errorf("production of %s: %w", qty.String(), ledger.ErrInvalidMovement)
	}

	f, err := s.formulas.Get(formulaID)
	if err != nil {
		return nil, err
	}

	needs, totalCost := s.formulas.MaterialNeeds(f, qty)
	canProduce := f.IsActive
	for _, n := range needs {
		if !n.IsSufficient {
			canProduce = false
		}
	}

	return &Preview{
		FormulaID:   f.ID,
		FormulaName: f.Name,
		ProductID:   f.ProductID,
		Qty:         qty,
		Needs:       needs,
		TotalCost:   totalCost.Round(2),
		CanProduce:  canProduce,
	}, nil
}

// Execute runs a production order end to end: it creates a pending run,
// consumes every formula line under row locks, completes the run and
// creates the yield batch, all in one transaction. A shortage on any line
// rejects the whole order naming every short material, with zero side
// effects.
func (s *Service) Execute(req *ExecuteRequest) (*ProductionRun, error) {
	if !req.Qty.IsPositive() {
		return nil, fmt.Errorf("production of %s: %w", req.Qty.String(), ledger.ErrInvalidMovement)
	}

	f, err := s.formulas.Get(req.FormulaID)
	if err != nil {
		return nil, err
	}
	if !f.IsActive {
		return nil, fmt.Errorf("formula '%s': %w", f.Name, ledger.ErrFormulaInactive)
	}
	if len(f.Details) == 0 {
		return nil, fmt.Errorf("formula '%s' has no detail lines: %w", f.Name, ledger.ErrInvalidMovement)
	}

	var p product.Product
	if err := s.db.First(&p, f.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", f.ProductID, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	productionDate := time.Now()
	if req.ProductionDate != nil {
		productionDate = *req.ProductionDate
	}

	run := &ProductionRun{
		Code:           GenerateRunCode(productionDate),
		ProductID:      p.ID,
		FormulaID:      f.ID,
		Qty:            req.Qty,
		Unit:           p.Unit,
		ProductionDate: productionDate,
		Status:         StatusPending,
		Notes:          req.Notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("failed to create production run: %w", err)
		}

		// Lock every formula line's material in id order before reading any
		// balance, so concurrent runs over overlapping formulas serialize
		// instead of deadlocking.
		details := make([]formula.FormulaDetail, len(f.Details))
		copy(details, f.Details)
		sort.Slice(details, func(i, j int) bool {
			return details[i].MaterialID < details[j].MaterialID
		})

		type consumption struct {
			materialID uint
			need       decimal.Decimal
		}
		plan := make([]consumption, 0, len(details))
		shortages := make([]ledger.MaterialShortage, 0)
		materialCost := decimal.Zero

		for _, detail := range details {
			m, err := s.materials.LockTx(tx, detail.MaterialID)
			if err != nil {
				return err
			}

			need := detail.Qty.Mul(req.Qty)
			if m.Stock.Cmp(need) < 0 {
				shortages = append(shortages, ledger.MaterialShortage{
					MaterialID:   m.ID,
					MaterialName: m.Name,
					Needed:       need.String(),
					Available:    m.Stock.String(),
					Shortage:     need.Sub(m.Stock).String(),
				})
				continue
			}

			plan = append(plan, consumption{materialID: m.ID, need: need})
			materialCost = materialCost.Add(need.Mul(m.UnitPrice))
		}

		if len(shortages) > 0 {
			return &ledger.InsufficientMaterialsError{Shortages: shortages}
		}

		for _, c := range plan {
			note := fmt.Sprintf("production run %s", run.Code)
			if err := s.materials.DecreaseTx(tx, c.materialID, c.need, ledger.SourceProduction, &run.ID, note); err != nil {
				return err
			}
		}

		if !run.CanTransitionTo(StatusCompleted) {
			return fmt.Errorf("run %s is %s: %w", run.Code, run.Status, ledger.ErrInvalidStateTransition)
		}
		run.Status = StatusCompleted
		run.MaterialCost = materialCost.Round(2)
		err := tx.Model(&ProductionRun{}).Where("id = ?", run.ID).
			Updates(map[string]interface{}{"status": run.Status, "material_cost": run.MaterialCost}).Error
		if err != nil {
			return fmt.Errorf("failed to complete production run: %w", err)
		}

		expiry := p.BatchExpiry(productionDate)
		if _, err := s.batches.CreateFromProductionTx(tx, p.ID, run.ID, req.Qty, &expiry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, ledger.ClassifyLockError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"run_code":   run.Code,
		"product_id": run.ProductID,
		"qty":        run.Qty.String(),
	}).Info("Production run completed")

	return run, nil
}

// Cancel voids a pending run and returns its consumed materials to stock,
// one inbound movement per formula line. Completed and cancelled runs are
// immutable.
func (s *Service) Cancel(runID uint) (*ProductionRun, error) {
	var run ProductionRun

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&run, runID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("production run %d: %w", runID, ledger.ErrNotFound)
			}
			return fmt.Errorf("failed to lock production run: %w", err)
		}

		if !run.CanBeCancelled() {
			return fmt.Errorf("run %s is %s: %w", run.Code, run.Status, ledger.ErrInvalidStateTransition)
		}

		f, err := s.formulas.Get(run.FormulaID)
		if err != nil {
			return err
		}

		for _, detail := range f.Details {
			returned := detail.Qty.Mul(run.Qty)
			note := fmt.Sprintf("cancelled production run %s", run.Code)
			if err := s.materials.IncreaseTx(tx, detail.MaterialID, returned, ledger.SourceProductionCancelled, &run.ID, note); err != nil {
				return err
			}
		}

		run.Status = StatusCancelled
		if err := tx.Model(&ProductionRun{}).Where("id = ?", run.ID).Update("status", run.Status).Error; err != nil {
			return fmt.Errorf("failed to cancel production run: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, ledger.ClassifyLockError(err)
	}

	s.logger.WithFields(logrus.Fields{"run_code": run.Code}).Info("Production run cancelled")
	return &run, nil
}

// Get retrieves one production run by id
func (s *Service) Get(id uint) (*ProductionRun, error) {
	var run ProductionRun
	if err := s.db.First(&run, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("production run %d: %w", id, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve production run: %w", err)
	}
	return &run, nil
}

// GetAll lists production runs newest first, optionally filtered by status
func (s *Service) GetAll(status Status) ([]ProductionRun, error) {
	query := s.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var runs []ProductionRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve production runs: %w", err)
	}
	return runs, nil
}

// GetByDateRange lists runs whose production date falls inside the range
func (s *Service) GetByDateRange(start, end time.Time) ([]ProductionRun, error) {
	var runs []ProductionRun
	err := s.db.Where("production_date BETWEEN ? AND ?", start, end).
		Order("production_date DESC").
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve production runs: %w", err)
	}
	return runs, nil
}

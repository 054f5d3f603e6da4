// internal/domain/production/entity.go
package production

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status tracks a production run through its lifecycle
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// allowedTransitions is the closed state machine: pending may complete or
// cancel, terminal states never move again.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ProductionRun is one execution of a formula: it consumes materials on the
// material ledger and yields exactly one product batch.
type ProductionRun struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Code           string          `gorm:"uniqueIndex;not null;size:50" json:"code"`
	ProductID      uint            `gorm:"not null;index" json:"product_id"`
	FormulaID      uint            `gorm:"not null;index" json:"formula_id"`
	Qty            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"qty"`
	Unit           string          `gorm:"not null;size:20;default:'kg'" json:"unit"`
	ProductionDate time.Time       `gorm:"not null;index" json:"production_date"`
	Status         Status          `gorm:"not null;size:20;index;default:'pending'" json:"status"`
	MaterialCost   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"material_cost"`
	Notes          string          `gorm:"size:255" json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName overrides
func (ProductionRun) TableName() string { return "production_runs" }

// CanTransitionTo reports whether the status change is allowed
func (r *ProductionRun) CanTransitionTo(target Status) bool {
	for _, allowed := range allowedTransitions[r.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CanBeCancelled reports whether the run is still pending
func (r *ProductionRun) CanBeCancelled() bool {
	return r.CanTransitionTo(StatusCancelled)
}

// GenerateRunCode builds a unique production run code: PRD-YYYYMMDD-XXXXXXXX
func GenerateRunCode(productionDate time.Time) string {
	return fmt.Sprintf("PRD-%s-%s", productionDate.Format("20060102"), uuid.New().String()[:8])
}

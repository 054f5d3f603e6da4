// internal/interfaces/http/handlers/material.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/audit"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/material"
	"github.com/your-org/feedmill-backend/internal/domain/planning"
)

// MaterialHandler handles raw-material catalog and stock endpoints
type MaterialHandler struct {
	materials *material.Service
	movements *ledger.Service
	planner   *planning.Service
	auditor   *audit.Service
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(materials *material.Service, movements *ledger.Service, planner *planning.Service, auditor *audit.Service) *MaterialHandler {
	return &MaterialHandler{
		materials: materials,
		movements: movements,
		planner:   planner,
		auditor:   auditor,
	}
}

// StockAdjustmentRequest carries a manual stock change
type StockAdjustmentRequest struct {
	Qty    decimal.Decimal `json:"qty" binding:"required"`
	Source string          `json:"source"`
	Notes  string          `json:"notes"`
}

// CreateMaterial handles POST /materials
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var req material.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	m, err := h.materials.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "material.create", m.ID, fmt.Sprintf("created material '%s'", m.Name))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Material created successfully",
		"data":    m,
	})
}

// GetMaterials handles GET /materials
func (h *MaterialHandler) GetMaterials(c *gin.Context) {
	materials, err := h.materials.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Materials retrieved successfully",
		"data":    materials,
	})
}

// GetMaterial handles GET /materials/:id
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	m, err := h.materials.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Material retrieved successfully",
		"data":    m,
	})
}

// DeleteMaterial handles DELETE /materials/:id
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.materials.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "material.delete", id, "deleted material")

	c.JSON(http.StatusOK, gin.H{
		"message": "Material deleted successfully",
	})
}

// IncreaseStock handles POST /materials/:id/increase
func (h *MaterialHandler) IncreaseStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	source, err := inboundSource(req.Source)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.materials.Increase(id, req.Qty, source, nil, req.Notes); err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "material.increase", id,
		fmt.Sprintf("increased stock by %s (%s)", req.Qty.String(), source))

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock increased successfully",
	})
}

// DecreaseStock handles POST /materials/:id/decrease
func (h *MaterialHandler) DecreaseStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	source, err := outboundSource(req.Source)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.materials.Decrease(id, req.Qty, source, nil, req.Notes); err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "material.decrease", id,
		fmt.Sprintf("decreased stock by %s (%s)", req.Qty.String(), source))

	// The balance dropped; re-evaluate the reorder point in the background.
	h.planner.CheckAndNotifyAsync(id)

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock decreased successfully",
	})
}

// GetMaterialMovements handles GET /materials/:id/movements
func (h *MaterialHandler) GetMaterialMovements(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	direction, ok := parseDirectionQuery(c)
	if !ok {
		return
	}

	movements, err := h.movements.GetByMaterial(id, direction)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Movements retrieved successfully",
		"data":    movements,
	})
}

// GetMaterialROP handles GET /materials/:id/rop
func (h *MaterialHandler) GetMaterialROP(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	details, err := h.planner.GetROPDetails(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reorder point retrieved successfully",
		"data":    details,
	})
}

func (h *MaterialHandler) logAction(c *gin.Context, action string, entityID uint, detail string) {
	h.auditor.Log(audit.Entry{
		Actor:      c.GetHeader("X-Actor"),
		Action:     action,
		EntityType: "material",
		EntityID:   &entityID,
		Detail:     detail,
		RequestID:  c.GetString("request_id"),
	})
}

// inboundSource maps a manual increase source, defaulting to purchase
func inboundSource(s string) (ledger.Source, error) {
	switch s {
	case "", string(ledger.SourcePurchase):
		return ledger.SourcePurchase, nil
	case string(ledger.SourceAdjustment):
		return ledger.SourceAdjustment, nil
	default:
		return "", fmt.Errorf("source '%s' not allowed for manual increase: %w", s, ledger.ErrInvalidMovement)
	}
}

// outboundSource maps a manual decrease source, defaulting to internal use
func outboundSource(s string) (ledger.Source, error) {
	switch s {
	case "", string(ledger.SourceInternalUse):
		return ledger.SourceInternalUse, nil
	case string(ledger.SourceAdjustment):
		return ledger.SourceAdjustment, nil
	default:
		return "", fmt.Errorf("source '%s' not allowed for manual decrease: %w", s, ledger.ErrInvalidMovement)
	}
}

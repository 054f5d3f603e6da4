// internal/interfaces/http/handlers/production.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/audit"
	"github.com/your-org/feedmill-backend/internal/domain/production"
)

// ProductionHandler handles production workflow endpoints
type ProductionHandler struct {
	productions *production.Service
	auditor     *audit.Service
}

// NewProductionHandler creates a new production handler
func NewProductionHandler(productions *production.Service, auditor *audit.Service) *ProductionHandler {
	return &ProductionHandler{productions: productions, auditor: auditor}
}

// CheckMaterialsRequest carries a feasibility query
type CheckMaterialsRequest struct {
	FormulaID uint            `json:"formula_id" binding:"required"`
	Qty       decimal.Decimal `json:"qty" binding:"required"`
}

// CheckMaterials handles POST /production/check
func (h *ProductionHandler) CheckMaterials(c *gin.Context) {
	var req CheckMaterialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	preview, err := h.productions.CheckMaterials(req.FormulaID, req.Qty)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Material check completed successfully",
		"data":    preview,
	})
}

// ExecuteProduction handles POST /production
func (h *ProductionHandler) ExecuteProduction(c *gin.Context) {
	var req production.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	run, err := h.productions.Execute(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "production.execute", run.ID,
		fmt.Sprintf("executed run %s: %s %s of product %d", run.Code, run.Qty.String(), run.Unit, run.ProductID))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Production run completed successfully",
		"data":    run,
	})
}

// CancelProduction handles POST /production/:id/cancel
func (h *ProductionHandler) CancelProduction(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	run, err := h.productions.Cancel(id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(c, "production.cancel", run.ID,
		fmt.Sprintf("cancelled run %s, materials returned", run.Code))

	c.JSON(http.StatusOK, gin.H{
		"message": "Production run cancelled successfully",
		"data":    run,
	})
}

// GetProductionRun handles GET /production/:id
func (h *ProductionHandler) GetProductionRun(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	run, err := h.productions.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Production run retrieved successfully",
		"data":    run,
	})
}

// GetProductionRuns handles GET /production
func (h *ProductionHandler) GetProductionRuns(c *gin.Context) {
	status := production.Status(c.Query("status"))
	switch status {
	case "", production.StatusPending, production.StatusCompleted, production.StatusCancelled:
	default:
		respondBadRequest(c, "status must be pending, completed or cancelled")
		return
	}

	runs, err := h.productions.GetAll(status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Production runs retrieved successfully",
		"data":    runs,
	})
}

func (h *ProductionHandler) logAction(c *gin.Context, action string, entityID uint, detail string) {
	h.auditor.Log(audit.Entry{
		Actor:      c.GetHeader("X-Actor"),
		Action:     action,
		EntityType: "production_run",
		EntityID:   &entityID,
		Detail:     detail,
		RequestID:  c.GetString("request_id"),
	})
}

// internal/interfaces/http/handlers/planning.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/feedmill-backend/internal/domain/planning"
)

// PlanningHandler handles reorder planning endpoints
type PlanningHandler struct {
	planner *planning.Service
}

// NewPlanningHandler creates a new planning handler
func NewPlanningHandler(planner *planning.Service) *PlanningHandler {
	return &PlanningHandler{planner: planner}
}

// GetROPDetails handles GET /planning/materials/:id/rop
func (h *PlanningHandler) GetROPDetails(c *gin.Context) {
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
		"message": "Reorder point details retrieved successfully",
		"data":    details,
	})
}

// GetSafetyStockRecommendation handles GET /planning/materials/:id/safety-stock
func (h *PlanningHandler) GetSafetyStockRecommendation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	serviceLevel := planning.DefaultServiceLevel
	if raw := c.Query("service_level"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || parsed >= 1 {
			respondBadRequest(c, "service_level must be a fraction between 0 and 1")
			return
		}
		serviceLevel = parsed
	}

	rec, err := h.planner.AdaptiveSafetyStock(id, serviceLevel)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Safety stock recommendation retrieved successfully",
		"data":    rec,
	})
}

// GetReorderAlerts handles GET /planning/alerts
func (h *PlanningHandler) GetReorderAlerts(c *gin.Context) {
	alerts, err := h.planner.GetReorderAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reorder alerts retrieved successfully",
		"data":    alerts,
	})
}

// GetAlertSummary handles GET /planning/alerts/summary
func (h *PlanningHandler) GetAlertSummary(c *gin.Context) {
	summary, err := h.planner.GetAlertSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Alert summary retrieved successfully",
		"data":    summary,
	})
}

// GetAlertsBySupplier handles GET /planning/alerts/by-supplier
func (h *PlanningHandler) GetAlertsBySupplier(c *gin.Context) {
	grouped, err := h.planner.GetAlertsBySupplier(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier alerts retrieved successfully",
		"data":    grouped,
	})
}

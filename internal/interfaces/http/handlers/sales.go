// internal/interfaces/http/handlers/sales.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/feedmill-backend/internal/domain/audit"
	"github.com/your-org/feedmill-backend/internal/domain/sales"
)

// SalesHandler handles sales workflow endpoints
type SalesHandler struct {
	sales   *sales.Service
	auditor *audit.Service
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(salesSvc *sales.Service, auditor *audit.Service) *SalesHandler {
	return &SalesHandler{sales: salesSvc, auditor: auditor}
}

// CreateSale handles POST /sales
func (h *SalesHandler) CreateSale(c *gin.Context) {
	var req sales.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	sale, err := h.sales.Execute(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditor.Log(audit.Entry{
		Actor:      c.GetHeader("X-Actor"),
		Action:     "sale.create",
		EntityType: "sale",
		EntityID:   &sale.ID,
		Detail:     fmt.Sprintf("sold %s of product %d for %s", sale.Qty.String(), sale.ProductID, sale.Total.String()),
		RequestID:  c.GetString("request_id"),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sale recorded successfully",
		"data":    sale,
	})
}

// GetSale handles GET /sales/:id
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.sales.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sale retrieved successfully",
		"data":    sale,
	})
}

// GetSales handles GET /sales
func (h *SalesHandler) GetSales(c *gin.Context) {
	if c.Query("start") == "" && c.Query("end") == "" && c.Query("days") == "" {
		all, err := h.sales.GetAll()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Sales retrieved successfully",
			"data":    all,
		})
		return
	}

	start, end, ok := parseDateRange(c, 30)
	if !ok {
		return
	}

	ranged, err := h.sales.GetByDateRange(start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales retrieved successfully",
		"data":    ranged,
	})
}

// GetSalesSummary handles GET /sales/summary
func (h *SalesHandler) GetSalesSummary(c *gin.Context) {
	start, end, ok := parseDateRange(c, 30)
	if !ok {
		return
	}

	summary, err := h.sales.Summarize(start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales summary retrieved successfully",
		"data":    summary,
	})
}

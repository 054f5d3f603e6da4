// internal/interfaces/http/handlers/disposal.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/feedmill-backend/internal/domain/audit"
	"github.com/your-org/feedmill-backend/internal/domain/disposal"
)

// DisposalHandler handles batch write-off endpoints
type DisposalHandler struct {
	disposals *disposal.Service
	auditor   *audit.Service
}

// NewDisposalHandler creates a new disposal handler
func NewDisposalHandler(disposals *disposal.Service, auditor *audit.Service) *DisposalHandler {
	return &DisposalHandler{disposals: disposals, auditor: auditor}
}

// CreateDisposal handles POST /disposals
func (h *DisposalHandler) CreateDisposal(c *gin.Context) {
	var req disposal.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	d, err := h.disposals.Execute(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditor.Log(audit.Entry{
		Actor:      c.GetHeader("X-Actor"),
		Action:     "disposal.create",
		EntityType: "disposal",
		EntityID:   &d.ID,
		Detail:     fmt.Sprintf("wrote off %s from batch %d (%s)", d.Qty.String(), d.ProductBatchID, d.Reason),
		RequestID:  c.GetString("request_id"),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Disposal recorded successfully",
		"data":    d,
	})
}

// GetDisposal handles GET /disposals/:id
func (h *DisposalHandler) GetDisposal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	d, err := h.disposals.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Disposal retrieved successfully",
		"data":    d,
	})
}

// GetDisposals handles GET /disposals
func (h *DisposalHandler) GetDisposals(c *gin.Context) {
	reason := disposal.Reason(c.Query("reason"))
	disposals, err := h.disposals.GetAll(reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Disposals retrieved successfully",
		"data":    disposals,
	})
}

// GetDisposalSummary handles GET /disposals/summary
func (h *DisposalHandler) GetDisposalSummary(c *gin.Context) {
	start, end, ok := parseDateRange(c, 30)
	if !ok {
		return
	}

	summary, err := h.disposals.Summarize(start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Disposal summary retrieved successfully",
		"data":    summary,
	})
}

// GetExpiredBatches handles GET /disposals/expired-batches
func (h *DisposalHandler) GetExpiredBatches(c *gin.Context) {
	batches, err := h.disposals.GetExpiredBatches()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expired batches retrieved successfully",
		"data":    batches,
	})
}

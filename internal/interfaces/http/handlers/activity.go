// internal/interfaces/http/handlers/activity.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/feedmill-backend/internal/domain/audit"
)

// ActivityHandler handles activity log endpoints
type ActivityHandler struct {
	auditor *audit.Service
}

// NewActivityHandler creates a new activity log handler
func NewActivityHandler(auditor *audit.Service) *ActivityHandler {
	return &ActivityHandler{auditor: auditor}
}

// GetRecentActivity handles GET /activity
func (h *ActivityHandler) GetRecentActivity(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondBadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	logs, err := h.auditor.GetRecent(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Activity retrieved successfully",
		"data":    logs,
	})
}

// GetEntityActivity handles GET /activity/:type/:id
func (h *ActivityHandler) GetEntityActivity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	logs, err := h.auditor.GetByEntity(c.Param("type"), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Activity retrieved successfully",
		"data":    logs,
	})
}

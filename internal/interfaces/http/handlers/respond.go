// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
)

// respondError maps the domain error taxonomy to HTTP status codes. The
// caller never inspects message text; classification runs on sentinels.
func respondError(c *gin.Context, err error) {
	var insufficientMaterials *ledger.InsufficientMaterialsError
	if errors.As(err, &insufficientMaterials) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "insufficient materials",
			"shortages": insufficientMaterials.Shortages,
		})
		return
	}

	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrBusy):
		// The aborted operation applied nothing; the client may retry it
		// unchanged.
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrFormulaInactive),
		errors.Is(err, ledger.ErrInvalidReason):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidMovement):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondBadRequest reports a malformed request body or parameter
func respondBadRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": detail,
	})
}

// parseDirectionQuery reads an optional ?direction=in|out query parameter
func parseDirectionQuery(c *gin.Context) (*ledger.Direction, bool) {
	raw := c.Query("direction")
	if raw == "" {
		return nil, true
	}

	direction := ledger.Direction(raw)
	if direction != ledger.DirectionIn && direction != ledger.DirectionOut {
		respondBadRequest(c, "direction must be 'in' or 'out'")
		return nil, false
	}
	return &direction, true
}

// parseIDParam reads a positive integer path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

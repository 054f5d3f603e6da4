// internal/interfaces/http/handlers/stock.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
)

// StockHandler handles movement ledger reporting endpoints
type StockHandler struct {
	movements *ledger.Service
}

// NewStockHandler creates a new stock reporting handler
func NewStockHandler(movements *ledger.Service) *StockHandler {
	return &StockHandler{movements: movements}
}

// GetMovements handles GET /movements. Without parameters it returns the
// trailing 7 days; ?days=N widens the window, ?start/?end select an exact
// range.
func (h *StockHandler) GetMovements(c *gin.Context) {
	start, end, ok := parseDateRange(c, 7)
	if !ok {
		return
	}

	movements, err := h.movements.GetByDateRange(start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Movements retrieved successfully",
		"data":    movements,
	})
}

// GetTodayMovements handles GET /movements/today
func (h *StockHandler) GetTodayMovements(c *gin.Context) {
	movements, err := h.movements.GetToday()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Movements retrieved successfully",
		"data":    movements,
	})
}

// GetMovementSummary handles GET /movements/summary
func (h *StockHandler) GetMovementSummary(c *gin.Context) {
	start, end, ok := parseDateRange(c, 30)
	if !ok {
		return
	}

	summary, err := h.movements.Summarize(start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Movement summary retrieved successfully",
		"data":    summary,
	})
}

// parseDateRange reads ?start/?end (RFC 3339 dates) or ?days=N, falling
// back to the trailing defaultDays window.
func parseDateRange(c *gin.Context, defaultDays int) (time.Time, time.Time, bool) {
	now := time.Now()

	startRaw, endRaw := c.Query("start"), c.Query("end")
	if startRaw != "" || endRaw != "" {
		start, err := time.Parse("2006-01-02", startRaw)
		if err != nil {
			respondBadRequest(c, "start must be a YYYY-MM-DD date")
			return time.Time{}, time.Time{}, false
		}
		end := now
		if endRaw != "" {
			parsed, err := time.Parse("2006-01-02", endRaw)
			if err != nil {
				respondBadRequest(c, "end must be a YYYY-MM-DD date")
				return time.Time{}, time.Time{}, false
			}
			// Inclusive end date
			end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		if end.Before(start) {
			respondBadRequest(c, "end must not precede start")
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}

	days := defaultDays
	if daysRaw := c.Query("days"); daysRaw != "" {
		parsed, err := strconv.Atoi(daysRaw)
		if err != nil || parsed <= 0 {
			respondBadRequest(c, "days must be a positive integer")
			return time.Time{}, time.Time{}, false
		}
		days = parsed
	}
	return now.AddDate(0, 0, -days), now, true
}

// internal/interfaces/http/handlers/product.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/audit"
	"github.com/your-org/feedmill-backend/internal/domain/batch"
	"github.com/your-org/feedmill-backend/internal/domain/formula"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/product"
)

// ProductHandler handles finished-product catalog and batch endpoints
type ProductHandler struct {
	products  *product.Service
	batches   *batch.Service
	formulas  *formula.Service
	movements *ledger.Service
	auditor   *audit.Service
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service, batches *batch.Service, formulas *formula.Service, movements *ledger.Service, auditor *audit.Service) *ProductHandler {
	return &ProductHandler{
		products:  products,
		batches:   batches,
		formulas:  formulas,
		movements: movements,
		auditor:   auditor,
	}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req product.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	p, err := h.products.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    p,
	})
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.products.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    products,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.products.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    p,
	})
}

// GetProductStock handles GET /products/:id/stock
func (h *ProductHandler) GetProductStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.products.Get(id); err != nil {
		respondError(c, err)
		return
	}

	total, err := h.batches.TotalAvailable(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product stock retrieved successfully",
		"data": gin.H{
			"product_id":      id,
			"total_available": total,
		},
	})
}

// GetProductBatches handles GET /products/:id/batches
func (h *ProductHandler) GetProductBatches(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	includeDepleted := c.Query("include_depleted") == "true"
	batches, err := h.batches.GetByProduct(id, includeDepleted)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product batches retrieved successfully",
		"data":    batches,
	})
}

// GetProductMovements handles GET /products/:id/movements
func (h *ProductHandler) GetProductMovements(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	direction, ok := parseDirectionQuery(c)
	if !ok {
		return
	}

	movements, err := h.movements.GetByProduct(id, direction)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Movements retrieved successfully",
		"data":    movements,
	})
}

// ConsumeStockRequest carries an internal-use draw against product stock
type ConsumeStockRequest struct {
	Qty   decimal.Decimal `json:"qty" binding:"required"`
	Notes string          `json:"notes"`
}

// ConsumeStock handles POST /products/:id/consume. Internal usage draws
// the quantity from the product's batches in FIFO order, same as a sale
// but without a revenue record.
func (h *ProductHandler) ConsumeStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ConsumeStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if _, err := h.products.Get(id); err != nil {
		respondError(c, err)
		return
	}

	if err := h.batches.ConsumeFIFO(id, req.Qty, ledger.SourceInternalUse, nil); err != nil {
		respondError(c, err)
		return
	}

	h.auditor.Log(audit.Entry{
		Actor:      c.GetHeader("X-Actor"),
		Action:     "product.consume",
		EntityType: "product",
		EntityID:   &id,
		Detail:     fmt.Sprintf("internal use of %s: %s", req.Qty.String(), req.Notes),
		RequestID:  c.GetString("request_id"),
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product stock consumed successfully",
	})
}

// GetActiveFormula handles GET /products/:id/formula
func (h *ProductHandler) GetActiveFormula(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	f, err := h.formulas.GetActiveForProduct(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Active formula retrieved successfully",
		"data":    f,
	})
}

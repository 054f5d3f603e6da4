// internal/domain/sales/service.go
package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/feedmill-backend/internal/domain/batch"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Service handles product sales. Each sale drains the product's batches in
// FIFO order together with the sale record, in one transaction.
type Service struct {
	db      *gorm.DB
	batches *batch.Service
	logger  *logrus.Logger
}

// NewService creates a new sales workflow service
func NewService(db *gorm.DB, batches *batch.Service, logger *logrus.Logger) *Service {
	return &Service{db: db, batches: batches, logger: logger}
}

// ExecuteRequest carries a sale order. UnitPrice overrides the product's
// list price when set.
type ExecuteRequest struct {
	ProductID     uint             `json:"product_id" binding:"required"`
	Qty           decimal.Decimal  `json:"qty" binding:"required"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	SaleDate      *time.Time       `json:"sale_date"`
	Customer      string           `json:"customer"`
	PaymentMethod string           `json:"payment_method"`
	Notes         string           `json:"notes"`
}

// Execute records a sale and consumes its quantity from the product's
// batches oldest-first. A shortfall across all batches rejects the sale
// with zero side effects.
func (s *Service) Execute(req *ExecuteRequest) (*Sale, error) {
	if !req.Qty.IsPositive() {
		return nil, fmt.Errorf("sale of %s: %w", req.Qty.String(), ledger.ErrInvalidMovement)
	}

	var p product.Product
	if err := s.db.First(&p, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", req.ProductID, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	unitPrice := p.SellPrice
	if req.UnitPrice != nil {
		unitPrice = *req.UnitPrice
	}
	saleDate := time.Now()
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	sale := &Sale{
		Code:          GenerateSaleCode(saleDate),
		ProductID:     p.ID,
		Qty:           req.Qty,
		UnitPrice:     unitPrice,
		Total:         req.Qty.Mul(unitPrice).Round(2),
		SaleDate:      saleDate,
		Customer:      req.Customer,
		PaymentMethod: paymentMethod,
		Notes:         req.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}
		return s.batches.ConsumeFIFOTx(tx, p.ID, req.Qty, ledger.SourceSale, &sale.ID)
	})
	if err != nil {
		return nil, ledger.ClassifyLockError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"sale_code":  sale.Code,
		"product_id": sale.ProductID,
		"qty":        sale.Qty.String(),
		"total":      sale.Total.String(),
	}).Info("Sale recorded")

	return sale, nil
}

// Get retrieves one sale by id
func (s *Service) Get(id uint) (*Sale, error) {
	var sale Sale
	if err := s.db.First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sale %d: %w", id, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve sale: %w", err)
	}
	return &sale, nil
}

// GetAll lists sales newest first
func (s *Service) GetAll() ([]Sale, error) {
	var sales []Sale
	if err := s.db.Order("sale_date DESC").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve sales: %w", err)
	}
	return sales, nil
}

// GetByDateRange lists sales whose sale date falls inside the range
func (s *Service) GetByDateRange(start, end time.Time) ([]Sale, error) {
	var sales []Sale
	err := s.db.Where("sale_date BETWEEN ? AND ?", start, end).
		Order("sale_date DESC").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sales: %w", err)
	}
	return sales, nil
}

// ProductRevenue is one product's line in a period summary
type ProductRevenue struct {
	ProductID uint            `json:"product_id"`
	Qty       decimal.Decimal `json:"qty"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// RevenueSummary totals sales for a period, grouped by product
type RevenueSummary struct {
	Start        time.Time        `json:"start"`
	End          time.Time        `json:"end"`
	TotalRevenue decimal.Decimal  `json:"total_revenue"`
	TotalQty     decimal.Decimal  `json:"total_qty"`
	ByProduct    []ProductRevenue `json:"by_product"`
}

// Summarize aggregates sales over a period
func (s *Service) Summarize(start, end time.Time) (*RevenueSummary, error) {
	var rows []ProductRevenue
	err := s.db.Model(&Sale{}).
		Where("sale_date BETWEEN ? AND ?", start, end).
		Select("product_id, SUM(qty) AS qty, SUM(total) AS revenue").
		Group("product_id").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sales: %w", err)
	}

	summary := &RevenueSummary{
		Start:        start,
		End:          end,
		TotalRevenue: decimal.Zero,
		TotalQty:     decimal.Zero,
		ByProduct:    rows,
	}
	for _, r := range rows {
		summary.TotalRevenue = summary.TotalRevenue.Add(r.Revenue)
		summary.TotalQty = summary.TotalQty.Add(r.Qty)
	}
	return summary, nil
}

// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// Service handles the finished-product catalog
type Service struct {
	db *gorm.DB
}

// NewService creates a new product catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateProductRequest represents catalog creation data
type CreateProductRequest struct {
	Category  Category        `json:"category" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Unit      string          `json:"unit"`
	SellPrice decimal.Decimal `json:"sell_price"`
}

// Create adds a product to the catalog
func (s *Service) Create(req *CreateProductRequest) (*Product, error) {
	var existing Product
	if err := s.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("product with name '%s' already exists", req.Name)
	}

	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}

	p := &Product{
		Category:  req.Category,
		Name:      req.Name,
		Unit:      unit,
		SellPrice: req.SellPrice,
	}

	if err := s.db.Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

// Get retrieves one product by id
func (s *Service) Get(id uint) (*Product, error) {
	var p Product
	if err := s.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ledger.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &p, nil
}

// GetAll retrieves the full catalog
func (s *Service) GetAll() ([]Product, error) {
	var products []Product
	if err := s.db.Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

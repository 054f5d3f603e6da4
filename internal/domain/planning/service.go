// internal/domain/planning/service.go
package planning

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/material"
)

// Usage window constants from the planning model: daily usage is measured
// over the trailing 30 days, adaptive safety stock over 60.
const (
	UsageWindowDays       = 30
	SafetyStockWindowDays = 60

	minOutboundTransactions = 20
	minDailySamples         = 30

	// DefaultServiceLevel is the target stockout-avoidance probability
	DefaultServiceLevel = 0.95
)

// RecommendationStatus flags whether the adaptive computation qualified
type RecommendationStatus string

const (
	StatusReady            RecommendationStatus = "ready"
	StatusInsufficientData RecommendationStatus = "insufficient_data"
)

// Service computes reorder signals from ledger history. Stateless over
// ledger data; every read is advisory and runs at snapshot isolation,
// never inside a stock transaction.
type Service struct {
	materials *material.Service
	ledger    *ledger.Service
	logger    *logrus.Logger
	cache     *redis.Client
	notifier  Notifier
}

// NewService creates a new reorder planning service
func NewService(materials *material.Service, ledgerSvc *ledger.Service, logger *logrus.Logger) *Service {
	return &Service{
		materials: materials,
		ledger:    ledgerSvc,
		logger:    logger,
	}
}

// ROPDetails is the per-material planning report
type ROPDetails struct {
	MaterialID        uint             `json:"material_id"`
	MaterialName      string           `json:"material_name"`
	CurrentStock      decimal.Decimal  `json:"current_stock"`
	SafetyStock       decimal.Decimal  `json:"safety_stock"`
	LeadTimeDays      int              `json:"lead_time_days"`
	DailyUsage        decimal.Decimal  `json:"daily_usage"`
	ROP               decimal.Decimal  `json:"rop"`
	NeedsRestock      bool             `json:"needs_restock"`
	DaysUntilStockout *decimal.Decimal `json:"days_until_stockout,omitempty"`
	Status            string           `json:"status"`
}

// SafetyStockRecommendation is the adaptive safety stock report. When the
// history does not qualify, Status flags it and Recommended carries the
// conservative fallback of half the material minimum.
type SafetyStockRecommendation struct {
	MaterialID         uint                 `json:"material_id"`
	MaterialName       string               `json:"material_name"`
	CurrentSafetyStock decimal.Decimal      `json:"current_safety_stock"`
	Recommended        decimal.Decimal      `json:"recommended_safety_stock"`
	ServiceLevel       float64              `json:"service_level"`
	Status             RecommendationStatus `json:"status"`
	SampleCount        int                  `json:"sample_count"`
	Variance           decimal.Decimal      `json:"variance"`
}

// DailyUsage returns the trailing-30-day outbound rate for a material
func (s *Service) DailyUsage(materialID uint) (decimal.Decimal, error) {
	return s.materials.DailyUsage(materialID, UsageWindowDays)
}

// ROP computes the reorder point: leadTimeDays × dailyUsage + safetyStock,
// rounded to two decimals.
func (s *Service) ROP(materialID uint) (decimal.Decimal, error) {
	m, err := s.materials.Get(materialID)
	if err != nil {
		return decimal.Zero, err
	}
	usage, err := s.DailyUsage(materialID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.rop(m, usage), nil
}

func (s *Service) rop(m *material.Material, dailyUsage decimal.Decimal) decimal.Decimal {
	return dailyUsage.Mul(decimal.NewFromInt(int64(m.LeadTimeDays))).Add(m.SafetyStock).Round(2)
}

// NeedsRestock reports whether the balance has reached the reorder point
func (s *Service) NeedsRestock(materialID uint) (bool, error) {
	m, err := s.materials.Get(materialID)
	if err != nil {
		return false, err
	}
	rop, err := s.ROP(materialID)
	if err != nil {
		return false, err
	}
	return m.Stock.Cmp(rop) <= 0, nil
}

// DaysUntilStockout projects how long the balance lasts at the current
// usage rate. Nil when usage is zero: a rate-based projection is
// undefined there, which is a different signal than "stockout now".
func (s *Service) DaysUntilStockout(materialID uint) (*decimal.Decimal, error) {
	m, err := s.materials.Get(materialID)
	if err != nil {
		return nil, err
	}
	usage, err := s.DailyUsage(materialID)
	if err != nil {
		return nil, err
	}
	if usage.Sign() <= 0 {
		return nil, nil
	}
	days := m.Stock.Div(usage)
	return &days, nil
}

// GetROPDetails assembles the full planning report for one material
func (s *Service) GetROPDetails(materialID uint) (*ROPDetails, error) {
	m, err := s.materials.Get(materialID)
	if err != nil {
		return nil, err
	}
	usage, err := s.DailyUsage(materialID)
	if err != nil {
		return nil, err
	}

	rop := s.rop(m, usage)

	var daysUntilStockout *decimal.Decimal
	if usage.Sign() > 0 {
		d := m.Stock.Div(usage)
		daysUntilStockout = &d
	}

	return &ROPDetails{
		MaterialID:        m.ID,
		MaterialName:      m.Name,
		CurrentStock:      m.Stock,
		SafetyStock:       m.SafetyStock,
		LeadTimeDays:      m.LeadTimeDays,
		DailyUsage:        usage.Round(2),
		ROP:               rop,
		NeedsRestock:      m.Stock.Cmp(rop) <= 0,
		DaysUntilStockout: daysUntilStockout,
		Status:            stockStatus(m, rop, daysUntilStockout),
	}, nil
}

// AdaptiveSafetyStock computes the statistical safety stock for a
// material. Qualification needs at least 20 outbound transactions in the
// trailing 30 days and 30 non-zero daily usage samples in the trailing
// 60; anything less reports insufficient_data with the 0.5×minimum
// fallback instead of a number the formula cannot support.
func (s *Service) AdaptiveSafetyStock(materialID uint, serviceLevel float64) (*SafetyStockRecommendation, error) {
	m, err := s.materials.Get(materialID)
	if err != nil {
		return nil, err
	}
	if serviceLevel <= 0 {
		serviceLevel = DefaultServiceLevel
	}

	rec := &SafetyStockRecommendation{
		MaterialID:         m.ID,
		MaterialName:       m.Name,
		CurrentSafetyStock: m.SafetyStock,
		ServiceLevel:       serviceLevel,
	}

	txCount, err := s.ledger.OutboundCountSince(materialID, time.Now().AddDate(0, 0, -UsageWindowDays))
	if err != nil {
		return nil, err
	}

	dailyTotals, err := s.ledger.DailyOutboundTotals(materialID, SafetyStockWindowDays)
	if err != nil {
		return nil, err
	}
	samples := make([]float64, 0, len(dailyTotals))
	for _, qty := range dailyTotals {
		if qty.Sign() > 0 {
			samples = append(samples, qty.InexactFloat64())
		}
	}
	rec.SampleCount = len(samples)

	if txCount < minOutboundTransactions || len(samples) < minDailySamples {
		rec.Status = StatusInsufficientData
		rec.Recommended = m.MinStock.Mul(decimal.NewFromFloat(0.5)).Round(2)
		rec.Variance = rec.Recommended.Sub(m.SafetyStock).Round(2)
		return rec, nil
	}

	value := safetyStockFormula(ZScore(serviceLevel), SampleStdDev(samples), m.LeadTimeDays)
	rec.Status = StatusReady
	rec.Recommended = decimal.NewFromFloat(value).Round(2)
	rec.Variance = rec.Recommended.Sub(m.SafetyStock).Round(2)
	return rec, nil
}

// stockStatus buckets a material for listings and alert colors
func stockStatus(m *material.Material, rop decimal.Decimal, daysUntilStockout *decimal.Decimal) string {
	switch {
	case m.Stock.Sign() <= 0:
		return "out_of_stock"
	case m.Stock.Cmp(m.SafetyStock) <= 0:
		return "critical"
	case m.Stock.Cmp(rop) <= 0:
		return "need_reorder"
	case daysUntilStockout != nil && daysUntilStockout.Cmp(decimal.NewFromInt(7)) <= 0:
		return "warning"
	default:
		return "safe"
	}
}

// logAdvisoryFailure records a non-fatal planner problem without
// propagating it; planning reads are advisory by contract.
func (s *Service) logAdvisoryFailure(op string, err error) {
	if err == nil {
		return
	}
	s.logger.WithFields(logrus.Fields{"op": op}).Warn(fmt.Sprintf("planning advisory failure: %v", err))
}
